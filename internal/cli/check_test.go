package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCheckCommand(t *testing.T, format string, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewCheckCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckCommandMissingArgs(t *testing.T) {
	_, _, err := runCheckCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestCheckCommandPasses(t *testing.T) {
	out, _, err := runCheckCommand(t, "text", "paged", "--len", "20")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ paged: ")
	assert.Contains(t, out, "0 violations")
	assert.Contains(t, out, "lengths: [0 1 2 3")
	assert.Contains(t, out, "digest: ")
}

func TestCheckCommandViolations(t *testing.T) {
	out, _, err := runCheckCommand(t, "text", "faulty-remove", "--len", "16", "--guarantee", "G4")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ faulty-remove: ")
	assert.Contains(t, out, "(violated: G4)")
	assert.Contains(t, out, "  violations:\n")
	assert.Contains(t, out, "use --verbose")
}

func TestCheckCommandJSON(t *testing.T) {
	out, stderr, err := runCheckCommand(t, "json", "naive", "--len", "8")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.NotContains(t, out, "Usage:")
	assert.Empty(t, stderr)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Container string `json:"container"`
			Digest    string `json:"digest"`
			Passed    bool   `json:"passed"`
			Report    struct {
				Checked    map[string]int   `json:"checked"`
				Violations []map[string]any `json:"violations"`
			} `json:"report"`
		} `json:"data"`
		Error *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "naive", resp.Data.Container)
	assert.Len(t, resp.Data.Digest, 64)
	assert.False(t, resp.Data.Passed)
	assert.Contains(t, resp.Data.Report.Checked, "G1")
	require.NotEmpty(t, resp.Data.Report.Violations)
	assert.Equal(t, "G1", resp.Data.Report.Violations[0]["guarantee"])
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_GUARANTEE_VIOLATED", resp.Error.Code)
}

func TestCheckCommandStrict(t *testing.T) {
	// A fixed container sized exactly to the target runs out of room, which
	// is a scenario error rather than a violation.
	_, _, err := runCheckCommand(t, "text", "fixed", "--len", "4", "--capacity", "4")
	require.NoError(t, err)

	out, _, err := runCheckCommand(t, "text", "fixed", "--len", "4", "--capacity", "4", "--strict")
	require.Error(t, err)
	assert.Contains(t, out, "scenario errors:")
	assert.Contains(t, out, "capacity exhausted")
}

func TestCheckCommandInvalidFlags(t *testing.T) {
	_, _, err := runCheckCommand(t, "text", "fixed", "--len", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = runCheckCommand(t, "text", "fixed", "--guarantee", "G9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown guarantee")
}

func TestCheckCommandVerboseLogs(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewCheckCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"fixed", "--len", "4"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "verification started")
	assert.Contains(t, stderr.String(), "level=DEBUG")
	assert.NotContains(t, stdout.String(), "verification started")
}

func TestCheckHelpText(t *testing.T) {
	out, _, err := runCheckCommand(t, "text", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "guarantee verifier")
	assert.Contains(t, out, "--len")
	assert.Contains(t, out, "--sweep")
	assert.Contains(t, out, "--strict")
	assert.Contains(t, out, "faulty-<sabotage>")
}

func TestCheckCommandFailureIsSingleJSONDocument(t *testing.T) {
	out, _, err := runCheckCommand(t, "json", "faulty-grow", "--len", "4")
	require.Error(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var resp CLIResponse
	require.NoError(t, dec.Decode(&resp))
	assert.False(t, dec.More(), "nothing may follow the response envelope")
}
