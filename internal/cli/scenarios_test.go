package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundledScenarios = "../../conformance/testdata/scenarios"

func runScenariosCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewScenariosCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestScenariosCommandMissingArgs(t *testing.T) {
	_, err := runScenariosCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestScenariosCommandNonExistentDir(t *testing.T) {
	_, err := runScenariosCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestScenariosCommandEmptyDir(t *testing.T) {
	out, err := runScenariosCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	out, err = runScenariosCommand(t, "json", t.TempDir())
	require.NoError(t, err)
	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestScenariosCommandBundled(t *testing.T) {
	for _, container := range []string{"fixed", "paged"} {
		t.Run(container, func(t *testing.T) {
			out, err := runScenariosCommand(t, "text", bundledScenarios, "--container", container)
			require.NoError(t, err)

			assert.Contains(t, out, "✓ empty-lifecycle (6 steps)")
			assert.Contains(t, out, "✓ grow-insert-shrink (8 steps)")
			assert.Contains(t, out, "3 passed, 0 failed, 3 total")
		})
	}
}

func TestScenariosCommandFilter(t *testing.T) {
	out, err := runScenariosCommand(t, "text", bundledScenarios, "--filter", "regrow-*")
	require.NoError(t, err)

	assert.Contains(t, out, "regrow-after-clear")
	assert.NotContains(t, out, "grow-insert-shrink")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestScenariosCommandFailureJSON(t *testing.T) {
	out, err := runScenariosCommand(t, "json", bundledScenarios, "--container", "faulty-insert")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.NotContains(t, out, "Usage:")
	assert.NotContains(t, out, "Error:")

	var resp struct {
		Status string          `json:"status"`
		Data   ScenariosResult `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "faulty-insert", resp.Data.Container)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Failed, "both scenarios insert with a non-empty protected prefix")

	require.Len(t, resp.Data.Scenarios, 3)
	batch := resp.Data.Scenarios[0].RunID[:7]
	for i, s := range resp.Data.Scenarios {
		assert.Equal(t, fmt.Sprintf("%s-%04d", batch, i+1), s.RunID, "runs of one invocation share a batch prefix")
	}

	for _, s := range resp.Data.Scenarios {
		if s.Name == "grow-insert-shrink" {
			assert.False(t, s.Pass)
			require.NotEmpty(t, s.Errors)
			assert.Contains(t, s.Errors[0], "G3 violated by insert(n=4, m=1, p=1)")
		}
	}
}

func TestScenariosCommandMalformedScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: bad\nsteps: []\n"), 0o644))

	_, err := runScenariosCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenarios")
}
