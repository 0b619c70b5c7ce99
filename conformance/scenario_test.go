package conformance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pinvec"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/grow_insert_shrink.yaml")
	require.NoError(t, err)

	assert.Equal(t, "grow-insert-shrink", s.Name)
	assert.Equal(t, 3, s.InitialLen)
	require.Len(t, s.Steps, 8)
	assert.Equal(t, pinvec.OpInsert, s.Steps[1].Op)
	require.NotNil(t, s.Steps[1].At)
	assert.Equal(t, 1, *s.Steps[1].At)
	assert.Equal(t, ExpectPrecondition, s.Steps[6].Expect)
	require.NotNil(t, s.FinalLen)
	assert.Equal(t, 0, *s.FinalLen)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: has a typo
initial_len: 1
step:
  - op: push
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nsteps:\n  - op: push\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nsteps:\n  - op: push\n",
			want: "description is required",
		},
		{
			name: "negative initial length",
			yaml: "name: n\ndescription: d\ninitial_len: -1\nsteps:\n  - op: push\n",
			want: "initial_len must be non-negative",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\n",
			want: "steps list is required",
		},
		{
			name: "unknown op",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: shuffle\n",
			want: `steps[0]: unknown op "shuffle"`,
		},
		{
			name: "insert without position",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: insert\n",
			want: "steps[0]: at is required for insert",
		},
		{
			name: "extend without count",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: push\n  - op: extend\n",
			want: "steps[1]: count must be at least 1 for extend",
		},
		{
			name: "truncate without length",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: truncate\n",
			want: "steps[0]: len is required for truncate",
		},
		{
			name: "push with arguments",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: push\n    at: 1\n",
			want: "steps[0]: push takes no arguments",
		},
		{
			name: "unknown expectation",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: pop\n    expect: failure\n",
			want: `steps[0]: unknown expect "failure"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioDir(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios", "")
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"empty-lifecycle", "grow-insert-shrink", "regrow-after-clear"}, names)
}

func TestLoadScenarioDir_Filter(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios", "grow-*")
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "grow-insert-shrink", scenarios[0].Name)

	_, err = LoadScenarioDir("testdata/scenarios", "[")
	require.Error(t, err)
}

func TestLoadScenarioDir_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	doc := []byte("name: same\ndescription: d\nsteps:\n  - op: push\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), doc, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), doc, 0o644))

	_, err := LoadScenarioDir(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate scenario name "same"`)
}

func TestStep_String(t *testing.T) {
	at, n := 3, 2
	assert.Equal(t, "insert(at=3)", Step{Op: pinvec.OpInsert, At: &at}.String())
	assert.Equal(t, "extend(count=4)", Step{Op: pinvec.OpExtend, Count: 4}.String())
	assert.Equal(t, "truncate(len=2)", Step{Op: pinvec.OpTruncate, Len: &n}.String())
	assert.Equal(t, "pop()", Step{Op: pinvec.OpPop}.String())
}
