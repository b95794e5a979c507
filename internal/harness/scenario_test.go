package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content to a scenario file in a fresh directory.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
steps:
  - op: add
    quads:
      - subject: "<ex:a>"
        predicate: "<ex:p>"
        object: '"x"'
    expect:
      count: 1
assertions:
  - type: event_count
    kind: added
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, OpAdd, scenario.Steps[0].Op)
	assert.Equal(t, "<ex:a>", scenario.Steps[0].Quads[0].Subject)
	require.NotNil(t, scenario.Steps[0].Expect.Count)
	assert.Equal(t, 1, *scenario.Steps[0].Expect.Count)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_HelloWorld(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/hello_world.yaml")
	require.NoError(t, err)
	assert.Equal(t, "hello_world", scenario.Name)
	assert.Len(t, scenario.Steps, 6)
	assert.Len(t, scenario.Assertions, 5)
}

func TestLoadScenario_ResolvesFixtures(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fixture_reload.yaml")
	require.NoError(t, err)
	require.Len(t, scenario.Fixtures, 1)
	assert.Equal(t, filepath.Join("testdata", "quads", "hello.nq"), scenario.Fixtures[0])
}

func TestLoadScenario_MissingFixture(t *testing.T) {
	path := writeScenario(t, `
name: missing_fixture
description: "Fixture does not exist"
fixtures:
  - nope.nq
steps:
  - op: size
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixture file not found")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Unknown top-level field"
steps:
  - op: size
assertion:
  - type: event_count
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nsteps:\n  - op: size\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nsteps:\n  - op: size\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			content: "name: n\ndescription: d\n",
			wantErr: "steps list is required",
		},
		{
			name:    "missing op",
			content: "name: n\ndescription: d\nsteps:\n  - expect: {count: 1}\n",
			wantErr: "steps[0]: op is required",
		},
		{
			name:    "unknown op",
			content: "name: n\ndescription: d\nsteps:\n  - op: upsert\n",
			wantErr: `unknown op "upsert"`,
		},
		{
			name:    "pattern on add",
			content: "name: n\ndescription: d\nsteps:\n  - op: add\n    pattern: {subject: \"<ex:a>\"}\n",
			wantErr: "add takes quads, not a pattern",
		},
		{
			name:    "quads on match",
			content: "name: n\ndescription: d\nsteps:\n  - op: match\n    quads:\n      - {subject: \"<ex:a>\", predicate: \"<ex:p>\", object: \"<ex:o>\"}\n",
			wantErr: "match takes a pattern, not quads",
		},
		{
			name:    "operands on size",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\n    pattern: {}\n",
			wantErr: "size takes no operands",
		},
		{
			name:    "quad missing object",
			content: "name: n\ndescription: d\nsteps:\n  - op: add\n    quads:\n      - {subject: \"<ex:a>\", predicate: \"<ex:p>\"}\n",
			wantErr: "object is required",
		},
		{
			name:    "malformed term",
			content: "name: n\ndescription: d\nsteps:\n  - op: match\n    pattern: {subject: \"<ex:a\"}\n",
			wantErr: "steps[0]: pattern",
		},
		{
			name:    "unknown error code",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\n    expect: {error: TIMEOUT}\n",
			wantErr: `unknown error code "TIMEOUT"`,
		},
		{
			name:    "result on add",
			content: "name: n\ndescription: d\nsteps:\n  - op: add\n    expect: {result: true}\n",
			wantErr: "result is only valid for has",
		},
		{
			name:    "bad expected quad",
			content: "name: n\ndescription: d\nsteps:\n  - op: match\n    expect:\n      quads: [\"<ex:a> <ex:p>\"]\n",
			wantErr: "steps[0].expect",
		},
		{
			name:    "unknown assertion",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\nassertions:\n  - type: trace_order\n",
			wantErr: `unknown assertion type "trace_order"`,
		},
		{
			name:    "assertion without type",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\nassertions:\n  - kind: added\n",
			wantErr: "assertions[0]: type is required",
		},
		{
			name:    "event_count without count",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\nassertions:\n  - type: event_count\n    kind: added\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "unknown event kind",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\nassertions:\n  - type: event_count\n    kind: updated\n    count: 1\n",
			wantErr: `unknown event kind "updated"`,
		},
		{
			name:    "event_contains without quad",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\nassertions:\n  - type: event_contains\n    kind: added\n",
			wantErr: "quad is required for event_contains",
		},
		{
			name:    "event_order without quads",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\nassertions:\n  - type: event_order\n    kind: deleted\n",
			wantErr: "quads list is required for event_order",
		},
		{
			name:    "final_state without expectation",
			content: "name: n\ndescription: d\nsteps:\n  - op: size\nassertions:\n  - type: final_state\n",
			wantErr: "count or quads is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_EmptyQuadsExpectation(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: empty
description: "Matching an empty store"
steps:
  - op: match
    expect:
      quads: []
assertions:
  - type: final_state
    quads: []
`))
	require.NoError(t, err)
	assert.NotNil(t, s.Steps[0].Expect.Quads)
	assert.NotNil(t, s.Assertions[0].Quads)
}
