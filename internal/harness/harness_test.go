package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadstore/internal/docstore"
	"github.com/roach88/quadstore/internal/docstore/sqlitedoc"
	"github.com/roach88/quadstore/internal/testutil"
)

func TestRun_HelloWorld(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/hello_world.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	steps := result.Steps()
	require.Len(t, steps, 6)
	assert.Equal(t, []string{OpAdd, OpHas, OpMatch, OpDeleteMatches, OpDelete, OpSize},
		[]string{steps[0].Op, steps[1].Op, steps[2].Op, steps[3].Op, steps[4].Op, steps[5].Op})
	assert.Len(t, result.Events("added"), 3)
	assert.Len(t, result.Events("deleted"), 3)
}

func TestRun_SeqIsContiguous(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/hello_world.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	for i, rec := range result.Trace {
		assert.Equal(t, int64(i+1), rec.Seq, "record %d", i)
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/hello_world.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_FixtureReload(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fixture_reload.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Equal(t, RecordSetup, result.Trace[3].Type)
	require.NotNil(t, result.Trace[3].Count)
	assert.Equal(t, 3, *result.Trace[3].Count)

	steps := result.Steps()
	require.Len(t, steps, 4)
	assert.Equal(t, "VALIDATION", steps[2].Error)
}

func TestRun_ExpectMismatch(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: mismatch
description: "Every expectation is wrong"
steps:
  - op: add
    quads:
      - {subject: "<ex:a>", predicate: "<ex:p>", object: '"x"'}
    expect:
      count: 2
  - op: has
    quads:
      - {subject: "<ex:a>", predicate: "<ex:p>", object: '"y"'}
    expect:
      result: true
  - op: match
    expect:
      quads: ['<ex:b> <ex:p> "x" .']
  - op: size
    expect:
      error: STORAGE
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected count 2, got 1")
	assert.Contains(t, result.Errors[1], "expected result true, got false")
	assert.Contains(t, result.Errors[2], "expected quads")
	assert.Contains(t, result.Errors[3], `expected error STORAGE, got ""`)
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unexpected
description: "A literal predicate is rejected"
steps:
  - op: match
    pattern: {predicate: '"p"'}
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0] match: unexpected error")
}

func TestRunWith_StorageErrorIsTraced(t *testing.T) {
	ctx := context.Background()
	coll, err := sqlitedoc.Open(ctx, ":memory:", "")
	require.NoError(t, err)
	fc := testutil.NewFaultCollection(coll)
	fc.Fail(testutil.MethodEstimatedCount, errors.New("disk on fire"))
	connector := docstore.ConnectorFunc(func(context.Context) (docstore.Collection, error) {
		return fc, nil
	})

	scenario, err := ParseScenario([]byte(`
name: storage_error
description: "Size fails in the backend"
steps:
  - op: size
    expect:
      error: STORAGE
assertions:
  - type: event_count
    kind: error
    count: 1
`))
	require.NoError(t, err)

	result, err := RunWith(ctx, scenario, connector)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, TraceEvent{Seq: 1, Type: RecordEvent, Kind: "error", Error: "STORAGE"}, result.Trace[0])
	assert.Equal(t, TraceEvent{Seq: 2, Type: RecordStep, Op: OpSize, Error: "STORAGE"}, result.Trace[1])
}

func TestRunWith_ConnectionError(t *testing.T) {
	connector := &testutil.Connector{Err: errors.New("refused")}
	scenario, err := ParseScenario([]byte(`
name: unreachable
description: "The backend cannot be reached"
steps:
  - op: add
    quads:
      - {subject: "<ex:a>", predicate: "<ex:p>", object: "<ex:o>"}
    expect:
      count: 0
      error: CONNECTION
`))
	require.NoError(t, err)

	result, err := RunWith(context.Background(), scenario, connector)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Events("error"), 1)
}

func TestRun_MissingFixtureFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "gone",
		Description: "Fixture removed after load",
		Fixtures:    []string{"testdata/quads/missing.nq"},
		Steps:       []Step{{Op: OpSize}},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute setup")
}
