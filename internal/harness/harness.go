package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/quadstore/internal/docstore"
	"github.com/roach88/quadstore/internal/docstore/sqlitedoc"
	"github.com/roach88/quadstore/internal/quadfile"
	"github.com/roach88/quadstore/internal/quadstore"
	"github.com/roach88/quadstore/internal/rdf"
	"github.com/roach88/quadstore/internal/testutil"
)

// EventBuffer is the subscription buffer a run uses. A single step that emits
// more events than this fails the run with a dropped-events error.
const EventBuffer = 4096

// Harness executes one scenario against one store.
type Harness struct {
	store  *quadstore.Store
	seq    *testutil.Sequencer
	events <-chan quadstore.Event
	logger *slog.Logger
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger for the store and the harness.
// Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario against a fresh in-memory SQLite collection.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunWith(context.Background(), scenario, sqlitedoc.Connector{Path: ":memory:"}, opts...)
}

// RunWith executes a scenario against the collection connector opens.
//
// Execution flow:
// 1. Create the store with a fresh sequencer and subscribe to its events
// 2. Add fixture quads
// 3. Execute steps, checking each expect clause
// 4. Evaluate assertions against the trace and final state
//
// Step and assertion failures are reported in the Result. The returned error
// is reserved for scenarios that cannot run at all, such as unreadable
// fixtures.
func RunWith(ctx context.Context, scenario *Scenario, connector docstore.Connector, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	seq := testutil.NewSequencer()
	st := quadstore.New(connector,
		quadstore.WithSequencer(seq),
		quadstore.WithLogger(cfg.logger),
	)
	defer st.Close(ctx)

	events, cancel := st.Subscribe(EventBuffer)
	defer cancel()

	h := &Harness{
		store:  st,
		seq:    seq,
		events: events,
		logger: cfg.logger,
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Fixtures, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute steps: %w", err)
		}
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"records", len(result.Trace),
	)
	return result, nil
}

// executeSetup adds every fixture file's quads. Setup is expected to succeed.
func (h *Harness) executeSetup(ctx context.Context, fixtures []string, result *Result) error {
	for i, path := range fixtures {
		quads, err := quadfile.ReadFile(path)
		if err != nil {
			return fmt.Errorf("fixture %d: %w", i, err)
		}

		before := h.seq.Current()
		n, err := h.store.Add(ctx, quads...)
		if err != nil {
			return fmt.Errorf("fixture %d: %w", i, err)
		}
		h.collect(before, fmt.Sprintf("fixture %d", i), result)
		result.Trace = append(result.Trace, TraceEvent{
			Seq:   h.seq.Next(),
			Type:  RecordSetup,
			Op:    OpAdd,
			Count: &n,
		})

		h.logger.Info("fixture loaded", "path", path, "quads", len(quads), "added", n)
	}
	return nil
}

// executeStep runs one step, appends its events and its record to the trace,
// and checks the expect clause.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	rec := TraceEvent{Type: RecordStep, Op: step.Op}
	before := h.seq.Current()

	var opErr error
	switch step.Op {
	case OpAdd, OpDelete, OpHas:
		quads, err := entryQuads(step.Quads)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		switch step.Op {
		case OpAdd:
			n, err := h.store.Add(ctx, quads...)
			rec.Count, opErr = &n, err
		case OpDelete:
			n, err := h.store.Delete(ctx, quads...)
			rec.Count, opErr = &n, err
		case OpHas:
			ok, err := h.store.Has(ctx, quads...)
			if err == nil {
				rec.Result = &ok
			}
			opErr = err
		}

	case OpMatch, OpDeleteMatches:
		pattern, err := entryPattern(step.Pattern)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
		if step.Op == OpDeleteMatches {
			n, err := h.store.DeleteMatches(ctx, pattern)
			rec.Count, opErr = &n, err
			break
		}
		ds, err := h.store.Match(ctx, pattern)
		if err == nil {
			n := ds.Len()
			rec.Count = &n
			rec.Quads = lines(ds.Quads())
		}
		opErr = err

	case OpSize:
		n, err := h.store.Size(ctx)
		if err == nil {
			count := int(n)
			rec.Count = &count
		}
		opErr = err

	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if opErr != nil {
		rec.Error = errorCode(opErr)
	}
	h.collect(before, fmt.Sprintf("steps[%d]", index), result)
	rec.Seq = h.seq.Next()
	result.Trace = append(result.Trace, rec)

	checkExpect(index, step, rec, opErr, result)

	h.logger.Debug("step completed",
		"step", index,
		"op", step.Op,
		"seq", rec.Seq,
		"error", rec.Error,
	)
	return nil
}

// collect moves the events emitted since before from the subscription into
// the trace. Emission is synchronous, so every event of the finished
// operation is already buffered.
func (h *Harness) collect(before int64, label string, result *Result) {
	emitted := h.seq.Current() - before
	var received int64
	for received < emitted {
		select {
		case e, ok := <-h.events:
			if !ok {
				result.AddError(fmt.Sprintf("%s: event subscription closed", label))
				return
			}
			result.Trace = append(result.Trace, traceEvent(e))
			received++
		default:
			result.AddError(fmt.Sprintf("%s: %d events dropped from trace", label, emitted-received))
			return
		}
	}
}

// checkExpect compares a step record with the step's expect clause.
func checkExpect(index int, step Step, rec TraceEvent, opErr error, result *Result) {
	e := step.Expect
	if e == nil || e.Error == "" {
		if opErr != nil {
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Op, opErr))
			return
		}
	}
	if e == nil {
		return
	}

	if e.Error != "" && rec.Error != e.Error {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %q", index, step.Op, e.Error, rec.Error))
	}
	if e.Count != nil && (rec.Count == nil || *rec.Count != *e.Count) {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected count %d, got %s", index, step.Op, *e.Count, formatInt(rec.Count)))
	}
	if e.Result != nil && (rec.Result == nil || *rec.Result != *e.Result) {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected result %t, got %s", index, step.Op, *e.Result, formatBool(rec.Result)))
	}
	if e.Quads != nil {
		// Expect lines were validated at load time.
		want, _ := parseLines(e.Quads)
		if wantLines := lines(want.Quads()); !slices.Equal(wantLines, rec.Quads) {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected quads %q, got %q", index, step.Op, wantLines, rec.Quads))
		}
	}
}

// traceEvent converts a store notification to a trace record.
func traceEvent(e quadstore.Event) TraceEvent {
	rec := TraceEvent{
		Seq:  e.Seq,
		Type: RecordEvent,
		Kind: string(e.Kind),
	}
	switch e.Kind {
	case quadstore.EventAdded, quadstore.EventDeleted:
		rec.Quad = e.Quad.String()
	case quadstore.EventError:
		rec.Error = errorCode(e.Err)
	}
	return rec
}

// errorCode returns the store error code of err, or "UNKNOWN".
func errorCode(err error) string {
	var se *quadstore.Error
	if errors.As(err, &se) {
		return string(se.Code)
	}
	return "UNKNOWN"
}

// lines renders quads as N-Quads lines. Returns an empty slice for no quads.
func lines(quads []rdf.Quad) []string {
	out := make([]string, len(quads))
	for i, q := range quads {
		out[i] = q.String()
	}
	return out
}

func formatInt(n *int) string {
	if n == nil {
		return "none"
	}
	return fmt.Sprint(*n)
}

func formatBool(b *bool) string {
	if b == nil {
		return "none"
	}
	return fmt.Sprint(*b)
}
