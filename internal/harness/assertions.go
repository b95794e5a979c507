package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/quadstore/internal/quadstore"
	"github.com/roach88/quadstore/internal/rdf"
)

// AssertionContext provides what final_state assertions need.
type AssertionContext struct {
	Store *quadstore.Store
	Ctx   context.Context
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, describe(event))
		}
	}

	return buf.String()
}

// describe renders a trace record on one line.
func describe(e TraceEvent) string {
	var parts []string
	switch e.Type {
	case RecordEvent:
		parts = append(parts, e.Kind)
		if e.Quad != "" {
			parts = append(parts, e.Quad)
		}
	default:
		parts = append(parts, e.Type, e.Op)
		if e.Count != nil {
			parts = append(parts, fmt.Sprintf("count=%d", *e.Count))
		}
		if e.Result != nil {
			parts = append(parts, fmt.Sprintf("result=%t", *e.Result))
		}
	}
	if e.Error != "" {
		parts = append(parts, "error="+e.Error)
	}
	return strings.Join(parts, " ")
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertEventContains:
			err = assertEventContains(result.Trace, a)
		case AssertEventCount:
			err = assertEventCount(result.Trace, a)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertEventContains checks the trace has an event of the kind for the quad.
func assertEventContains(trace []TraceEvent, a Assertion) error {
	if a.Quad == nil {
		return fmt.Errorf("event_contains assertion requires a quad")
	}
	q, err := a.Quad.Quad()
	if err != nil {
		return fmt.Errorf("event_contains: %w", err)
	}
	want := q.String()
	for _, e := range trace {
		if e.Type == RecordEvent && e.Kind == a.Kind && e.Quad == want {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertEventContains,
		Expected: fmt.Sprintf("%s event for %s", a.Kind, want),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertEventCount checks the kind appears exactly Count times.
func assertEventCount(trace []TraceEvent, a Assertion) error {
	if a.Count == nil {
		return fmt.Errorf("event_count assertion requires a count")
	}
	count := 0
	for _, e := range trace {
		if e.Type == RecordEvent && e.Kind == a.Kind {
			count++
		}
	}

	if count != *a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d %s events", *a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertEventOrder checks the quads were emitted with the kind in the given
// order. Events need not be consecutive.
func assertEventOrder(trace []TraceEvent, a Assertion) error {
	// Round-trip through the parser so spacing in the scenario does not matter.
	want := make([]string, len(a.Quads))
	for i, line := range a.Quads {
		q, err := rdf.ParseQuad(line)
		if err != nil {
			return fmt.Errorf("event_order: quads[%d]: %w", i, err)
		}
		want[i] = q.String()
	}

	next := 0
	for _, e := range trace {
		if next == len(want) {
			break
		}
		if e.Type == RecordEvent && e.Kind == a.Kind && e.Quad == want[next] {
			next++
		}
	}
	if next == len(want) {
		return nil
	}

	return &AssertionError{
		Type:     AssertEventOrder,
		Expected: fmt.Sprintf("%s events in order: %q", a.Kind, want),
		Actual:   fmt.Sprintf("missing or out of order: %s", want[next]),
		Trace:    trace,
	}
}

// assertFinalState matches the pattern against the store and compares the
// result with the expected count and quads.
func assertFinalState(actx *AssertionContext, a Assertion) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("final_state assertion requires a store")
	}
	pattern, err := entryPattern(a.Pattern)
	if err != nil {
		return fmt.Errorf("final_state: %w", err)
	}

	ctx := actx.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ds, err := actx.Store.Match(ctx, pattern)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: "match the final state",
			Actual:   fmt.Sprintf("match error: %v", err),
		}
	}

	got := lines(ds.Quads())
	if a.Count != nil && len(got) != *a.Count {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%d matching quads", *a.Count),
			Actual:   fmt.Sprintf("%d matching quads: %q", len(got), got),
		}
	}
	if a.Quads != nil {
		wantDS, err := parseLines(a.Quads)
		if err != nil {
			return fmt.Errorf("final_state: %w", err)
		}
		if want := lines(wantDS.Quads()); !slices.Equal(want, got) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("quads %q", want),
				Actual:   fmt.Sprintf("quads %q", got),
			}
		}
	}
	return nil
}
