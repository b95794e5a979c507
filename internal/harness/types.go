package harness

// Trace record types.
const (
	RecordSetup = "setup"
	RecordStep  = "step"
	RecordEvent = "event"
)

// TraceEvent is one entry in a scenario trace: a setup or step result, or a
// notification emitted by the store.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"` // "setup", "step" or "event"

	// Op is the operation name for setup and step records.
	Op string `json:"op,omitempty"`

	// Kind is the event kind: added, deleted or error.
	Kind string `json:"kind,omitempty"`

	// Quad is the N-Quads line of an added or deleted event.
	Quad string `json:"quad,omitempty"`

	Count  *int     `json:"count,omitempty"`
	Result *bool    `json:"result,omitempty"`
	Quads  []string `json:"quads,omitempty"`

	// Error is the error code of a failed step or an error event.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains all step records and events in Seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns the event records of kind, in trace order.
func (r *Result) Events(kind string) []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == RecordEvent && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Steps returns the step records, in trace order. Setup records are excluded.
func (r *Result) Steps() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == RecordStep {
			out = append(out, e)
		}
	}
	return out
}
