package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quadstore/internal/quadfile"
	"github.com/roach88/quadstore/internal/quadstore"
	"github.com/roach88/quadstore/internal/rdf"
)

// Scenario defines a scripted run against a quad store.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixtures lists quad files (.nq, .yaml) added before the first step.
	// Paths are relative to the scenario file location.
	Fixtures []string `yaml:"fixtures,omitempty"`

	// Steps are executed in order against the store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: event_contains, event_count, event_order, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one store operation.
type Step struct {
	// Op is one of add, delete, delete_matches, match, has, size.
	Op string `yaml:"op"`

	// Quads are the operands of add, delete and has.
	Quads []quadfile.Entry `yaml:"quads,omitempty"`

	// Pattern is the operand of match and delete_matches. Nil matches all.
	Pattern *quadfile.Entry `yaml:"pattern,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, only an unexpected error fails the step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected step behavior. Unset fields are not checked.
type ExpectClause struct {
	Count  *int     `yaml:"count,omitempty"`
	Result *bool    `yaml:"result,omitempty"`
	Quads  []string `yaml:"quads,omitempty"`

	// Error is the expected error code. Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "event_contains": Check an event of Kind was emitted for Quad
	// - "event_count": Check exactly Count events of Kind were emitted
	// - "event_order": Check Quads were emitted with Kind in this order
	// - "final_state": Check the quads matching Pattern after the last step
	Type string `yaml:"type"`

	// Kind is the event kind (used by event_*).
	Kind string `yaml:"kind,omitempty"`

	// Quad is the expected event quad (used by event_contains).
	Quad *quadfile.Entry `yaml:"quad,omitempty"`

	// Pattern selects the stored quads (used by final_state). Nil matches all.
	Pattern *quadfile.Entry `yaml:"pattern,omitempty"`

	// Count is the expected number of events or stored quads.
	Count *int `yaml:"count,omitempty"`

	// Quads are N-Quads lines (used by event_order and final_state).
	Quads []string `yaml:"quads,omitempty"`
}

// Step operations.
const (
	OpAdd           = "add"
	OpDelete        = "delete"
	OpDeleteMatches = "delete_matches"
	OpMatch         = "match"
	OpHas           = "has"
	OpSize          = "size"
)

// Assertion type constants.
const (
	AssertEventContains = "event_contains"
	AssertEventCount    = "event_count"
	AssertEventOrder    = "event_order"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Fixture paths are resolved relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving fixture paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, fixture := range scenario.Fixtures {
		if !filepath.IsAbs(fixture) && basePath != "" {
			scenario.Fixtures[i] = filepath.Join(basePath, fixture)
		}
	}
	for _, fixture := range scenario.Fixtures {
		if _, err := os.Stat(fixture); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: fixture file not found: %s", fixture)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. Fixture paths are left
// as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks operands against the operation. Terms are parsed here
// so a malformed scenario fails at load time rather than mid-run.
func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpAdd, OpDelete, OpHas:
		if step.Pattern != nil {
			return fmt.Errorf("steps[%d]: %s takes quads, not a pattern", index, step.Op)
		}
		if _, err := entryQuads(step.Quads); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case OpMatch, OpDeleteMatches:
		if len(step.Quads) > 0 {
			return fmt.Errorf("steps[%d]: %s takes a pattern, not quads", index, step.Op)
		}
		if _, err := entryPattern(step.Pattern); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case OpSize:
		if len(step.Quads) > 0 || step.Pattern != nil {
			return fmt.Errorf("steps[%d]: size takes no operands", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if e := step.Expect; e != nil {
		switch e.Error {
		case "", string(quadstore.ErrCodeValidation), string(quadstore.ErrCodeConnection), string(quadstore.ErrCodeStorage):
		default:
			return fmt.Errorf("steps[%d].expect: unknown error code %q", index, e.Error)
		}
		if e.Result != nil && step.Op != OpHas {
			return fmt.Errorf("steps[%d].expect: result is only valid for has", index)
		}
		if len(e.Quads) > 0 && step.Op != OpMatch {
			return fmt.Errorf("steps[%d].expect: quads is only valid for match", index)
		}
		if _, err := parseLines(e.Quads); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventContains:
		if err := validateKind(index, a.Kind); err != nil {
			return err
		}
		if a.Quad == nil {
			return fmt.Errorf("assertions[%d]: quad is required for event_contains", index)
		}
		if _, err := a.Quad.Quad(); err != nil {
			return fmt.Errorf("assertions[%d]: quad: %w", index, err)
		}
	case AssertEventCount:
		if err := validateKind(index, a.Kind); err != nil {
			return err
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertEventOrder:
		if err := validateKind(index, a.Kind); err != nil {
			return err
		}
		if len(a.Quads) == 0 {
			return fmt.Errorf("assertions[%d]: quads list is required for event_order", index)
		}
		if _, err := parseLines(a.Quads); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertFinalState:
		if a.Count == nil && a.Quads == nil {
			return fmt.Errorf("assertions[%d]: count or quads is required for final_state", index)
		}
		if a.Count != nil && *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for final_state", index)
		}
		if _, err := entryPattern(a.Pattern); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if _, err := parseLines(a.Quads); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func validateKind(index int, kind string) error {
	switch quadstore.EventKind(kind) {
	case quadstore.EventAdded, quadstore.EventDeleted, quadstore.EventError:
		return nil
	case "":
		return fmt.Errorf("assertions[%d]: kind is required", index)
	}
	return fmt.Errorf("assertions[%d]: unknown event kind %q", index, kind)
}

// entryQuads parses step operands.
func entryQuads(entries []quadfile.Entry) ([]rdf.Quad, error) {
	quads := make([]rdf.Quad, 0, len(entries))
	for i, e := range entries {
		q, err := e.Quad()
		if err != nil {
			return nil, fmt.Errorf("quads[%d]: %w", i, err)
		}
		quads = append(quads, q)
	}
	return quads, nil
}

// entryPattern parses an optional pattern; nil is the empty pattern.
func entryPattern(e *quadfile.Entry) (rdf.Pattern, error) {
	if e == nil {
		return rdf.Pattern{}, nil
	}
	p, err := quadfile.ParsePattern(e.Subject, e.Predicate, e.Object, e.Graph)
	if err != nil {
		return rdf.Pattern{}, fmt.Errorf("pattern: %w", err)
	}
	return p, nil
}

// parseLines parses N-Quads lines into a dataset.
func parseLines(lines []string) (*rdf.Dataset, error) {
	ds := rdf.NewDataset()
	for i, line := range lines {
		q, err := rdf.ParseQuad(line)
		if err != nil {
			return nil, fmt.Errorf("quads[%d]: %w", i, err)
		}
		ds.Add(q)
	}
	return ds, nil
}
