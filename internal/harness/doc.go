// Package harness runs scripted quad store scenarios and checks their traces.
//
// A scenario drives a quadstore.Store through a list of operations, records
// every step result and every notification the store emits, and then
// evaluates assertions against that trace and the final stored state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	fixtures:
//	  - quads/base.nq
//	steps:
//	  - op: add
//	    quads:
//	      - subject: "<ex:hello>"
//	        predicate: "<rdfs:label>"
//	        object: '"Hello World!"@en'
//	    expect:
//	      count: 1
//	  - op: match
//	    pattern: { subject: "<ex:hello>" }
//	    expect:
//	      quads:
//	        - '<ex:hello> <rdfs:label> "Hello World!"@en .'
//	assertions:
//	  - type: event_count
//	    kind: added
//	    count: 1
//	  - type: final_state
//	    pattern: { predicate: "<rdfs:label>" }
//	    count: 1
//
// Fixture paths are relative to the scenario file and are added before the
// first step. Terms use N-Quads syntax; an empty pattern position is a
// wildcard and the graph "default" selects the default graph.
//
// # Operations
//
//   - add, delete: take quads; the step records the count
//   - delete_matches, match: take a pattern; match also records the quads
//   - has: takes quads; the step records the boolean result
//   - size: records the stored quad count
//
// An expect clause may name an error code (VALIDATION, CONNECTION, STORAGE)
// instead of a result.
//
// # Assertion Types
//
//   - event_contains: an event of the kind was emitted for the quad
//   - event_count: exactly N events of the kind were emitted
//   - event_order: the listed quads were emitted with the kind in that order
//   - final_state: the quads matching a pattern after the last step
//
// # Deterministic Traces
//
// Every run uses a fresh testutil.Sequencer shared by the store and the
// harness, so events and step records carry contiguous Seq values that are
// identical across runs. Run uses an in-memory SQLite collection; RunWith
// accepts any docstore.Connector.
package harness
