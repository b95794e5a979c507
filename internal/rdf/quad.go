package rdf

import "strings"

// Quad is an RDF statement in a graph.
// A zero Graph (nil) is not a valid quad position; use NewQuad to default it.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// NewQuad creates a quad. A nil graph defaults to DefaultGraph.
func NewQuad(subject, predicate, object, graph Term) Quad {
	if graph == nil {
		graph = DefaultGraph{}
	}
	return Quad{Subject: subject, Predicate: predicate, Object: object, Graph: graph}
}

// Equal reports whether two quads have structurally equal terms in every position.
func (q Quad) Equal(other Quad) bool {
	return Equal(q.Subject, other.Subject) &&
		Equal(q.Predicate, other.Predicate) &&
		Equal(q.Object, other.Object) &&
		Equal(q.Graph, other.Graph)
}

// Canonical returns q with every literal in canonical form.
func (q Quad) Canonical() Quad {
	q.Subject = canonicalTerm(q.Subject)
	q.Predicate = canonicalTerm(q.Predicate)
	q.Object = canonicalTerm(q.Object)
	q.Graph = canonicalTerm(q.Graph)
	return q
}

func canonicalTerm(t Term) Term {
	if l, ok := t.(Literal); ok {
		return l.Canonical()
	}
	return t
}

// String returns the N-Quads line for the quad, including the trailing " .".
// The graph is omitted for the default graph.
func (q Quad) String() string {
	parts := make([]string, 0, 5)
	for _, t := range []Term{q.Subject, q.Predicate, q.Object, q.Graph} {
		if t == nil {
			continue
		}
		if s := t.String(); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, ".")
	return strings.Join(parts, " ")
}

// Pattern is a partial quad. A nil position matches any term.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// IsEmpty reports whether no position is constrained.
func (p Pattern) IsEmpty() bool {
	return p.Subject == nil && p.Predicate == nil && p.Object == nil && p.Graph == nil
}

// Matches reports whether q satisfies every populated position of p.
func (p Pattern) Matches(q Quad) bool {
	return matchPosition(p.Subject, q.Subject) &&
		matchPosition(p.Predicate, q.Predicate) &&
		matchPosition(p.Object, q.Object) &&
		matchPosition(p.Graph, q.Graph)
}

func matchPosition(want, got Term) bool {
	return want == nil || Equal(want, got)
}
