// Package termcheck classifies which terms are legal in each quad position.
//
// All functions are pure and total: nil, unknown or non-quad input yields
// false rather than an error.
//
// Position rules:
//   - subject:   NamedNode | BlankNode
//   - predicate: NamedNode
//   - object:    NamedNode | Literal | BlankNode
//   - graph:     DefaultGraph | NamedNode
package termcheck

import (
	"fmt"
	"reflect"

	"github.com/roach88/quadstore/internal/rdf"
)

// Position names a quad position.
type Position string

const (
	Subject   Position = "subject"
	Predicate Position = "predicate"
	Object    Position = "object"
	Graph     Position = "graph"
)

// ValidSubject reports whether t may appear in the subject position.
func ValidSubject(t rdf.Term) bool {
	switch t.(type) {
	case rdf.NamedNode, rdf.BlankNode:
		return true
	case rdf.Literal, rdf.DefaultGraph:
		return false
	default:
		return false
	}
}

// ValidPredicate reports whether t may appear in the predicate position.
func ValidPredicate(t rdf.Term) bool {
	switch t.(type) {
	case rdf.NamedNode:
		return true
	case rdf.BlankNode, rdf.Literal, rdf.DefaultGraph:
		return false
	default:
		return false
	}
}

// ValidObject reports whether t may appear in the object position.
func ValidObject(t rdf.Term) bool {
	switch t.(type) {
	case rdf.NamedNode, rdf.Literal, rdf.BlankNode:
		return true
	case rdf.DefaultGraph:
		return false
	default:
		return false
	}
}

// ValidGraph reports whether t may appear in the graph position.
func ValidGraph(t rdf.Term) bool {
	switch t.(type) {
	case rdf.DefaultGraph, rdf.NamedNode:
		return true
	case rdf.BlankNode, rdf.Literal:
		return false
	default:
		return false
	}
}

// ValidQuad reports whether v is a quad (rdf.Quad or non-nil *rdf.Quad)
// whose four positions all pass their predicates.
func ValidQuad(v any) bool {
	var q rdf.Quad
	switch val := v.(type) {
	case rdf.Quad:
		q = val
	case *rdf.Quad:
		if val == nil {
			return false
		}
		q = *val
	default:
		return false
	}
	return ValidSubject(q.Subject) &&
		ValidPredicate(q.Predicate) &&
		ValidObject(q.Object) &&
		ValidGraph(q.Graph)
}

// CheckQuad returns the first invalid position of q, or "" if q is valid.
func CheckQuad(q rdf.Quad) Position {
	switch {
	case !ValidSubject(q.Subject):
		return Subject
	case !ValidPredicate(q.Predicate):
		return Predicate
	case !ValidObject(q.Object):
		return Object
	case !ValidGraph(q.Graph):
		return Graph
	}
	return ""
}

// CheckPattern returns the first populated position of p that fails its
// predicate, or "" if every populated position is valid.
func CheckPattern(p rdf.Pattern) Position {
	switch {
	case p.Subject != nil && !ValidSubject(p.Subject):
		return Subject
	case p.Predicate != nil && !ValidPredicate(p.Predicate):
		return Predicate
	case p.Object != nil && !ValidObject(p.Object):
		return Object
	case p.Graph != nil && !ValidGraph(p.Graph):
		return Graph
	}
	return ""
}

// ValidPattern reports whether every populated position of p is valid.
func ValidPattern(p rdf.Pattern) bool {
	return CheckPattern(p) == ""
}

// Describe renders a term for error messages, including its kind.
// A nil pointer held in the interface is rendered by its type alone.
func Describe(t rdf.Term) string {
	if t == nil {
		return "<nil>"
	}
	if v := reflect.ValueOf(t); v.Kind() == reflect.Pointer && v.IsNil() {
		return fmt.Sprintf("nil %T", t)
	}
	return fmt.Sprintf("%s %s", t.Kind(), t.String())
}
