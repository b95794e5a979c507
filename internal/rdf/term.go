package rdf

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Well-known datatype IRIs.
const (
	XSDString     = "http://www.w3.org/2001/XMLSchema#string"
	RDFLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// TermKind discriminates the term variants.
type TermKind string

const (
	KindNamedNode    TermKind = "NamedNode"
	KindBlankNode    TermKind = "BlankNode"
	KindLiteral      TermKind = "Literal"
	KindDefaultGraph TermKind = "DefaultGraph"
)

// Term is a sealed interface over NamedNode, BlankNode, Literal and DefaultGraph.
type Term interface {
	termNode() // Sealed - only types in this package implement it

	// Kind returns the variant tag.
	Kind() TermKind

	// String returns the N-Quads serialization of the term.
	// DefaultGraph serializes to the empty string.
	String() string
}

// NamedNode is an IRI term.
type NamedNode struct {
	Value string
}

func (NamedNode) termNode() {}

// Kind implements Term.
func (NamedNode) Kind() TermKind { return KindNamedNode }

func (n NamedNode) String() string { return "<" + n.Value + ">" }

// BlankNode is a blank node term. Value is the label without the "_:" prefix.
type BlankNode struct {
	Value string
}

func (BlankNode) termNode() {}

// Kind implements Term.
func (BlankNode) Kind() TermKind { return KindBlankNode }

func (b BlankNode) String() string { return "_:" + b.Value }

// Literal is a literal term.
// Language is lower-case and empty for literals without a language tag.
type Literal struct {
	Value    string
	Language string
	Datatype NamedNode
}

func (Literal) termNode() {}

// Kind implements Term.
func (Literal) Kind() TermKind { return KindLiteral }

func (l Literal) String() string {
	quoted := `"` + escapeLiteral(l.Value) + `"`
	if l.Language != "" {
		return quoted + "@" + l.Language
	}
	if l.Datatype.Value == "" || l.Datatype.Value == XSDString {
		return quoted
	}
	return quoted + "^^" + l.Datatype.String()
}

// DefaultGraph is the default graph term.
type DefaultGraph struct{}

func (DefaultGraph) termNode() {}

// Kind implements Term.
func (DefaultGraph) Kind() TermKind { return KindDefaultGraph }

func (DefaultGraph) String() string { return "" }

// NewNamedNode creates a NamedNode.
func NewNamedNode(iri string) NamedNode {
	return NamedNode{Value: iri}
}

// NewBlankNode creates a BlankNode. A leading "_:" is stripped.
func NewBlankNode(label string) BlankNode {
	return BlankNode{Value: strings.TrimPrefix(label, "_:")}
}

// NewLiteral creates a plain literal with datatype xsd:string.
func NewLiteral(value string) Literal {
	return Literal{Value: value, Datatype: NamedNode{Value: XSDString}}
}

// NewLangLiteral creates a language-tagged literal with datatype rdf:langString.
// The tag must be well-formed BCP 47; it is stored in lower case.
func NewLangLiteral(value, lang string) (Literal, error) {
	if _, err := language.Parse(lang); err != nil {
		return Literal{}, fmt.Errorf("invalid language tag %q: %w", lang, err)
	}
	return Literal{
		Value:    value,
		Language: strings.ToLower(lang),
		Datatype: NamedNode{Value: RDFLangString},
	}, nil
}

// MustLangLiteral is like NewLangLiteral but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustLangLiteral(value, lang string) Literal {
	l, err := NewLangLiteral(value, lang)
	if err != nil {
		panic(err)
	}
	return l
}

// NewTypedLiteral creates a literal with an explicit datatype.
// A zero datatype defaults to xsd:string. rdf:langString requires a language
// tag and is rejected here; use NewLangLiteral.
func NewTypedLiteral(value string, datatype NamedNode) (Literal, error) {
	switch datatype.Value {
	case "":
		return NewLiteral(value), nil
	case RDFLangString:
		return Literal{}, fmt.Errorf("datatype %s requires a language tag", RDFLangString)
	}
	return Literal{Value: value, Datatype: datatype}, nil
}

// Canonical returns l with its implied datatype filled in: rdf:langString
// when a language tag is set, xsd:string otherwise.
func (l Literal) Canonical() Literal {
	if l.Datatype.Value == "" {
		l.Datatype.Value = XSDString
		if l.Language != "" {
			l.Datatype.Value = RDFLangString
		}
	}
	return l
}

// Equal reports whether two terms are structurally equal.
// Literals compare in canonical form. Nil terms are equal only to nil.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if la, ok := a.(Literal); ok {
		if lb, ok := b.(Literal); ok {
			return la.Canonical() == lb.Canonical()
		}
		return false
	}
	return a == b
}

// escapeLiteral applies the N-Triples string escapes.
func escapeLiteral(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
