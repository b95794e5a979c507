package docstore

import (
	"fmt"

	"github.com/roach88/quadstore/internal/rdf"
)

// EncodeTerm converts a term to its stored form. Literals are stored in
// canonical form so an implied datatype and an explicit one share a key.
// A nil term encodes to the zero TermDoc.
func EncodeTerm(t rdf.Term) TermDoc {
	switch term := t.(type) {
	case rdf.NamedNode:
		return TermDoc{TermType: string(rdf.KindNamedNode), Value: term.Value}
	case rdf.BlankNode:
		return TermDoc{TermType: string(rdf.KindBlankNode), Value: term.Value}
	case rdf.Literal:
		term = term.Canonical()
		return TermDoc{
			TermType: string(rdf.KindLiteral),
			Value:    term.Value,
			Language: term.Language,
			Datatype: &TermDoc{TermType: string(rdf.KindNamedNode), Value: term.Datatype.Value},
		}
	case rdf.DefaultGraph:
		return TermDoc{TermType: string(rdf.KindDefaultGraph)}
	default:
		return TermDoc{}
	}
}

// DecodeTerm converts a stored term back into an rdf.Term.
// Values are taken verbatim; a literal without a stored datatype gets the
// datatype implied by its language tag.
func DecodeTerm(d TermDoc) (rdf.Term, error) {
	switch rdf.TermKind(d.TermType) {
	case rdf.KindNamedNode:
		return rdf.NamedNode{Value: d.Value}, nil
	case rdf.KindBlankNode:
		return rdf.BlankNode{Value: d.Value}, nil
	case rdf.KindLiteral:
		lit := rdf.Literal{Value: d.Value, Language: d.Language}
		switch {
		case d.Datatype != nil:
			if d.Datatype.TermType != string(rdf.KindNamedNode) {
				return nil, fmt.Errorf("literal datatype has term type %q", d.Datatype.TermType)
			}
			lit.Datatype = rdf.NamedNode{Value: d.Datatype.Value}
		case d.Language != "":
			lit.Datatype = rdf.NamedNode{Value: rdf.RDFLangString}
		default:
			lit.Datatype = rdf.NamedNode{Value: rdf.XSDString}
		}
		return lit, nil
	case rdf.KindDefaultGraph:
		return rdf.DefaultGraph{}, nil
	default:
		return nil, fmt.Errorf("unknown term type %q", d.TermType)
	}
}

// EncodeQuad converts a quad to its stored form (without ID).
func EncodeQuad(q rdf.Quad) QuadDoc {
	return QuadDoc{
		Subject:   EncodeTerm(q.Subject),
		Predicate: EncodeTerm(q.Predicate),
		Object:    EncodeTerm(q.Object),
		Graph:     EncodeTerm(q.Graph),
	}
}

// DecodeQuad reconstructs a quad from a stored document.
func DecodeQuad(d QuadDoc) (rdf.Quad, error) {
	var terms [4]rdf.Term
	for i, f := range Fields {
		t, err := DecodeTerm(d.Get(f))
		if err != nil {
			return rdf.Quad{}, fmt.Errorf("decode %s: %w", f, err)
		}
		terms[i] = t
	}
	return rdf.Quad{Subject: terms[0], Predicate: terms[1], Object: terms[2], Graph: terms[3]}, nil
}

// PatternFilter builds a filter with one clause per populated pattern position,
// in tuple order. The empty pattern yields the empty filter.
func PatternFilter(p rdf.Pattern) Filter {
	var f Filter
	if p.Subject != nil {
		f = f.Where(FieldSubject, EncodeTerm(p.Subject))
	}
	if p.Predicate != nil {
		f = f.Where(FieldPredicate, EncodeTerm(p.Predicate))
	}
	if p.Object != nil {
		f = f.Where(FieldObject, EncodeTerm(p.Object))
	}
	if p.Graph != nil {
		f = f.Where(FieldGraph, EncodeTerm(p.Graph))
	}
	return f
}
