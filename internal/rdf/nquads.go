package rdf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	rdfgo "github.com/geoknoesis/rdf-go/rdf"
)

var (
	// ErrInvalidSyntax is returned for malformed N-Quads input.
	ErrInvalidSyntax = errors.New("invalid N-Quads syntax")
)

// A lone term is read as the object of a framing statement.
const (
	termFrameSubject   = "<urn:quadstore:term>"
	termFramePredicate = "<urn:quadstore:value>"
)

// Decoder reads quads from an N-Quads stream. Blank lines and comments are
// skipped; statements without a graph term are placed in the default graph.
type Decoder struct {
	r rdfgo.Reader
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) (*Decoder, error) {
	rd, err := rdfgo.NewReader(r, rdfgo.FormatNQuads)
	if err != nil {
		return nil, fmt.Errorf("create N-Quads reader: %w", err)
	}
	return &Decoder{r: rd}, nil
}

// Next returns the next quad, or io.EOF when the stream is exhausted.
// Syntax errors wrap ErrInvalidSyntax and name the offending line.
func (d *Decoder) Next() (Quad, error) {
	st, err := d.r.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Quad{}, io.EOF
		}
		return Quad{}, syntaxError(err)
	}
	return fromStatement(st)
}

// Close releases the underlying reader.
func (d *Decoder) Close() error {
	return d.r.Close()
}

// ParseQuad parses one N-Quads statement: three or four terms followed by ".".
// A statement without a graph term is placed in the default graph.
func ParseQuad(line string) (Quad, error) {
	line = strings.TrimSpace(line)
	if strings.ContainsAny(line, "\r\n") {
		return Quad{}, fmt.Errorf("%w: statement spans lines", ErrInvalidSyntax)
	}
	dec, err := NewDecoder(strings.NewReader(line))
	if err != nil {
		return Quad{}, err
	}
	defer dec.Close()

	q, err := dec.Next()
	if errors.Is(err, io.EOF) {
		return Quad{}, fmt.Errorf("%w: empty statement", ErrInvalidSyntax)
	}
	return q, err
}

// ParseTerm parses a single term in N-Quads syntax:
//
//	<http://example.com/s>   NamedNode
//	_:b1                     BlankNode
//	"text"                   Literal (xsd:string)
//	"text"@en                Literal (rdf:langString)
//	"1"^^<http://...#int>    Literal (typed)
func ParseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: expected term", ErrInvalidSyntax)
	}
	q, err := ParseQuad(termFrameSubject + " " + termFramePredicate + " " + s + " .")
	if err != nil {
		return nil, err
	}
	if q.Graph != (DefaultGraph{}) {
		return nil, fmt.Errorf("%w: trailing input after term %s", ErrInvalidSyntax, q.Object)
	}
	return q.Object, nil
}

func syntaxError(err error) error {
	var pe *rdfgo.ParseError
	if errors.As(err, &pe) && pe.Line > 0 {
		return fmt.Errorf("%w: line %d: %v", ErrInvalidSyntax, pe.Line, pe.Err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidSyntax, err)
}

func fromStatement(st rdfgo.Statement) (Quad, error) {
	subject, err := fromTerm(st.S)
	if err != nil {
		return Quad{}, err
	}
	object, err := fromTerm(st.O)
	if err != nil {
		return Quad{}, err
	}
	var graph Term
	if st.G != nil {
		if graph, err = fromTerm(st.G); err != nil {
			return Quad{}, err
		}
	}
	return NewQuad(subject, NewNamedNode(st.P.Value), object, graph), nil
}

// fromTerm maps a decoded term onto the closed Term variants. Quoted
// triples have no counterpart and are rejected.
func fromTerm(t rdfgo.Term) (Term, error) {
	switch v := t.(type) {
	case rdfgo.IRI:
		return NewNamedNode(v.Value), nil
	case rdfgo.BlankNode:
		return NewBlankNode(v.ID), nil
	case rdfgo.Literal:
		var (
			lit Literal
			err error
		)
		if v.Lang != "" {
			lit, err = NewLangLiteral(v.Lexical, v.Lang)
		} else {
			lit, err = NewTypedLiteral(v.Lexical, NewNamedNode(v.Datatype.Value))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSyntax, err)
		}
		return lit, nil
	case nil:
		return nil, fmt.Errorf("%w: missing term", ErrInvalidSyntax)
	default:
		return nil, fmt.Errorf("%w: unsupported term %s", ErrInvalidSyntax, t.String())
	}
}
