package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermKinds(t *testing.T) {
	tests := []struct {
		term Term
		kind TermKind
	}{
		{NewNamedNode("http://example.com/s"), KindNamedNode},
		{NewBlankNode("b1"), KindBlankNode},
		{NewLiteral("x"), KindLiteral},
		{DefaultGraph{}, KindDefaultGraph},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.term.Kind())
	}
}

func TestNewBlankNode_StripsPrefix(t *testing.T) {
	assert.Equal(t, BlankNode{Value: "1"}, NewBlankNode("_:1"))
	assert.Equal(t, BlankNode{Value: "1"}, NewBlankNode("1"))
}

func TestNewLiteral_DefaultsDatatype(t *testing.T) {
	l := NewLiteral("Lorem Ipsum")
	assert.Equal(t, XSDString, l.Datatype.Value)
	assert.Empty(t, l.Language)
}

func TestNewLangLiteral(t *testing.T) {
	l, err := NewLangLiteral("Hello World!", "EN-us")
	require.NoError(t, err)
	assert.Equal(t, "en-us", l.Language)
	assert.Equal(t, RDFLangString, l.Datatype.Value)

	_, err = NewLangLiteral("x", "not a tag")
	assert.Error(t, err)
}

func TestNewTypedLiteral(t *testing.T) {
	l, err := NewTypedLiteral("1", NewNamedNode("http://www.w3.org/2001/XMLSchema#integer"))
	require.NoError(t, err)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", l.Datatype.Value)

	l, err = NewTypedLiteral("x", NamedNode{})
	require.NoError(t, err)
	assert.Equal(t, NewLiteral("x"), l)

	_, err = NewTypedLiteral("x", NewNamedNode(RDFLangString))
	assert.Error(t, err)
}

func TestEqual_Structural(t *testing.T) {
	assert.True(t, Equal(NewNamedNode("a"), NewNamedNode("a")))
	assert.False(t, Equal(NewNamedNode("a"), NewBlankNode("a")))
	assert.True(t, Equal(MustLangLiteral("x", "en"), MustLangLiteral("x", "EN")))
	assert.False(t, Equal(MustLangLiteral("x", "en"), NewLiteral("x")))
	assert.True(t, Equal(DefaultGraph{}, DefaultGraph{}))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, DefaultGraph{}))
}

func TestLiteral_Canonical(t *testing.T) {
	assert.Equal(t, NewLiteral("x"), Literal{Value: "x"}.Canonical())
	assert.Equal(t, MustLangLiteral("x", "en"), Literal{Value: "x", Language: "en"}.Canonical())

	typed := Literal{Value: "1", Datatype: NewNamedNode("http://www.w3.org/2001/XMLSchema#integer")}
	assert.Equal(t, typed, typed.Canonical())

	assert.True(t, Equal(Literal{Value: "x"}, NewLiteral("x")))
	assert.False(t, Equal(Literal{Value: "x"}, typed))
}

func TestTermString(t *testing.T) {
	assert.Equal(t, "<ex:hello>", NewNamedNode("ex:hello").String())
	assert.Equal(t, "_:1", NewBlankNode("1").String())
	assert.Equal(t, `"Hello World!"@en`, MustLangLiteral("Hello World!", "en").String())
	assert.Equal(t, `"a\"b\nc"`, NewLiteral("a\"b\nc").String())
	typed, _ := NewTypedLiteral("1", NewNamedNode("http://www.w3.org/2001/XMLSchema#integer"))
	assert.Equal(t, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`, typed.String())
	assert.Equal(t, "", DefaultGraph{}.String())
}

func TestQuad_NewQuadDefaultsGraph(t *testing.T) {
	q := NewQuad(NewNamedNode("s"), NewNamedNode("p"), NewNamedNode("o"), nil)
	assert.Equal(t, DefaultGraph{}, q.Graph)
	assert.Equal(t, "<s> <p> <o> .", q.String())

	g := NewQuad(NewNamedNode("s"), NewNamedNode("p"), NewNamedNode("o"), NewNamedNode("g"))
	assert.Equal(t, "<s> <p> <o> <g> .", g.String())
	assert.False(t, q.Equal(g))
}

func TestPattern_Matches(t *testing.T) {
	q := NewQuad(NewNamedNode("s1"), NewNamedNode("p2"), NewLiteral("o2"), nil)

	assert.True(t, Pattern{}.Matches(q))
	assert.True(t, Pattern{}.IsEmpty())
	assert.True(t, Pattern{Subject: NewNamedNode("s1")}.Matches(q))
	assert.True(t, Pattern{Object: NewLiteral("o2"), Graph: DefaultGraph{}}.Matches(q))
	assert.False(t, Pattern{Predicate: NewNamedNode("p1")}.Matches(q))
	assert.False(t, Pattern{Subject: NewNamedNode("s1")}.IsEmpty())
}
