package rdf

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		in   string
		want Term
	}{
		{"<http://example.com/s>", NewNamedNode("http://example.com/s")},
		{"_:b1", NewBlankNode("b1")},
		{`"Lorem Ipsum"`, NewLiteral("Lorem Ipsum")},
		{`"Hello World!"@en`, MustLangLiteral("Hello World!", "en")},
		{`"tab\there"`, NewLiteral("tab\there")},
		{`"café"`, NewLiteral("café")},
		{`  <ex:hello>  `, NewNamedNode("ex:hello")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTerm(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTerm_Typed(t *testing.T) {
	got, err := ParseTerm(`"42"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	require.NoError(t, err)
	lit, ok := got.(Literal)
	require.True(t, ok)
	assert.Equal(t, "42", lit.Value)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", lit.Datatype.Value)
}

func TestParseTerm_Errors(t *testing.T) {
	for _, in := range []string{"", "<unterminated", `"open`, "plain", "<ex:a> <ex:b>", `"x"^^nope`, "_:", "<relative>"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTerm(in)
			assert.Error(t, err)
		})
	}
}

func TestParseQuad(t *testing.T) {
	q, err := ParseQuad(`<ex:hello> <rdfs:label> "Hello World!"@en .`)
	require.NoError(t, err)
	assert.Equal(t, NewQuad(
		NewNamedNode("ex:hello"),
		NewNamedNode("rdfs:label"),
		MustLangLiteral("Hello World!", "en"),
		nil,
	), q)

	q, err = ParseQuad(`_:1 <rdfs:label> "Lorem Ipsum" <ex:graph> .`)
	require.NoError(t, err)
	assert.Equal(t, NewNamedNode("ex:graph"), q.Graph)
	assert.Equal(t, NewBlankNode("1"), q.Subject)

	q, err = ParseQuad(`<ex:hello> <ex:lorem> _:1.`)
	require.NoError(t, err)
	assert.Equal(t, NewBlankNode("1"), q.Object)
}

func TestParseQuad_RoundTripsString(t *testing.T) {
	in := `<ex:s> <ex:p> "a \"quoted\" value"@de <ex:g> .`
	q, err := ParseQuad(in)
	require.NoError(t, err)
	assert.Equal(t, in, q.String())
}

func TestParseQuad_Errors(t *testing.T) {
	for _, in := range []string{
		"<ex:s> <ex:p> <ex:o>",
		"<ex:s> <ex:p> .",
		"<ex:s> <ex:p> <ex:o> <ex:g> <ex:x> .",
		`<ex:s> <ex:p> "x"@ .`,
		"<ex:s> <ex:p> <ex:o> .\n<ex:s> <ex:p> <ex:o> .",
		"",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseQuad(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSyntax))
		})
	}
}

func TestParseQuad_LanguageTagLowerCased(t *testing.T) {
	q, err := ParseQuad(`<ex:s> <ex:p> "Hello"@EN-us .`)
	require.NoError(t, err)
	assert.Equal(t, MustLangLiteral("Hello", "en-us"), q.Object)
}

func TestParseQuad_QuotedTripleRejected(t *testing.T) {
	_, err := ParseQuad(`<ex:s> <ex:p> <<<ex:a> <ex:b> <ex:c>>> .`)
	assert.ErrorIs(t, err, ErrInvalidSyntax)
}

func TestDecoder_Stream(t *testing.T) {
	in := "# comment\n" +
		"<ex:s> <ex:p> \"one\" .\n" +
		"\n" +
		"<ex:s> <ex:p> _:b <ex:g> .\n"
	dec, err := NewDecoder(strings.NewReader(in))
	require.NoError(t, err)
	defer dec.Close()

	q, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, NewQuad(NewNamedNode("ex:s"), NewNamedNode("ex:p"), NewLiteral("one"), nil), q)

	q, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, NewNamedNode("ex:g"), q.Graph)
	assert.Equal(t, NewBlankNode("b"), q.Object)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_ErrorNamesLine(t *testing.T) {
	dec, err := NewDecoder(strings.NewReader("<ex:a> <ex:b> <ex:c> .\n<ex:a> <ex:b>\n"))
	require.NoError(t, err)
	defer dec.Close()

	_, err = dec.Next()
	require.NoError(t, err)
	_, err = dec.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSyntax)
	assert.Contains(t, err.Error(), "line 2")
}
