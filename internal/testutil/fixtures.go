package testutil

import "github.com/roach88/quadstore/internal/rdf"

// Terms used by the hello-world fixture.
var (
	ExHello   = rdf.NewNamedNode("ex:hello")
	ExLorem   = rdf.NewNamedNode("ex:lorem")
	RDFSLabel = rdf.NewNamedNode("rdfs:label")
	Blank1    = rdf.NewBlankNode("1")
)

// HelloQuads returns three quads in the default graph:
//
//	<ex:hello> <rdfs:label> "Hello World!"@en .
//	<ex:hello> <ex:lorem> _:1 .
//	_:1 <rdfs:label> "Lorem Ipsum" .
func HelloQuads() []rdf.Quad {
	return []rdf.Quad{
		rdf.NewQuad(ExHello, RDFSLabel, rdf.MustLangLiteral("Hello World!", "en"), nil),
		rdf.NewQuad(ExHello, ExLorem, Blank1, nil),
		rdf.NewQuad(Blank1, RDFSLabel, rdf.NewLiteral("Lorem Ipsum"), nil),
	}
}
