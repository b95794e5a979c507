// Package rdf provides the term and quad model persisted by the quad store.
//
// Terms form a closed variant:
//   - NamedNode: an IRI
//   - BlankNode: a locally scoped node label
//   - Literal: a lexical value with a language tag or datatype IRI
//   - DefaultGraph: the unnamed graph
//
// Term is a sealed interface. Only the four types in this package implement it,
// so type switches over Term are exhaustive. All terms are comparable value
// types; two terms are equal iff they have the same kind and the same fields
// once literals are in canonical form.
//
// The constructors always set a literal's datatype: plain literals get
// xsd:string and language-tagged literals get rdf:langString. A Literal built
// without one is given the implied datatype by Literal.Canonical, which Equal,
// Dataset and the storage codec apply.
//
// N-Quads input is decoded by Decoder, ParseQuad and ParseTerm.
package rdf
