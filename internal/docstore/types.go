package docstore

import (
	"errors"
	"fmt"
)

// ErrDuplicate reports a uniqueness-constraint violation outside the upsert path,
// e.g. creating a unique index over a collection that already holds duplicates.
var ErrDuplicate = errors.New("docstore: duplicate document")

// TermDoc is the stored form of one RDF term.
// Field order is fixed; backends that compare embedded documents byte-wise
// (MongoDB) rely on it.
type TermDoc struct {
	TermType string   `bson:"termType" json:"termType" yaml:"termType"`
	Value    string   `bson:"value" json:"value" yaml:"value"`
	Language string   `bson:"language,omitempty" json:"language,omitempty" yaml:"language,omitempty"`
	Datatype *TermDoc `bson:"datatype,omitempty" json:"datatype,omitempty" yaml:"datatype,omitempty"`
}

// QuadDoc is the stored form of one quad.
type QuadDoc struct {
	ID        string  `bson:"-" json:"_id,omitempty" yaml:"-"`
	Subject   TermDoc `bson:"subject" json:"subject" yaml:"subject"`
	Predicate TermDoc `bson:"predicate" json:"predicate" yaml:"predicate"`
	Object    TermDoc `bson:"object" json:"object" yaml:"object"`
	Graph     TermDoc `bson:"graph" json:"graph" yaml:"graph"`
}

// Field names a top-level document field.
type Field string

const (
	FieldSubject   Field = "subject"
	FieldPredicate Field = "predicate"
	FieldObject    Field = "object"
	FieldGraph     Field = "graph"
)

// Fields lists the quad fields in tuple order.
var Fields = []Field{FieldSubject, FieldPredicate, FieldObject, FieldGraph}

// Valid reports whether f is one of the quad fields.
func (f Field) Valid() bool {
	switch f {
	case FieldSubject, FieldPredicate, FieldObject, FieldGraph:
		return true
	}
	return false
}

// Get returns the term stored under f.
func (d QuadDoc) Get(f Field) TermDoc {
	switch f {
	case FieldSubject:
		return d.Subject
	case FieldPredicate:
		return d.Predicate
	case FieldObject:
		return d.Object
	default:
		return d.Graph
	}
}

// Equals is a single exact-equality clause: field = value.
type Equals struct {
	Field Field
	Value TermDoc
}

// Filter is a conjunction of Equals clauses.
// An empty filter matches every document.
type Filter struct {
	Clauses []Equals
}

// Where appends a clause and returns the filter for chaining.
func (f Filter) Where(field Field, value TermDoc) Filter {
	clauses := make([]Equals, len(f.Clauses), len(f.Clauses)+1)
	copy(clauses, f.Clauses)
	f.Clauses = append(clauses, Equals{Field: field, Value: value})
	return f
}

// Validate checks that every clause names a known field and no field repeats.
func (f Filter) Validate() error {
	seen := make(map[Field]bool, len(f.Clauses))
	for i, c := range f.Clauses {
		if !c.Field.Valid() {
			return fmt.Errorf("clause %d: unknown field %q", i, c.Field)
		}
		if seen[c.Field] {
			return fmt.Errorf("clause %d: field %q constrained twice", i, c.Field)
		}
		if c.Value.TermType == "" {
			return fmt.Errorf("clause %d: field %q has no term type", i, c.Field)
		}
		seen[c.Field] = true
	}
	return nil
}

// ExactFilter returns the filter matching exactly the tuple of d.
// The ID is not part of the filter.
func ExactFilter(d QuadDoc) Filter {
	return Filter{Clauses: []Equals{
		{Field: FieldSubject, Value: d.Subject},
		{Field: FieldPredicate, Value: d.Predicate},
		{Field: FieldObject, Value: d.Object},
		{Field: FieldGraph, Value: d.Graph},
	}}
}

// FindOptions controls Find projections.
type FindOptions struct {
	// IncludeID populates QuadDoc.ID in results.
	IncludeID bool
}

// IndexSpec describes a secondary index.
type IndexSpec struct {
	Name   string
	Fields []Field
	Unique bool
}
