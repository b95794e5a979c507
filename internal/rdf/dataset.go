package rdf

import "sort"

// Dataset is an unordered set of quads.
// Membership uses structural equality of the canonical form. Not safe for concurrent mutation.
type Dataset struct {
	quads map[Quad]struct{}
}

// NewDataset creates a dataset holding the given quads.
func NewDataset(quads ...Quad) *Dataset {
	d := &Dataset{quads: make(map[Quad]struct{}, len(quads))}
	for _, q := range quads {
		d.Add(q)
	}
	return d
}

// Add inserts q and reports whether it was not already present.
func (d *Dataset) Add(q Quad) bool {
	if d.quads == nil {
		d.quads = make(map[Quad]struct{})
	}
	q = q.Canonical()
	if _, ok := d.quads[q]; ok {
		return false
	}
	d.quads[q] = struct{}{}
	return true
}

// Has reports whether q is in the dataset.
func (d *Dataset) Has(q Quad) bool {
	_, ok := d.quads[q.Canonical()]
	return ok
}

// Delete removes q and reports whether it was present.
func (d *Dataset) Delete(q Quad) bool {
	q = q.Canonical()
	if _, ok := d.quads[q]; !ok {
		return false
	}
	delete(d.quads, q)
	return true
}

// Len returns the number of quads.
func (d *Dataset) Len() int {
	return len(d.quads)
}

// Quads returns the quads ordered by their N-Quads form.
// Returns an empty slice (not nil) for an empty dataset.
func (d *Dataset) Quads() []Quad {
	out := make([]Quad, 0, len(d.quads))
	for q := range d.quads {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Match returns the quads of d that satisfy p.
func (d *Dataset) Match(p Pattern) *Dataset {
	out := NewDataset()
	for q := range d.quads {
		if p.Matches(q) {
			out.Add(q)
		}
	}
	return out
}
