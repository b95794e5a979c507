// Package provision creates the indexes the quad collection relies on.
//
// Four single-field indexes serve pattern matches on one position; the
// unique compound index over all four positions backs the insert-if-absent
// guarantee under concurrent writers.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/quadstore/internal/docstore"
)

// Indexes returns the index set in creation order.
func Indexes() []docstore.IndexSpec {
	return []docstore.IndexSpec{
		{Name: "subject", Fields: []docstore.Field{docstore.FieldSubject}},
		{Name: "predicate", Fields: []docstore.Field{docstore.FieldPredicate}},
		{Name: "object", Fields: []docstore.Field{docstore.FieldObject}},
		{Name: "graph", Fields: []docstore.Field{docstore.FieldGraph}},
		{Name: "quad", Fields: docstore.Fields, Unique: true},
	}
}

// EnsureIndexes connects through connector, creates every index in
// Indexes() and closes the collection. Re-running is a no-op.
//
// Fails with docstore.ErrDuplicate (wrapped) if the collection already
// holds duplicate quads.
func EnsureIndexes(ctx context.Context, connector docstore.Connector) error {
	coll, err := connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("provision: connect: %w", err)
	}
	defer func() {
		if cerr := coll.Close(ctx); cerr != nil {
			slog.Warn("provision: close collection", "error", cerr)
		}
	}()

	return Apply(ctx, coll)
}

// Apply creates the indexes on an already connected collection.
func Apply(ctx context.Context, coll docstore.Collection) error {
	specs := Indexes()
	if err := coll.CreateIndexes(ctx, specs); err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	slog.Info("indexes ensured", "count", len(specs))
	return nil
}
