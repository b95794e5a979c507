package docstore

import "context"

// DefaultCollection is the collection quads are stored in.
const DefaultCollection = "quads"

// Collection is a handle on the backing quad collection.
// Implementations must be safe for concurrent use.
type Collection interface {
	// EstimatedCount returns an approximate document count.
	EstimatedCount(ctx context.Context) (int64, error)

	// Find returns every document matching filter, in no particular order.
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]QuadDoc, error)

	// Exists reports whether at least one document matches filter.
	Exists(ctx context.Context, filter Filter) (bool, error)

	// UpsertMany inserts each document unless one with the same tuple exists.
	// Returns the indexes (into docs) of documents that were newly inserted.
	// On error the returned indexes still describe acknowledged inserts.
	UpsertMany(ctx context.Context, docs []QuadDoc) ([]int, error)

	// FindOneAndDelete removes one document whose tuple equals doc's tuple
	// and returns it. found is false when no such document existed.
	FindOneAndDelete(ctx context.Context, doc QuadDoc) (removed QuadDoc, found bool, err error)

	// DeleteByIDs removes documents by storage ID and returns how many were removed.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)

	// CreateIndexes creates the given indexes. Existing indexes are left alone.
	CreateIndexes(ctx context.Context, specs []IndexSpec) error

	// Close releases the collection's connection.
	Close(ctx context.Context) error
}

// Connector establishes a Collection. Connect may block on network I/O.
type Connector interface {
	Connect(ctx context.Context) (Collection, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context) (Collection, error)

// Connect implements Connector.
func (f ConnectorFunc) Connect(ctx context.Context) (Collection, error) {
	return f(ctx)
}
