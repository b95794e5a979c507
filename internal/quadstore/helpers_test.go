package quadstore_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/quadstore/internal/docstore"
	"github.com/roach88/quadstore/internal/docstore/sqlitedoc"
	"github.com/roach88/quadstore/internal/quadstore"
	"github.com/roach88/quadstore/internal/rdf"
	"github.com/roach88/quadstore/internal/testutil"
)

// newTestStore returns a store over a fresh SQLite file.
func newTestStore(t *testing.T, opts ...quadstore.Option) *quadstore.Store {
	t.Helper()
	s := quadstore.New(sqlitedoc.Connector{Path: filepath.Join(t.TempDir(), "test.db")}, opts...)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

// newFaultStore returns a store whose collection injects faults.
func newFaultStore(t *testing.T, opts ...quadstore.Option) (*quadstore.Store, *testutil.FaultCollection) {
	t.Helper()
	inner, err := sqlitedoc.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), "")
	require.NoError(t, err)
	fc := testutil.NewFaultCollection(inner)
	s := quadstore.New(docstore.ConnectorFunc(func(context.Context) (docstore.Collection, error) {
		return fc, nil
	}), opts...)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s, fc
}

// recorder collects notifications.
type recorder struct {
	mu      sync.Mutex
	added   []rdf.Quad
	deleted []rdf.Quad
	errs    []error
}

func (r *recorder) QuadAdded(q rdf.Quad) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, q)
}

func (r *recorder) QuadDeleted(q rdf.Quad) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, q)
}

func (r *recorder) StoreError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) counts() (added, deleted, errs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.added), len(r.deleted), len(r.errs)
}

func dataset(quads ...rdf.Quad) *rdf.Dataset {
	return rdf.NewDataset(quads...)
}
