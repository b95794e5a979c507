package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/roach88/quadstore/internal/docstore"
)

// Method names a docstore.Collection method for fault injection.
type Method string

const (
	MethodEstimatedCount   Method = "EstimatedCount"
	MethodFind             Method = "Find"
	MethodExists           Method = "Exists"
	MethodUpsertMany       Method = "UpsertMany"
	MethodFindOneAndDelete Method = "FindOneAndDelete"
	MethodDeleteByIDs      Method = "DeleteByIDs"
	MethodCreateIndexes    Method = "CreateIndexes"
)

type fault struct {
	after int // successful calls allowed before failing
	err   error
}

// FaultCollection wraps a Collection and fails chosen methods on demand.
type FaultCollection struct {
	docstore.Collection

	// BeforeDeleteByIDs, if set, runs before DeleteByIDs is delegated.
	BeforeDeleteByIDs func(ids []string)

	mu          sync.Mutex
	faults      map[Method]*fault
	calls       map[Method]int
	upsertLimit int
	upsertErr   error
}

// NewFaultCollection wraps inner.
func NewFaultCollection(inner docstore.Collection) *FaultCollection {
	return &FaultCollection{
		Collection: inner,
		faults:     make(map[Method]*fault),
		calls:      make(map[Method]int),
	}
}

// Fail makes every call to m fail with err.
func (f *FaultCollection) Fail(m Method, err error) {
	f.FailAfter(m, 0, err)
}

// FailAfter lets n calls to m through, then fails the rest with err.
func (f *FaultCollection) FailAfter(m Method, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[m] = &fault{after: n, err: err}
}

// PartialUpsert makes UpsertMany write only the first n documents of each
// call and then report err alongside the acknowledged inserts.
func (f *FaultCollection) PartialUpsert(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertLimit = n
	f.upsertErr = err
}

// Calls returns how many times m was invoked.
func (f *FaultCollection) Calls(m Method) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[m]
}

func (f *FaultCollection) check(m Method) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[m]++
	flt, ok := f.faults[m]
	if !ok {
		return nil
	}
	if f.calls[m] > flt.after {
		return flt.err
	}
	return nil
}

func (f *FaultCollection) EstimatedCount(ctx context.Context) (int64, error) {
	if err := f.check(MethodEstimatedCount); err != nil {
		return 0, err
	}
	return f.Collection.EstimatedCount(ctx)
}

func (f *FaultCollection) Find(ctx context.Context, filter docstore.Filter, opts docstore.FindOptions) ([]docstore.QuadDoc, error) {
	if err := f.check(MethodFind); err != nil {
		return nil, err
	}
	return f.Collection.Find(ctx, filter, opts)
}

func (f *FaultCollection) Exists(ctx context.Context, filter docstore.Filter) (bool, error) {
	if err := f.check(MethodExists); err != nil {
		return false, err
	}
	return f.Collection.Exists(ctx, filter)
}

func (f *FaultCollection) UpsertMany(ctx context.Context, docs []docstore.QuadDoc) ([]int, error) {
	if err := f.check(MethodUpsertMany); err != nil {
		return []int{}, err
	}
	f.mu.Lock()
	limit, perr := f.upsertLimit, f.upsertErr
	f.mu.Unlock()
	if perr != nil && limit < len(docs) {
		inserted, err := f.Collection.UpsertMany(ctx, docs[:limit])
		if err != nil {
			return inserted, err
		}
		return inserted, perr
	}
	return f.Collection.UpsertMany(ctx, docs)
}

func (f *FaultCollection) FindOneAndDelete(ctx context.Context, doc docstore.QuadDoc) (docstore.QuadDoc, bool, error) {
	if err := f.check(MethodFindOneAndDelete); err != nil {
		return docstore.QuadDoc{}, false, err
	}
	return f.Collection.FindOneAndDelete(ctx, doc)
}

func (f *FaultCollection) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if err := f.check(MethodDeleteByIDs); err != nil {
		return 0, err
	}
	if f.BeforeDeleteByIDs != nil {
		f.BeforeDeleteByIDs(ids)
	}
	return f.Collection.DeleteByIDs(ctx, ids)
}

func (f *FaultCollection) CreateIndexes(ctx context.Context, specs []docstore.IndexSpec) error {
	if err := f.check(MethodCreateIndexes); err != nil {
		return err
	}
	return f.Collection.CreateIndexes(ctx, specs)
}

// Connector counts Connect calls and can hold or fail them.
type Connector struct {
	// Collection is returned on success.
	Collection docstore.Collection
	// Err, if set, is returned instead of Collection.
	Err error
	// Gate, if set, blocks Connect until it is closed.
	Gate chan struct{}

	calls atomic.Int64
}

// Connect implements docstore.Connector.
func (c *Connector) Connect(ctx context.Context) (docstore.Collection, error) {
	c.calls.Add(1)
	if c.Gate != nil {
		<-c.Gate
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Collection, nil
}

// Calls returns how many times Connect ran.
func (c *Connector) Calls() int64 {
	return c.calls.Load()
}
