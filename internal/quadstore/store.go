package quadstore

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/quadstore/internal/docstore"
	"github.com/roach88/quadstore/internal/rdf"
	"github.com/roach88/quadstore/internal/termcheck"
)

// DefaultMaxConcurrency bounds the per-quad lookups Has and Delete run at once.
const DefaultMaxConcurrency = 16

// Store persists quads in a backing document collection.
//
// Thread-safety: all methods are safe for concurrent use. Mutations are not
// serialized in-process; the backing collection's per-document atomicity is
// what keeps concurrent Add and Delete calls consistent.
type Store struct {
	conn           *conn
	hub            *hub
	logger         *slog.Logger
	seq            Sequencer
	maxConcurrency int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithSequencer sets the source of Event.Seq values.
func WithSequencer(seq Sequencer) Option {
	return func(s *Store) {
		s.seq = seq
	}
}

// WithMaxConcurrency bounds concurrent per-quad storage calls.
// Values below 1 mean DefaultMaxConcurrency.
func WithMaxConcurrency(n int) Option {
	return func(s *Store) {
		s.maxConcurrency = n
	}
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.hub.add(o)
	}
}

// New creates a Store. No connection is made until the first operation.
func New(connector docstore.Connector, opts ...Option) *Store {
	s := &Store{
		logger:         slog.Default(),
		seq:            &counter{},
		maxConcurrency: DefaultMaxConcurrency,
	}
	s.hub = newHub(s.logger, s.seq)
	for _, opt := range opts {
		opt(s)
	}
	if s.maxConcurrency < 1 {
		s.maxConcurrency = DefaultMaxConcurrency
	}
	s.hub.logger = s.logger
	s.hub.seq = s.seq
	s.conn = newConn(connector, s.logger)
	return s
}

// State returns the connection state.
func (s *Store) State() State {
	return s.conn.State()
}

// On registers an observer and returns a function that removes it.
func (s *Store) On(o Observer) (unsubscribe func()) {
	return s.hub.add(o)
}

// Subscribe returns a channel receiving every subsequent event. Events that
// would overflow buffer are dropped. cancel stops delivery and closes the
// channel; Close does the same for all subscriptions.
func (s *Store) Subscribe(buffer int) (events <-chan Event, cancel func()) {
	if buffer < 0 {
		buffer = 0
	}
	sub := &subscription{logger: s.logger, ch: make(chan Event, buffer)}
	remove := s.hub.add(sub)
	return sub.ch, func() {
		remove()
		sub.close()
	}
}

// Close releases the backing collection and closes every subscription
// channel. Operations after Close fail with a connection error.
func (s *Store) Close(ctx context.Context) error {
	err := s.conn.close(ctx)
	for _, o := range s.hub.snapshot() {
		if sub, ok := o.(*subscription); ok {
			sub.close()
		}
	}
	if err != nil {
		return fmt.Errorf("close collection: %w", err)
	}
	return nil
}

// collection returns the backing collection, reporting connection failures.
func (s *Store) collection(ctx context.Context) (docstore.Collection, error) {
	coll, err := s.conn.get(ctx)
	if err != nil {
		s.hub.failed(err)
		return nil, err
	}
	return coll, nil
}

// storageFailure wraps, logs and emits a backing-collection error.
func (s *Store) storageFailure(op string, err error) error {
	serr := newStorageError(op, err)
	s.logger.Error("storage operation failed", "op", op, "error", err)
	s.hub.failed(serr)
	return serr
}

// Size returns the approximate number of stored quads. Backends may answer
// from metadata that lags recent writes.
func (s *Store) Size(ctx context.Context) (int64, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}
	n, err := coll.EstimatedCount(ctx)
	if err != nil {
		return 0, s.storageFailure("size", err)
	}
	return n, nil
}

// Match returns every stored quad matching p. Nil positions are wildcards.
func (s *Store) Match(ctx context.Context, p rdf.Pattern) (*rdf.Dataset, error) {
	if err := validatePattern("match", p); err != nil {
		return nil, err
	}
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := coll.Find(ctx, docstore.PatternFilter(p), docstore.FindOptions{})
	if err != nil {
		return nil, s.storageFailure("match", err)
	}
	ds := rdf.NewDataset()
	for _, d := range docs {
		q, err := docstore.DecodeQuad(d)
		if err != nil {
			return nil, s.storageFailure("match", err)
		}
		ds.Add(q)
	}
	s.logger.Debug("match", "pattern_empty", p.IsEmpty(), "results", ds.Len())
	return ds, nil
}

// Add inserts every quad not already stored and returns how many were new.
// An added event fires for each newly inserted quad. If the backend fails
// part way, the count and events still cover the acknowledged inserts.
func (s *Store) Add(ctx context.Context, quads ...rdf.Quad) (int, error) {
	if len(quads) == 0 {
		return 0, nil
	}
	if err := validateQuads("add", quads); err != nil {
		return 0, err
	}
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}

	docs := make([]docstore.QuadDoc, len(quads))
	for i, q := range quads {
		docs[i] = docstore.EncodeQuad(q)
	}
	inserted, err := coll.UpsertMany(ctx, docs)
	for _, idx := range inserted {
		s.hub.added(quads[idx])
	}
	if err != nil {
		return len(inserted), s.storageFailure("add", err)
	}
	s.logger.Debug("add", "requested", len(quads), "inserted", len(inserted))
	return len(inserted), nil
}

// Delete removes each given quad that is stored and returns how many were
// removed. Quads are removed concurrently; a deleted event fires for each
// quad actually removed.
func (s *Store) Delete(ctx context.Context, quads ...rdf.Quad) (int, error) {
	if len(quads) == 0 {
		return 0, nil
	}
	if err := validateQuads("delete", quads); err != nil {
		return 0, err
	}
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}

	removed := make([]bool, len(quads))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, q := range quads {
		g.Go(func() error {
			_, found, err := coll.FindOneAndDelete(ctx, docstore.EncodeQuad(q))
			if err != nil {
				return err
			}
			removed[i] = found
			return nil
		})
	}
	gerr := g.Wait()

	count := 0
	for i, ok := range removed {
		if ok {
			count++
			s.hub.deleted(quads[i])
		}
	}
	if gerr != nil {
		return count, s.storageFailure("delete", gerr)
	}
	s.logger.Debug("delete", "requested", len(quads), "removed", count)
	return count, nil
}

// DeleteMatches removes every stored quad matching p. Matching documents
// are resolved first and then removed by storage ID; a deleted event fires
// for each resolved quad and the resolved count is returned.
func (s *Store) DeleteMatches(ctx context.Context, p rdf.Pattern) (int, error) {
	if err := validatePattern("deleteMatches", p); err != nil {
		return 0, err
	}
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}

	docs, err := coll.Find(ctx, docstore.PatternFilter(p), docstore.FindOptions{IncludeID: true})
	if err != nil {
		return 0, s.storageFailure("deleteMatches", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	quads := make([]rdf.Quad, len(docs))
	ids := make([]string, len(docs))
	for i, d := range docs {
		q, err := docstore.DecodeQuad(d)
		if err != nil {
			return 0, s.storageFailure("deleteMatches", err)
		}
		quads[i] = q
		ids[i] = d.ID
	}

	n, err := coll.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, s.storageFailure("deleteMatches", err)
	}
	if n != int64(len(ids)) {
		// A concurrent writer removed some of the resolved quads first.
		s.logger.Warn("bulk removal count differs from resolved count",
			"resolved", len(ids), "removed", n)
	}
	for _, q := range quads {
		s.hub.deleted(q)
	}
	return len(quads), nil
}

// Has reports whether every given quad is stored. With no quads it is true.
func (s *Store) Has(ctx context.Context, quads ...rdf.Quad) (bool, error) {
	if len(quads) == 0 {
		return true, nil
	}
	if err := validateQuads("has", quads); err != nil {
		return false, err
	}
	coll, err := s.collection(ctx)
	if err != nil {
		return false, err
	}

	present := make([]bool, len(quads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, q := range quads {
		g.Go(func() error {
			ok, err := coll.Exists(gctx, docstore.ExactFilter(docstore.EncodeQuad(q)))
			if err != nil {
				return err
			}
			present[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, s.storageFailure("has", err)
	}
	for _, ok := range present {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func validateQuads(op string, quads []rdf.Quad) error {
	for i, q := range quads {
		if pos := termcheck.CheckQuad(q); pos != "" {
			return newValidationError(op, fmt.Sprintf("quad %d: invalid %s: %s",
				i, pos, termcheck.Describe(quadTerm(q, pos))))
		}
	}
	return nil
}

func validatePattern(op string, p rdf.Pattern) error {
	if pos := termcheck.CheckPattern(p); pos != "" {
		return newValidationError(op, fmt.Sprintf("invalid %s: %s",
			pos, termcheck.Describe(quadTerm(rdf.Quad(p), pos))))
	}
	return nil
}

func quadTerm(q rdf.Quad, pos termcheck.Position) rdf.Term {
	switch pos {
	case termcheck.Subject:
		return q.Subject
	case termcheck.Predicate:
		return q.Predicate
	case termcheck.Object:
		return q.Object
	default:
		return q.Graph
	}
}
