// Package mongodoc implements docstore.Collection on MongoDB.
//
// Quad documents are stored with their four terms as embedded documents and a
// server-generated ObjectID. Exact-match filters compare embedded documents,
// so docstore.TermDoc field order must stay fixed.
package mongodoc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/roach88/quadstore/internal/docstore"
)

// duplicateKeyCode is the server error code for unique index violations.
const duplicateKeyCode = 11000

// DefaultConnectTimeout bounds server selection when Connector.ConnectTimeout is zero.
const DefaultConnectTimeout = 10 * time.Second

// Connector opens a Collection on demand.
type Connector struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Connect implements docstore.Connector. It dials the server and pings the
// primary so that an unreachable server fails here rather than on first use.
func (c Connector) Connect(ctx context.Context) (docstore.Collection, error) {
	if c.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if c.Database == "" {
		return nil, errors.New("mongo database is required")
	}
	name := c.Collection
	if name == "" {
		name = docstore.DefaultCollection
	}
	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Collection{
		client: client,
		coll:   client.Database(c.Database).Collection(name),
	}, nil
}

// Collection is a docstore.Collection backed by a MongoDB collection.
type Collection struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ docstore.Collection = (*Collection)(nil)

// record is the stored shape with its ObjectID.
type record struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Subject   docstore.TermDoc   `bson:"subject"`
	Predicate docstore.TermDoc   `bson:"predicate"`
	Object    docstore.TermDoc   `bson:"object"`
	Graph     docstore.TermDoc   `bson:"graph"`
}

func (r record) doc(withID bool) docstore.QuadDoc {
	d := docstore.QuadDoc{
		Subject:   r.Subject,
		Predicate: r.Predicate,
		Object:    r.Object,
		Graph:     r.Graph,
	}
	if withID && !r.ID.IsZero() {
		d.ID = r.ID.Hex()
	}
	return d
}

// toBSON converts a filter to a query document.
func toBSON(f docstore.Filter) (bson.D, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	out := bson.D{}
	for _, c := range f.Clauses {
		out = append(out, bson.E{Key: string(c.Field), Value: c.Value})
	}
	return out, nil
}

// EstimatedCount uses collection metadata and may lag recent writes.
func (c *Collection) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := c.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("estimated count: %w", err)
	}
	return n, nil
}

// Find returns every document matching filter.
func (c *Collection) Find(ctx context.Context, filter docstore.Filter, opts docstore.FindOptions) ([]docstore.QuadDoc, error) {
	q, err := toBSON(filter)
	if err != nil {
		return nil, err
	}
	findOpts := options.Find()
	if !opts.IncludeID {
		findOpts.SetProjection(bson.D{{Key: "_id", Value: 0}})
	}

	cursor, err := c.coll.Find(ctx, q, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	var records []record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	docs := make([]docstore.QuadDoc, len(records))
	for i, r := range records {
		docs[i] = r.doc(opts.IncludeID)
	}
	return docs, nil
}

// Exists counts at most one matching document.
func (c *Collection) Exists(ctx context.Context, filter docstore.Filter) (bool, error) {
	q, err := toBSON(filter)
	if err != nil {
		return false, err
	}
	n, err := c.coll.CountDocuments(ctx, q, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return n > 0, nil
}

// UpsertMany issues one unordered bulk write of insert-if-absent updates.
// Duplicate-key failures from racing writers are treated as already present.
func (c *Collection) UpsertMany(ctx context.Context, docs []docstore.QuadDoc) ([]int, error) {
	if len(docs) == 0 {
		return []int{}, nil
	}

	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		filter, err := toBSON(docstore.ExactFilter(d))
		if err != nil {
			return nil, fmt.Errorf("upsert document %d: %w", i, err)
		}
		d.ID = ""
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: d}}).
			SetUpsert(true)
	}

	res, err := c.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	inserted := insertedIndexes(res)
	if err != nil && !onlyDuplicateKeys(err) {
		return inserted, fmt.Errorf("bulk upsert: %w", err)
	}
	return inserted, nil
}

// insertedIndexes lists the model indexes that produced an upsert, in order.
func insertedIndexes(res *mongo.BulkWriteResult) []int {
	if res == nil {
		return []int{}
	}
	out := make([]int, 0, len(res.UpsertedIDs))
	for idx := range res.UpsertedIDs {
		out = append(out, int(idx))
	}
	slices.Sort(out)
	return out
}

// onlyDuplicateKeys reports whether err is a bulk write exception made up
// solely of duplicate-key write errors.
func onlyDuplicateKeys(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return false
	}
	if bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyCode {
			return false
		}
	}
	return true
}

// FindOneAndDelete removes one document with doc's tuple.
func (c *Collection) FindOneAndDelete(ctx context.Context, doc docstore.QuadDoc) (docstore.QuadDoc, bool, error) {
	filter, err := toBSON(docstore.ExactFilter(doc))
	if err != nil {
		return docstore.QuadDoc{}, false, fmt.Errorf("find and delete: %w", err)
	}
	var r record
	err = c.coll.FindOneAndDelete(ctx, filter).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.QuadDoc{}, false, nil
	}
	if err != nil {
		return docstore.QuadDoc{}, false, fmt.Errorf("find and delete: %w", err)
	}
	return r.doc(true), true, nil
}

// DeleteByIDs removes documents whose ObjectID hex is in ids.
func (c *Collection) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return 0, fmt.Errorf("delete by ids: %q: %w", id, err)
		}
		oids = append(oids, oid)
	}
	res, err := c.coll.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return 0, fmt.Errorf("delete by ids: %w", err)
	}
	return res.DeletedCount, nil
}

// CreateIndexes creates the indexes in one call. The server treats an
// identical existing index as a no-op.
func (c *Collection) CreateIndexes(ctx context.Context, specs []docstore.IndexSpec) error {
	if len(specs) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, len(specs))
	for i, spec := range specs {
		if len(spec.Fields) == 0 {
			return fmt.Errorf("index %q has no fields", spec.Name)
		}
		keys := bson.D{}
		for _, f := range spec.Fields {
			if !f.Valid() {
				return fmt.Errorf("index %q: unknown field %q", spec.Name, f)
			}
			keys = append(keys, bson.E{Key: string(f), Value: 1})
		}
		models[i] = mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(spec.Name).SetUnique(spec.Unique),
		}
	}
	if _, err := c.coll.Indexes().CreateMany(ctx, models); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create indexes: %w: %v", docstore.ErrDuplicate, err)
		}
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// IndexNames lists index names other than the built-in _id index.
func (c *Collection) IndexNames(ctx context.Context) ([]string, error) {
	specs, err := c.coll.Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	names := []string{}
	for _, s := range specs {
		if s.Name == "_id_" {
			continue
		}
		names = append(names, s.Name)
	}
	slices.Sort(names)
	return names, nil
}

// Drop removes the collection. Used by tests.
func (c *Collection) Drop(ctx context.Context) error {
	return c.coll.Drop(ctx)
}

// Close disconnects the client.
func (c *Collection) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
