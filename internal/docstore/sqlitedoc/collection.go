package sqlitedoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/quadstore/internal/docstore"
)

// deleteBatchSize bounds the number of placeholders per DELETE ... IN statement.
const deleteBatchSize = 500

// EstimatedCount returns the row count. SQLite keeps no cheap estimate, so the
// count is exact.
func (c *Collection) EstimatedCount(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(c.table))).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Find returns documents matching filter ordered by _id.
// Returns an empty slice (not nil) if nothing matches.
func (c *Collection) Find(ctx context.Context, filter docstore.Filter, opts docstore.FindOptions) ([]docstore.QuadDoc, error) {
	query, params, err := compileFind(c.table, filter, opts)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []docstore.QuadDoc{}
	for rows.Next() {
		doc, err := scanDoc(rows, opts.IncludeID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Exists reports whether any document matches filter.
func (c *Collection) Exists(ctx context.Context, filter docstore.Filter) (bool, error) {
	query, params, err := compileExists(c.table, filter)
	if err != nil {
		return false, err
	}
	var one int
	err = c.db.QueryRowContext(ctx, query, params...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return true, nil
}

// UpsertMany inserts each absent document in one transaction.
// Documents already present (including duplicates within docs) are skipped.
// If the transaction fails nothing is acknowledged.
func (c *Collection) UpsertMany(ctx context.Context, docs []docstore.QuadDoc) ([]int, error) {
	if len(docs) == 0 {
		return []int{}, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, upsertQuery(c.table))
	if err != nil {
		return nil, fmt.Errorf("upsert: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := make([]int, 0, len(docs))
	for i, doc := range docs {
		tuple, err := marshalTuple(doc)
		if err != nil {
			return nil, fmt.Errorf("upsert document %d: %w", i, err)
		}
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("upsert document %d: generate id: %w", i, err)
		}

		args := make([]any, 0, 9)
		args = append(args, id.String())
		args = append(args, tuple...)
		args = append(args, tuple...)

		result, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return nil, fmt.Errorf("upsert document %d: %w", i, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("upsert document %d: rows affected: %w", i, err)
		}
		if rowsAffected > 0 {
			inserted = append(inserted, i)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("upsert: commit: %w", err)
	}
	return inserted, nil
}

// FindOneAndDelete removes one document with doc's tuple and returns it.
func (c *Collection) FindOneAndDelete(ctx context.Context, doc docstore.QuadDoc) (docstore.QuadDoc, bool, error) {
	tuple, err := marshalTuple(doc)
	if err != nil {
		return docstore.QuadDoc{}, false, fmt.Errorf("find and delete: %w", err)
	}

	row := c.db.QueryRowContext(ctx, findOneAndDeleteQuery(c.table), tuple...)
	removed, err := scanDoc(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.QuadDoc{}, false, nil
	}
	if err != nil {
		return docstore.QuadDoc{}, false, fmt.Errorf("find and delete: %w", err)
	}
	return removed, true, nil
}

// DeleteByIDs removes documents by id in batches within one transaction.
func (c *Collection) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("delete by ids: begin tx: %w", err)
	}
	defer tx.Rollback()

	var removed int64
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		batch := ids[start:end]
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		result, err := tx.ExecContext(ctx, deleteByIDsQuery(c.table, len(batch)), args...)
		if err != nil {
			return 0, fmt.Errorf("delete by ids: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("delete by ids: rows affected: %w", err)
		}
		removed += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete by ids: commit: %w", err)
	}
	return removed, nil
}

// CreateIndexes creates each index if it does not exist.
// A unique index over existing duplicates fails with docstore.ErrDuplicate.
func (c *Collection) CreateIndexes(ctx context.Context, specs []docstore.IndexSpec) error {
	for _, spec := range specs {
		query, err := createIndexQuery(c.table, spec)
		if err != nil {
			return err
		}
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create index %q: %w: %v", spec.Name, docstore.ErrDuplicate, err)
			}
			return fmt.Errorf("create index %q: %w", spec.Name, err)
		}
	}
	return nil
}

// IndexNames returns the names of the collection's indexes, without the
// table prefix, in name order. Automatic indexes are excluded.
func (c *Collection) IndexNames(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT substr(name, length(?) + 2)
		FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name NOT LIKE 'sqlite_autoindex_%'
		ORDER BY name COLLATE BINARY ASC
	`, c.table, c.table)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan index name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}
	return names, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDoc scans a tuple row, optionally preceded by _id.
func scanDoc(s scanner, withID bool) (docstore.QuadDoc, error) {
	var id string
	var cols [4]string

	dest := make([]any, 0, 5)
	if withID {
		dest = append(dest, &id)
	}
	for i := range cols {
		dest = append(dest, &cols[i])
	}
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.QuadDoc{}, err
		}
		return docstore.QuadDoc{}, fmt.Errorf("scan document: %w", err)
	}

	var terms [4]docstore.TermDoc
	for i, col := range cols {
		t, err := unmarshalTerm(col)
		if err != nil {
			return docstore.QuadDoc{}, fmt.Errorf("scan document %s: %w", docstore.Fields[i], err)
		}
		terms[i] = t
	}
	return docstore.QuadDoc{
		ID:        id,
		Subject:   terms[0],
		Predicate: terms[1],
		Object:    terms[2],
		Graph:     terms[3],
	}, nil
}
