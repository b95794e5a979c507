// Package sqlitedoc implements docstore.Collection on SQLite.
//
// Each collection is a table with a TEXT primary key (_id, a UUIDv7) and one
// JSON column per quad position. Term documents are stored as compact JSON with
// a fixed field order, so equality on a column is equality of terms.
//
// # Critical Patterns
//
// Insert-if-absent: a single INSERT ... SELECT ... WHERE NOT EXISTS ... ON
// CONFLICT DO NOTHING statement. RowsAffected tells whether the row is new.
// With the unique tuple index in place, a racing duplicate is absorbed by
// ON CONFLICT rather than surfacing as an error.
//
// Find-and-delete: DELETE ... WHERE _id = (SELECT ... LIMIT 1) RETURNING ...,
// so the removed document is reported by the same statement that removes it.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package sqlitedoc

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"regexp"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/quadstore/internal/docstore"
)

//go:embed schema.sql
var schemaSQL string

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Collection is a docstore.Collection backed by one SQLite table.
type Collection struct {
	db    *sql.DB
	table string
}

var _ docstore.Collection = (*Collection)(nil)

// Connector opens a Collection on demand.
type Connector struct {
	// Path is the SQLite database file, or ":memory:".
	Path string
	// Collection is the table name. Defaults to docstore.DefaultCollection.
	Collection string
}

// Connect implements docstore.Connector.
func (c Connector) Connect(ctx context.Context) (docstore.Collection, error) {
	return Open(ctx, c.Path, c.Collection)
}

// Open creates or opens a SQLite database at path and ensures the collection
// table exists. Applies required pragmas automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(ctx context.Context, path, collection string) (*Collection, error) {
	if collection == "" {
		collection = docstore.DefaultCollection
	}
	if !identPattern.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// A single connection also keeps ":memory:" databases alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	table := quoteIdent(collection)
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schemaSQL, table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Collection{db: db, table: collection}, nil
}

// Close closes the database connection.
func (c *Collection) Close(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Collection methods when available.
func (c *Collection) DB() *sql.DB {
	return c.db
}

// Name returns the collection (table) name.
func (c *Collection) Name() string {
	return c.table
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (c *Collection) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := c.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// quoteIdent quotes a validated identifier.
func quoteIdent(name string) string {
	return `"` + name + `"`
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
