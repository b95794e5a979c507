package sqlitedoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/quadstore/internal/docstore"
)

// Column lists in tuple order.
const (
	tupleColumns   = "subject, predicate, object, graph"
	withIDColumns  = "_id, " + tupleColumns
	tupleCondition = "subject = ? AND predicate = ? AND object = ? AND graph = ?"
)

// compileWhere compiles a filter to a WHERE fragment and its parameters.
// Returns an empty fragment for the empty filter.
//
// CRITICAL: Values are never interpolated - always ? placeholders.
func compileWhere(f docstore.Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	if len(f.Clauses) == 0 {
		return "", nil, nil
	}

	parts := make([]string, 0, len(f.Clauses))
	params := make([]any, 0, len(f.Clauses))
	for _, c := range f.Clauses {
		value, err := marshalTerm(c.Value)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %s: %w", c.Field, err)
		}
		// Field names are validated against the fixed column set above.
		parts = append(parts, string(c.Field)+" = ?")
		params = append(params, value)
	}
	return " WHERE " + strings.Join(parts, " AND "), params, nil
}

// compileFind compiles a Find call to a SELECT.
// Results are ordered by _id; UUIDv7 ids make this insertion order.
func compileFind(table string, f docstore.Filter, opts docstore.FindOptions) (string, []any, error) {
	where, params, err := compileWhere(f)
	if err != nil {
		return "", nil, err
	}
	columns := tupleColumns
	if opts.IncludeID {
		columns = withIDColumns
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY _id COLLATE BINARY ASC",
		columns, quoteIdent(table), where)
	return query, params, nil
}

// compileExists compiles an existence check bounded to one row.
func compileExists(table string, f docstore.Filter) (string, []any, error) {
	where, params, err := compileWhere(f)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT 1 FROM %s%s LIMIT 1", quoteIdent(table), where), params, nil
}

// upsertQuery is an atomic insert-if-absent keyed on the full tuple.
// Parameters: _id, the tuple, then the tuple again for the NOT EXISTS guard.
func upsertQuery(table string) string {
	t := quoteIdent(table)
	return fmt.Sprintf(`INSERT INTO %[1]s (%[2]s)
SELECT ?, ?, ?, ?, ?
WHERE NOT EXISTS (SELECT 1 FROM %[1]s WHERE %[3]s)
ON CONFLICT DO NOTHING`, t, withIDColumns, tupleCondition)
}

// findOneAndDeleteQuery removes at most one row matching the tuple and returns it.
func findOneAndDeleteQuery(table string) string {
	t := quoteIdent(table)
	return fmt.Sprintf(`DELETE FROM %[1]s WHERE _id = (
SELECT _id FROM %[1]s WHERE %[2]s LIMIT 1
) RETURNING %[3]s`, t, tupleCondition, withIDColumns)
}

// deleteByIDsQuery removes rows by id for n placeholders.
func deleteByIDsQuery(table string, n int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	return fmt.Sprintf("DELETE FROM %s WHERE _id IN (%s)", quoteIdent(table), placeholders)
}

// createIndexQuery compiles an index spec. Index names are prefixed with the
// table name so several collections can share one database.
func createIndexQuery(table string, spec docstore.IndexSpec) (string, error) {
	if !identPattern.MatchString(spec.Name) {
		return "", fmt.Errorf("invalid index name %q", spec.Name)
	}
	if len(spec.Fields) == 0 {
		return "", fmt.Errorf("index %q has no fields", spec.Name)
	}
	cols := make([]string, len(spec.Fields))
	for i, f := range spec.Fields {
		if !f.Valid() {
			return "", fmt.Errorf("index %q: unknown field %q", spec.Name, f)
		}
		cols[i] = string(f)
	}
	unique := ""
	if spec.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, quoteIdent(table+"_"+spec.Name), quoteIdent(table), strings.Join(cols, ", ")), nil
}

// marshalTerm encodes a term document as compact JSON without HTML escaping.
func marshalTerm(t docstore.TermDoc) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		return "", fmt.Errorf("marshal term: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalTerm decodes a stored term column.
func unmarshalTerm(s string) (docstore.TermDoc, error) {
	var t docstore.TermDoc
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return docstore.TermDoc{}, fmt.Errorf("unmarshal term: %w", err)
	}
	return t, nil
}

// marshalTuple encodes the four positions of d in tuple order.
func marshalTuple(d docstore.QuadDoc) ([]any, error) {
	out := make([]any, 0, len(docstore.Fields))
	for _, f := range docstore.Fields {
		s, err := marshalTerm(d.Get(f))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, s)
	}
	return out, nil
}
