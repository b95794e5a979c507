package sqlitedoc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadstore/internal/docstore"
	"github.com/roach88/quadstore/internal/rdf"
)

// render formats a compiled statement for golden comparison.
func render(query string, params []any) []byte {
	p, _ := json.Marshal(params)
	return []byte(query + "\n-- params: " + string(p) + "\n")
}

type compiledStatement struct {
	name   string
	query  string
	params []any
}

// compiledStatements compiles one statement of every kind against table quads.
func compiledStatements(t *testing.T) []compiledStatement {
	t.Helper()
	hello := docstore.EncodeTerm(rdf.NewNamedNode("ex:hello"))
	label := docstore.EncodeTerm(rdf.NewNamedNode("rdfs:label"))
	greeting := docstore.EncodeTerm(rdf.MustLangLiteral("Hello World!", "en"))
	defaultGraph := docstore.EncodeTerm(rdf.DefaultGraph{})

	var out []compiledStatement
	add := func(name, query string, params []any, err error) {
		require.NoError(t, err, name)
		out = append(out, compiledStatement{name: name, query: query, params: params})
	}

	query, params, err := compileFind("quads", docstore.Filter{}, docstore.FindOptions{})
	add("find_all", query, params, err)

	query, params, err = compileFind("quads", docstore.Filter{}.Where(docstore.FieldSubject, hello),
		docstore.FindOptions{IncludeID: true})
	add("find_subject_with_id", query, params, err)

	query, params, err = compileFind("quads",
		docstore.Filter{}.Where(docstore.FieldPredicate, label).Where(docstore.FieldObject, greeting),
		docstore.FindOptions{})
	add("find_predicate_object", query, params, err)

	query, params, err = compileExists("quads", docstore.Filter{}.Where(docstore.FieldGraph, defaultGraph))
	add("exists_default_graph", query, params, err)

	add("upsert", upsertQuery("quads"), nil, nil)
	add("find_one_and_delete", findOneAndDeleteQuery("quads"), nil, nil)

	query, err = createIndexQuery("quads", docstore.IndexSpec{
		Name:   "quad",
		Fields: docstore.Fields,
		Unique: true,
	})
	add("create_unique_index", query, nil, err)

	return out
}

func TestCompile_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, stmt := range compiledStatements(t) {
		t.Run(stmt.name, func(t *testing.T) {
			g.Assert(t, stmt.name, render(stmt.query, stmt.params))
		})
	}
}

// Every compiled statement must be accepted by SQLite itself, not just
// match its golden text.
func TestCompile_PreparesOnSQLite(t *testing.T) {
	c := createTestCollection(t)
	ctx := context.Background()

	for _, stmt := range compiledStatements(t) {
		t.Run(stmt.name, func(t *testing.T) {
			prepared, err := c.DB().PrepareContext(ctx, stmt.query)
			require.NoError(t, err, stmt.query)
			require.NoError(t, prepared.Close())
		})
	}
}

func TestCompileFind_RunsOnSQLite(t *testing.T) {
	c := createTestCollection(t)
	ctx := context.Background()
	_, err := c.UpsertMany(ctx, helloDocs())
	require.NoError(t, err)

	query, params, err := compileFind(c.Name(),
		docstore.Filter{}.Where(docstore.FieldPredicate, docstore.EncodeTerm(rdfsLabel)),
		docstore.FindOptions{IncludeID: true})
	require.NoError(t, err)

	rows, err := c.DB().QueryContext(ctx, query, params...)
	require.NoError(t, err)
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 2, n)
}

func TestCompileWhere_RejectsInvalidFilter(t *testing.T) {
	named := docstore.TermDoc{TermType: "NamedNode", Value: "x"}

	_, _, err := compileWhere(docstore.Filter{}.Where("_id; DROP TABLE quads", named))
	assert.Error(t, err)

	_, _, err = compileWhere(docstore.Filter{}.Where(docstore.FieldSubject, named).Where(docstore.FieldSubject, named))
	assert.Error(t, err)
}

func TestCreateIndexQuery_Errors(t *testing.T) {
	_, err := createIndexQuery("quads", docstore.IndexSpec{Name: "bad name", Fields: docstore.Fields})
	assert.Error(t, err)

	_, err = createIndexQuery("quads", docstore.IndexSpec{Name: "empty"})
	assert.Error(t, err)

	_, err = createIndexQuery("quads", docstore.IndexSpec{Name: "label", Fields: []docstore.Field{"label"}})
	assert.Error(t, err)
}

func TestDeleteByIDsQuery(t *testing.T) {
	assert.Equal(t, `DELETE FROM "quads" WHERE _id IN (?)`, deleteByIDsQuery("quads", 1))
	assert.Equal(t, `DELETE FROM "quads" WHERE _id IN (?, ?, ?)`, deleteByIDsQuery("quads", 3))
}

func TestMarshalTerm_NoHTMLEscaping(t *testing.T) {
	s, err := marshalTerm(docstore.EncodeTerm(rdf.NewLiteral("<a & b>")))
	require.NoError(t, err)
	assert.Contains(t, s, `"value":"<a & b>"`)

	back, err := unmarshalTerm(s)
	require.NoError(t, err)
	assert.Equal(t, "<a & b>", back.Value)
}
