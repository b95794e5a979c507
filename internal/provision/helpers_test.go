package provision

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/quadstore/internal/docstore"
)

// mustJSON renders a term the way the SQLite backend stores it.
func mustJSON(t *testing.T, term docstore.TermDoc) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(term))
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
