package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/quadstore/internal/config"
)

const helloNQuads = `# greeting
<ex:hello> <rdfs:label> "Hello World!"@en .
<ex:hello> <ex:lorem> _:1 .
_:1 <rdfs:label> "Lorem Ipsum" .
`

// testEnv is a temp SQLite-backed config plus a directory for input files.
type testEnv struct {
	dir        string
	configPath string
	dbPath     string
	metrics    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clearConfigEnv(t)

	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "quadstore.yaml"),
		dbPath:     filepath.Join(dir, "quads.db"),
		metrics:    filepath.Join(dir, "quadstore.prom"),
	}
	cfg := "backend: sqlite\n" +
		"collection: quads\n" +
		"sqlite:\n  path: " + env.dbPath + "\n" +
		"metrics:\n  textfile: " + env.metrics + "\n"
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0644))
	return env
}

// clearConfigEnv unsets the QUADSTORE_* overrides for the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvBackend, config.EnvSQLitePath, config.EnvMongoURI,
		config.EnvMongoDatabase, config.EnvNATSURL,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the root command with --config pointing at the env.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) cmdResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
