// Package quadfile reads and writes quad fixtures.
//
// Two formats are supported, chosen by file extension:
//
//   - N-Quads (.nq, .nt): one statement per line; blank lines and
//     lines starting with '#' are skipped.
//   - YAML or JSON (.yaml, .yml, .json): a list of entries whose positions are
//     terms in N-Quads syntax. An empty or missing graph is the default graph.
//
// A YAML entry:
//
//	- subject: "<ex:hello>"
//	  predicate: "<rdfs:label>"
//	  object: '"Hello World!"@en'
package quadfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quadstore/internal/rdf"
)

// Format identifies a fixture encoding.
type Format string

const (
	FormatNQuads Format = "nquads"
	FormatYAML   Format = "yaml"
)

// Entry is one quad in the YAML/JSON list format.
type Entry struct {
	Subject   string `yaml:"subject" json:"subject"`
	Predicate string `yaml:"predicate" json:"predicate"`
	Object    string `yaml:"object" json:"object"`
	Graph     string `yaml:"graph,omitempty" json:"graph,omitempty"`
}

// FormatFor picks the format from path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nq", ".nt":
		return FormatNQuads, nil
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported quad file extension %q", filepath.Ext(path))
}

// ReadFile reads every quad in path.
func ReadFile(path string) ([]rdf.Quad, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quad file: %w", err)
	}
	defer f.Close()

	quads, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return quads, nil
}

// Read reads every quad from r in the given format.
func Read(r io.Reader, format Format) ([]rdf.Quad, error) {
	switch format {
	case FormatNQuads:
		return ParseNQuads(r)
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read quads: %w", err)
		}
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// ParseNQuads reads N-Quads statements, reporting the line of the first error.
func ParseNQuads(r io.Reader) ([]rdf.Quad, error) {
	dec, err := rdf.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	quads := []rdf.Quad{}
	for {
		q, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return quads, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read quads: %w", err)
		}
		quads = append(quads, q)
	}
}

// ParseYAML decodes a YAML (or JSON) list of entries.
func ParseYAML(data []byte) ([]rdf.Quad, error) {
	var entries []Entry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse quads: %w", err)
	}

	quads := make([]rdf.Quad, 0, len(entries))
	for i, e := range entries {
		q, err := e.Quad()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		quads = append(quads, q)
	}
	return quads, nil
}

// Quad parses the entry's terms.
func (e Entry) Quad() (rdf.Quad, error) {
	p, err := ParsePattern(e.Subject, e.Predicate, e.Object, e.Graph)
	if err != nil {
		return rdf.Quad{}, err
	}
	switch {
	case p.Subject == nil:
		return rdf.Quad{}, errors.New("subject is required")
	case p.Predicate == nil:
		return rdf.Quad{}, errors.New("predicate is required")
	case p.Object == nil:
		return rdf.Quad{}, errors.New("object is required")
	}
	return rdf.NewQuad(p.Subject, p.Predicate, p.Object, p.Graph), nil
}

// EntryFor renders q as an Entry. The default graph is left empty.
func EntryFor(q rdf.Quad) Entry {
	e := Entry{
		Subject:   q.Subject.String(),
		Predicate: q.Predicate.String(),
		Object:    q.Object.String(),
	}
	if q.Graph != nil {
		e.Graph = q.Graph.String()
	}
	return e
}

// ParsePattern parses four optional terms. An empty string is a wildcard,
// except that the graph "default" (or "<>") selects the default graph.
func ParsePattern(subject, predicate, object, graph string) (rdf.Pattern, error) {
	var p rdf.Pattern
	var err error
	if p.Subject, err = optionalTerm("subject", subject); err != nil {
		return rdf.Pattern{}, err
	}
	if p.Predicate, err = optionalTerm("predicate", predicate); err != nil {
		return rdf.Pattern{}, err
	}
	if p.Object, err = optionalTerm("object", object); err != nil {
		return rdf.Pattern{}, err
	}
	switch strings.TrimSpace(graph) {
	case "default", "<>":
		p.Graph = rdf.DefaultGraph{}
	default:
		if p.Graph, err = optionalTerm("graph", graph); err != nil {
			return rdf.Pattern{}, err
		}
	}
	return p, nil
}

func optionalTerm(position, s string) (rdf.Term, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := rdf.ParseTerm(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", position, err)
	}
	return t, nil
}

// WriteNQuads writes one statement per line.
func WriteNQuads(w io.Writer, quads []rdf.Quad) error {
	bw := bufio.NewWriter(w)
	for _, q := range quads {
		if _, err := bw.WriteString(q.String() + "\n"); err != nil {
			return fmt.Errorf("write quads: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write quads: %w", err)
	}
	return nil
}
