// Package config loads quadstore configuration.
//
// Configuration comes from an optional YAML file, then environment
// overrides, and is validated against an embedded CUE schema:
//
//	backend: sqlite            # or mongo
//	collection: quads
//	sqlite:
//	  path: quadstore.db
//	mongo:
//	  uri: mongodb://localhost:27017
//	  database: quadstore
//	  connectTimeout: 10s
//	nats:
//	  url: nats://localhost:4222   # empty disables publishing
//	  subjectPrefix: quadstore
//	metrics:
//	  namespace: quadstore
//	  textfile: ""                # write Prometheus metrics here on exit
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/quadstore/internal/docstore"
	"github.com/roach88/quadstore/internal/docstore/mongodoc"
	"github.com/roach88/quadstore/internal/docstore/sqlitedoc"
)

//go:embed schema.cue
var schemaCUE string

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Environment variables that override file settings.
const (
	EnvBackend       = "QUADSTORE_BACKEND"
	EnvSQLitePath    = "QUADSTORE_SQLITE_PATH"
	EnvMongoURI      = "QUADSTORE_MONGO_URI"
	EnvMongoDatabase = "QUADSTORE_MONGO_DATABASE"
	EnvNATSURL       = "QUADSTORE_NATS_URL"
)

// Config is the complete configuration.
type Config struct {
	Backend    string        `yaml:"backend" json:"backend"`
	Collection string        `yaml:"collection" json:"collection"`
	SQLite     SQLiteConfig  `yaml:"sqlite" json:"sqlite"`
	Mongo      MongoConfig   `yaml:"mongo" json:"mongo"`
	NATS       NATSConfig    `yaml:"nats" json:"nats"`
	Metrics    MetricsConfig `yaml:"metrics" json:"metrics"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri" json:"uri"`
	Database       string        `yaml:"database" json:"database"`
	ConnectTimeout time.Duration `yaml:"connectTimeout" json:"connectTimeout"`
}

type NATSConfig struct {
	// URL of the NATS server. Empty disables event publishing.
	URL           string `yaml:"url" json:"url"`
	SubjectPrefix string `yaml:"subjectPrefix" json:"subjectPrefix"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	// Textfile, if set, receives the metrics in Prometheus text format.
	Textfile string `yaml:"textfile" json:"textfile"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend:    BackendSQLite,
		Collection: docstore.DefaultCollection,
		SQLite:     SQLiteConfig{Path: "quadstore.db"},
		Mongo: MongoConfig{
			Database:       "quadstore",
			ConnectTimeout: mongodoc.DefaultConnectTimeout,
		},
		NATS:    NATSConfig{SubjectPrefix: "quadstore"},
		Metrics: MetricsConfig{Namespace: "quadstore"},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	ApplyEnv(cfg, os.LookupEnv)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML decodes strictly: unknown keys are errors. An empty document
// leaves cfg untouched.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides cfg from the environment variables listed above.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	overrides := []struct {
		key string
		dst *string
	}{
		{EnvBackend, &cfg.Backend},
		{EnvSQLitePath, &cfg.SQLite.Path},
		{EnvMongoURI, &cfg.Mongo.URI},
		{EnvMongoDatabase, &cfg.Mongo.Database},
		{EnvNATSURL, &cfg.NATS.URL},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok {
			*o.dst = v
		}
	}
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg *Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Connector builds the backend connector selected by cfg.
func Connector(cfg *Config) (docstore.Connector, error) {
	switch cfg.Backend {
	case BackendSQLite:
		return sqlitedoc.Connector{Path: cfg.SQLite.Path, Collection: cfg.Collection}, nil
	case BackendMongo:
		return mongodoc.Connector{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			Collection:     cfg.Collection,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
