// Package settings loads the YAML configuration shared by the slotstore binaries.
package settings

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"gopkg.in/yaml.v3"

	"github.com/jacentio/slotstore/kv"
	"github.com/jacentio/slotstore/store"
)

// Backend names a substrate implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendDir      Backend = "dir"
	BackendSQLite   Backend = "sqlite"
	BackendDynamoDB Backend = "dynamodb"
)

// DynamoDB configures the DynamoDB backend.
type DynamoDB struct {
	// Table is the slots table name.
	// Default: "slotstore-slots"
	Table string `yaml:"table"`

	// Region overrides the region from the AWS environment.
	Region string `yaml:"region"`

	// Endpoint overrides the service endpoint (e.g. DynamoDB Local).
	Endpoint string `yaml:"endpoint"`
}

// Engine mirrors store.Config in YAML form.
type Engine struct {
	LockStripes       int  `yaml:"lock_stripes"`
	CheckAvailability bool `yaml:"check_availability"`
}

// Settings holds configuration for the slotstore binaries.
type Settings struct {
	// Backend selects the substrate.
	// Default: "sqlite"
	Backend Backend `yaml:"backend"`

	// Dir is the slot directory for the dir backend.
	// Default: "./data"
	Dir string `yaml:"dir"`

	// SQLite is the database path for the sqlite backend.
	// Default: "./slotstore.db"
	SQLite string `yaml:"sqlite"`

	DynamoDB DynamoDB `yaml:"dynamodb"`

	Store Engine `yaml:"store"`

	// Types are registered at startup by long-running binaries.
	// Default: ["task"]
	Types []string `yaml:"types"`
}

// Default returns sensible defaults for local use.
func Default() Settings {
	cfg := store.DefaultConfig()
	return Settings{
		Backend: BackendSQLite,
		Dir:     "./data",
		SQLite:  "./slotstore.db",
		DynamoDB: DynamoDB{
			Table: "slotstore-slots",
		},
		Store: Engine{
			LockStripes:       cfg.LockStripes,
			CheckAvailability: cfg.CheckAvailability,
		},
		Types: []string{"task"},
	}
}

// Load reads settings from a YAML file, layered over Default.
// An empty path returns the defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		s := Default()
		return s, s.validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML settings layered over Default.
func Parse(r io.Reader) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// validate fills empty fields with defaults and rejects unknown backends.
func (s *Settings) validate() error {
	d := Default()
	if s.Backend == "" {
		s.Backend = d.Backend
	}
	switch s.Backend {
	case BackendMemory, BackendDir, BackendSQLite, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	if s.Dir == "" {
		s.Dir = d.Dir
	}
	if s.SQLite == "" {
		s.SQLite = d.SQLite
	}
	if s.DynamoDB.Table == "" {
		s.DynamoDB.Table = d.DynamoDB.Table
	}
	return nil
}

// StoreConfig converts the engine settings to a store.Config.
func (s Settings) StoreConfig() store.Config {
	return store.Config{
		LockStripes:       s.Store.LockStripes,
		CheckAvailability: s.Store.CheckAvailability,
	}
}

// Open builds the configured substrate. The returned close function releases
// any resources held by it and is never nil.
func (s Settings) Open(ctx context.Context) (kv.Substrate, func() error, error) {
	noop := func() error { return nil }

	switch s.Backend {
	case BackendMemory:
		return kv.NewMemory(), noop, nil

	case BackendDir:
		d, err := kv.NewDir(s.Dir)
		if err != nil {
			return nil, noop, err
		}
		return d, noop, nil

	case BackendSQLite:
		db, err := kv.OpenSQLite(s.SQLite)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil

	case BackendDynamoDB:
		var opts []func(*awsconfig.LoadOptions) error
		if s.DynamoDB.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s.DynamoDB.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, noop, fmt.Errorf("load AWS config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if s.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.DynamoDB.Endpoint)
			}
		})
		return kv.NewDynamoDB(client, s.DynamoDB.Table), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown backend %q", s.Backend)
}
