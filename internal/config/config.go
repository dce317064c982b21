package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Environment variables read by ApplyEnv.
const (
	EnvDBDriver      = "PLENAR_DB_DRIVER"
	EnvDSN           = "PLENAR_DSN"
	EnvDataDir       = "PLENAR_DATA_DIR"
	EnvSpeakerFile   = "PLENAR_SPEAKER_FILE"
	EnvLogMode       = "PLENAR_LOG_MODE"
	EnvNeo4jURI      = "NEO4J_URI"
	EnvNeo4jUser     = "NEO4J_USER"
	EnvNeo4jPassword = "NEO4J_PASSWORD"
	EnvNeo4jDatabase = "NEO4J_DATABASE"
)

// Config is the complete runtime configuration.
type Config struct {
	Database Database `yaml:"database"`

	// DataDir holds the protocol export files (*.json).
	DataDir string `yaml:"data_dir"`

	// SpeakerFile is the single JSON file of speaker lookup responses.
	SpeakerFile string `yaml:"speaker_file"`

	// LogMode selects the log encoding: "dev" (console) or "prod" (JSON).
	LogMode string `yaml:"log_mode"`

	Neo4j Neo4j `yaml:"neo4j"`
}

// Database selects the relational store.
type Database struct {
	Driver string `yaml:"driver"` // "sqlite3" | "pgx"
	DSN    string `yaml:"dsn"`    // file path for sqlite3, connection URL for pgx
}

// Neo4j configures the optional graph export.
type Neo4j struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Enabled reports whether a graph endpoint is configured.
func (n Neo4j) Enabled() bool {
	return strings.TrimSpace(n.URI) != ""
}

// Default returns the built-in defaults: a SQLite file in the working
// directory and development logging.
func Default() Config {
	return Config{
		Database: Database{
			Driver: DriverSQLite,
			DSN:    "plenar.db",
		},
		LogMode: "dev",
		Neo4j: Neo4j{
			User: "neo4j",
		},
	}
}

// Load resolves configuration from defaults, then the YAML file at path
// (skipped when path is empty), then the environment read through
// lookup. A nil lookup reads the process environment.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return Config{}, err
		}
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg.ApplyEnv(lookup)
	return cfg, nil
}

// ApplyFile overlays the non-empty values of a YAML file.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	c.overlay(file)
	return nil
}

// ApplyEnv overlays values from the environment through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(name string) string {
		v, ok := lookup(name)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	c.overlay(Config{
		Database: Database{
			Driver: get(EnvDBDriver),
			DSN:    get(EnvDSN),
		},
		DataDir:     get(EnvDataDir),
		SpeakerFile: get(EnvSpeakerFile),
		LogMode:     get(EnvLogMode),
		Neo4j: Neo4j{
			URI:      get(EnvNeo4jURI),
			User:     get(EnvNeo4jUser),
			Password: get(EnvNeo4jPassword),
			Database: get(EnvNeo4jDatabase),
		},
	})
}

// overlay copies every non-empty field of o onto c.
func (c *Config) overlay(o Config) {
	setIf(&c.Database.Driver, o.Database.Driver)
	setIf(&c.Database.DSN, o.Database.DSN)
	setIf(&c.DataDir, o.DataDir)
	setIf(&c.SpeakerFile, o.SpeakerFile)
	setIf(&c.LogMode, o.LogMode)
	setIf(&c.Neo4j.URI, o.Neo4j.URI)
	setIf(&c.Neo4j.User, o.Neo4j.User)
	setIf(&c.Neo4j.Password, o.Neo4j.Password)
	setIf(&c.Neo4j.Database, o.Neo4j.Database)
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks the store settings every command needs.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q: must be %q or %q",
			c.Database.Driver, DriverSQLite, DriverPostgres))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	return errors.Join(errs...)
}
