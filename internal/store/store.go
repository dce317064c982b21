package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchemaSQL string

//go:embed schema_postgres.sql
var postgresSchemaSQL string

// Dialect captures the few places where SQLite and Postgres differ.
type Dialect struct {
	// Driver is the database/sql driver name.
	Driver string

	schema       string
	pragmas      []string
	dollarParams bool
	singleWriter bool
}

var (
	// SQLite is the default dialect backed by github.com/mattn/go-sqlite3.
	SQLite = Dialect{
		Driver: "sqlite3",
		schema: sqliteSchemaSQL,
		pragmas: []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA foreign_keys = ON",
		},
		singleWriter: true,
	}

	// Postgres is backed by the pgx stdlib driver.
	Postgres = Dialect{
		Driver:       "pgx",
		schema:       postgresSchemaSQL,
		dollarParams: true,
	}
)

// DialectFor returns the dialect registered under a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case SQLite.Driver:
		return SQLite, nil
	case Postgres.Driver:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Placeholder returns the bind parameter for the i-th argument (1-based).
func (d Dialect) Placeholder(i int) string {
	if d.dollarParams {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Store is the relational store for protocols, agenda items, speakers
// and speeches. One Store is opened per run and passed explicitly to
// every loader.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store and applies the schema.
//
// For SQLite the dsn is a file path; the connection pool is limited to
// a single connection and the pragmas (WAL, NORMAL sync, 5s busy
// timeout, foreign keys) are applied to it. For Postgres the dsn is a
// connection URL or keyword/value string.
//
// A failed ping is returned as an error; callers treat it as fatal.
// This function is idempotent - safe to call multiple times.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect.singleWriter {
		// SQLite only supports one writer at a time, and pragmas are
		// per connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(ctx, db, dialect.pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.ExecContext(ctx, dialect.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect the store was opened with.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB, pragmas []string) error {
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
