package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed SQLite store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), SQLite.Driver, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createPostgresStore opens the store against PLENAR_TEST_POSTGRES_DSN,
// skipping the test when it is unset. Tables are emptied before use.
func createPostgresStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PLENAR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PLENAR_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, Postgres.Driver, dsn)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if _, err := s.db.ExecContext(ctx, "TRUNCATE speech, speaker, agenda_item, protocol"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func ptr[T any](v T) *T { return &v }
