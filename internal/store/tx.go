package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSavepoint marks a failure of the savepoint mechanics themselves,
// as opposed to a failure of the work inside the savepoint. The
// enclosing transaction is unusable after it.
var ErrSavepoint = errors.New("savepoint")

// Tx is a store transaction.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// Begin starts a transaction. With SQLite the store's only connection
// is held until Commit or Rollback.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, dialect: s.dialect}, nil
}

// Upsert inserts row inside the transaction, skipping it on
// primary-key conflict.
func (t *Tx) Upsert(ctx context.Context, table Table, row Row) (bool, error) {
	return upsert(ctx, t.dialect, t.tx, table, row)
}

// Savepoint runs fn inside a savepoint. When fn fails only its own
// statements are rolled back and fn's error is returned unchanged; the
// transaction stays usable. Errors wrapping ErrSavepoint mean the
// savepoint could not be created, released or rolled back.
func (t *Tx) Savepoint(ctx context.Context, fn func() error) error {
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT record"); err != nil {
		return fmt.Errorf("%w: create: %v", ErrSavepoint, err)
	}

	if err := fn(); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT record"); rbErr != nil {
			return fmt.Errorf("%w: rollback after %v: %v", ErrSavepoint, err, rbErr)
		}
		if _, relErr := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT record"); relErr != nil {
			return fmt.Errorf("%w: release after rollback: %v", ErrSavepoint, relErr)
		}
		return err
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT record"); err != nil {
		return fmt.Errorf("%w: release: %v", ErrSavepoint, err)
	}
	return nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back a committed
// transaction is a no-op, so it is safe to defer.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
