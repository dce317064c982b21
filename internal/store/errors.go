package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Describe re-wraps a driver error with the details the driver carries:
// SQLSTATE, detail and hint for Postgres, the extended result code for
// SQLite. Other errors are returned unchanged.
func Describe(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w (code %s, detail %q, hint %q)", err, pgErr.Code, pgErr.Detail, pgErr.Hint)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return fmt.Errorf("%w (code %d/%d)", err, liteErr.Code, liteErr.ExtendedCode)
	}
	return err
}

// IsForeignKeyViolation reports whether err is a foreign key violation
// in either dialect.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
