// Package sqlstore implements storage.Store on top of database/sql.
//
// The queries are written once with '?' placeholders and rebound for the target
// dialect, so the SQLite and PostgreSQL backends share every query.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/splitledger/internal/storage"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	// SQLite uses '?' placeholders.
	SQLite Dialect = iota
	// Postgres uses '$1'-style placeholders.
	Postgres
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store over an open *sql.DB whose schema is already migrated.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps db. The caller has run the dialect's migrations.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle for backend-specific setup.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites '?' placeholders for the store's dialect.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

// inTx runs fn inside a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(exec func(query string, args ...any) error) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exec := func(query string, args ...any) error {
		_, err := tx.ExecContext(ctx, s.rebind(query), args...)
		return err
	}
	if err := fn(exec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ?" with n placeholders.
// Used for building IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs converts ids to query arguments.
func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
