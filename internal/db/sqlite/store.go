// Package sqlite is the relational store: a modernc.org/sqlite database with
// unit-of-work transactions that expose their pending records to commit hooks.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

// MemoryPath selects a private in-memory database.
const MemoryPath = ":memory:"

// Config holds relational store options.
type Config struct {
	// Path is the database file. Empty or ":memory:" keeps the database in memory.
	Path string
}

// Querier is satisfied by both *Store and *Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *Row
}

// Row is the result of QueryRowContext. It defers any error to Scan, like
// *sql.Row does.
type Row struct {
	row *sql.Row
	err error
}

// Scan copies the columns of the row into dest. It returns sql.ErrNoRows
// when the query matched nothing.
func (r *Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return r.row.Scan(dest...)
}

// Err returns the error of the query, if any, without scanning.
func (r *Row) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.row.Err()
}

var (
	_ Querier = (*Store)(nil)
	_ Querier = (*Tx)(nil)
)

// Store owns the database handle and the registered commit hooks.
type Store struct {
	db   *sql.DB
	path string

	mu    sync.RWMutex
	hooks []CommitHook
}

// Open opens (creating if needed) the database and applies the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := MemoryPath
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: a single writer, and the only handle on an in-memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path or ":memory:".
func (s *Store) Path() string { return s.path }

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RegisterHook adds a hook run by every subsequent Commit, in registration order.
func (s *Store) RegisterHook(h CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

func (s *Store) commitHooks() []CommitHook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CommitHook, len(s.hooks))
	copy(out, s.hooks)
	return out
}

// ExecContext runs a statement outside any unit of work.
func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a query outside any unit of work.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query outside any unit of work.
func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	return &Row{row: s.db.QueryRowContext(ctx, query, args...)}
}

// Begin starts a unit of work. ctx is also passed to the commit hooks.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return newTx(ctx, tx, s.commitHooks()), nil
}

// WithTx runs fn in a unit of work, committing when fn returns nil.
// The error from Commit is returned as is, so callers can check ErrAfterCommit.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
