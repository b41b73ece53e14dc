// Package sqlstore implements store.Repository over database/sql. The SQLite
// and Postgres backends share this code and differ only by Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"joyeria/backend/internal/store"
)

// Dialect carries what differs between database engines.
type Dialect struct {
	Name string
	// Schema is executed statement by statement; every statement must be idempotent.
	Schema []string
	// Rebind rewrites '?' placeholders into the engine's bind syntax. Nil means no rewrite.
	Rebind            func(query string) string
	IsUniqueViolation func(err error) bool
	// LockClause is appended to row reads that precede an update inside a transaction.
	LockClause string
	TxOptions  *sql.TxOptions
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Repository = (*Store)(nil)

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) q(query string) string {
	if s.dialect.Rebind == nil {
		return query
	}
	return s.dialect.Rebind(query)
}

func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, s.dialect.TxOptions)
}

func (s *Store) isUniqueViolation(err error) bool {
	if err == nil || s.dialect.IsUniqueViolation == nil {
		return false
	}
	return s.dialect.IsUniqueViolation(err)
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
