// Package sqlite is the default single-file store. It is opened with foreign
// keys enforced and WAL journaling, and migrates its schema on New. Use
// ":memory:" for a throwaway database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"joyeria/backend/internal/store/sqlstore"
)

const MemoryPath = ":memory:"

type Store struct {
	*sqlstore.Store
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sku TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		weight NUMERIC NOT NULL,
		purity TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS price_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		rate_10k NUMERIC NOT NULL DEFAULT 0,
		rate_14k NUMERIC NOT NULL DEFAULT 0,
		rate_italian NUMERIC NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS folio_counters (
		name TEXT PRIMARY KEY,
		last_folio INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folio INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		total NUMERIC NOT NULL,
		payment_method TEXT NOT NULL,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		customer_name TEXT NOT NULL DEFAULT '',
		customer_address TEXT NOT NULL DEFAULT '',
		customer_zip TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at)`,
	`CREATE TABLE IF NOT EXISTS sale_line_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		original_product_id INTEGER NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		weight NUMERIC NOT NULL,
		purity TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		sale_price NUMERIC NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_line_items_sale_id ON sale_line_items (sale_id)`,
	`CREATE TABLE IF NOT EXISTS layaways (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folio INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		customer_name TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		total_value NUMERIC NOT NULL,
		total_paid NUMERIC NOT NULL,
		pending NUMERIC NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS layaway_line_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		layaway_id INTEGER NOT NULL REFERENCES layaways(id) ON DELETE CASCADE,
		original_product_id INTEGER NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		weight NUMERIC NOT NULL,
		purity TEXT NOT NULL,
		unit_price NUMERIC NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		layaway_id INTEGER NOT NULL REFERENCES layaways(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		amount NUMERIC NOT NULL,
		payment_method TEXT NOT NULL,
		employee_id INTEGER NOT NULL REFERENCES employees(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_layaway_id ON payments (layaway_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments (created_at)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL DEFAULT '',
		entity_id TEXT NOT NULL DEFAULT '',
		actor TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at)`,
}

var dialect = sqlstore.Dialect{
	Name:              "sqlite",
	Schema:            schema,
	IsUniqueViolation: isUniqueViolation,
}

// New opens (or creates) the database at path.
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}

	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if path != MemoryPath {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One writer at a time; for :memory: this also keeps every query on the
	// same database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{Store: sqlstore.New(db, dialect), db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
