package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"joyeria/backend/internal/store/sqlstore"
)

type Store struct {
	*sqlstore.Store
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		sku TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		weight NUMERIC(10,3) NOT NULL,
		purity TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS price_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		rate_10k NUMERIC(12,2) NOT NULL DEFAULT 0,
		rate_14k NUMERIC(12,2) NOT NULL DEFAULT 0,
		rate_italian NUMERIC(12,2) NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS folio_counters (
		name TEXT PRIMARY KEY,
		last_folio INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		folio INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		total NUMERIC(12,2) NOT NULL,
		payment_method TEXT NOT NULL,
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		customer_name TEXT NOT NULL DEFAULT '',
		customer_address TEXT NOT NULL DEFAULT '',
		customer_zip TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at)`,
	`CREATE TABLE IF NOT EXISTS sale_line_items (
		id BIGSERIAL PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		original_product_id BIGINT NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		weight NUMERIC(10,3) NOT NULL,
		purity TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		sale_price NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_line_items_sale_id ON sale_line_items (sale_id)`,
	`CREATE TABLE IF NOT EXISTS layaways (
		id BIGSERIAL PRIMARY KEY,
		folio INTEGER NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		customer_name TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		total_value NUMERIC(12,2) NOT NULL,
		total_paid NUMERIC(12,2) NOT NULL,
		pending NUMERIC(12,2) NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS layaway_line_items (
		id BIGSERIAL PRIMARY KEY,
		layaway_id BIGINT NOT NULL REFERENCES layaways(id) ON DELETE CASCADE,
		original_product_id BIGINT NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		weight NUMERIC(10,3) NOT NULL,
		purity TEXT NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		layaway_id BIGINT NOT NULL REFERENCES layaways(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		payment_method TEXT NOT NULL,
		employee_id BIGINT NOT NULL REFERENCES employees(id)
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
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at)`,
}

var dialect = sqlstore.Dialect{
	Name:              "postgres",
	Schema:            schema,
	Rebind:            rebind,
	IsUniqueViolation: isUniqueViolation,
	LockClause:        " FOR UPDATE",
	TxOptions:         &sql.TxOptions{Isolation: sql.LevelSerializable},
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{Store: sqlstore.New(db, dialect), db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// rebind turns '?' placeholders into $1, $2, ... Queries here never carry a
// literal question mark.
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
