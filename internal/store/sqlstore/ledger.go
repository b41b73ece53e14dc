package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

// nextFolio advances the named counter inside tx and returns the new folio.
// The sequence runs 1..MaxFolio and wraps back to 1.
func (s *Store) nextFolio(ctx context.Context, tx *sql.Tx, name string) (int, error) {
	var folio int
	err := tx.QueryRowContext(ctx, s.q(`
		UPDATE folio_counters
		SET last_folio = CASE WHEN last_folio >= ? OR last_folio < 1 THEN 1 ELSE last_folio + 1 END
		WHERE name = ?
		RETURNING last_folio
	`), domain.MaxFolio, name).Scan(&folio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.New("folio counter " + name + " missing; run migrations")
		}
		return 0, err
	}
	return folio, nil
}

// consumeUnit takes one unit of a product off the shelf: decrement when more
// than one is on hand, otherwise remove the row. A product that is already
// gone is not an error.
func (s *Store) consumeUnit(ctx context.Context, tx *sql.Tx, productID int64) error {
	var quantity int
	err := tx.QueryRowContext(ctx, s.q(`
		SELECT quantity FROM products WHERE id = ?`+s.dialect.LockClause,
	), productID).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if quantity > 1 {
		_, err = tx.ExecContext(ctx, s.q(`UPDATE products SET quantity = quantity - 1 WHERE id = ?`), productID)
		return err
	}
	_, err = tx.ExecContext(ctx, s.q(`DELETE FROM products WHERE id = ?`), productID)
	return err
}

func customerName(c domain.CustomerSnapshot) string {
	if c.Name == "" {
		return domain.DefaultCustomerName
	}
	return c.Name
}

func (s *Store) RecordSale(ctx context.Context, req domain.SaleRequest, at time.Time) (domain.SaleResult, error) {
	if len(req.Items) == 0 {
		return domain.SaleResult{}, store.ErrEmptyCart
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return domain.SaleResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	folio, err := s.nextFolio(ctx, tx, folioSales)
	if err != nil {
		return domain.SaleResult{}, err
	}

	var saleID int64
	err = tx.QueryRowContext(ctx, s.q(`
		INSERT INTO sales (folio, created_at, total, payment_method, employee_id,
			customer_name, customer_address, customer_zip, customer_phone)
		VALUES (?,?,?,?,?,?,?,?,?)
		RETURNING id
	`), folio, utc(at), req.Total.Round(2), req.PaymentMethod, req.EmployeeID,
		customerName(req.Customer), req.Customer.Address, req.Customer.ZipCode, req.Customer.Phone,
	).Scan(&saleID)
	if err != nil {
		return domain.SaleResult{}, err
	}

	for _, item := range req.Items {
		p := item.Product
		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO sale_line_items (sale_id, original_product_id, sku, name, weight, purity, category, sale_price)
			VALUES (?,?,?,?,?,?,?,?)
		`), saleID, p.ID, p.SKU, p.Name, p.Weight, p.Purity, p.Category, item.Price.Round(2))
		if err != nil {
			return domain.SaleResult{}, err
		}
		if err := s.consumeUnit(ctx, tx, p.ID); err != nil {
			return domain.SaleResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.SaleResult{}, err
	}
	return domain.SaleResult{SaleID: saleID, Folio: folio}, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, folio, created_at, total, payment_method, employee_id,
			customer_name, customer_address, customer_zip, customer_phone
		FROM sales
		WHERE id = ?
	`), id).Scan(
		&sale.ID, &sale.Folio, &sale.CreatedAt, &sale.Total, &sale.PaymentMethod, &sale.EmployeeID,
		&sale.Customer.Name, &sale.Customer.Address, &sale.Customer.ZipCode, &sale.Customer.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, sale_id, original_product_id, sku, name, weight, purity, category, sale_price
		FROM sale_line_items
		WHERE sale_id = ?
		ORDER BY id
	`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sale.Items = make([]domain.SaleLineItem, 0, 4)
	for rows.Next() {
		var li domain.SaleLineItem
		if err := rows.Scan(&li.ID, &li.SaleID, &li.OriginalProductID, &li.SKU, &li.Name, &li.Weight, &li.Purity, &li.Category, &li.SalePrice); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) RecordLayaway(ctx context.Context, req domain.LayawayRequest, at time.Time) (domain.LayawayResult, error) {
	if len(req.Items) == 0 {
		return domain.LayawayResult{}, store.ErrEmptyCart
	}
	total := req.TotalValue.Round(2)
	initial := req.InitialPayment.Round(2)
	if !initial.IsPositive() {
		return domain.LayawayResult{}, store.ErrInvalidAmount
	}
	if initial.GreaterThanOrEqual(total) {
		return domain.LayawayResult{}, store.ErrPayInFull
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return domain.LayawayResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	folio, err := s.nextFolio(ctx, tx, folioLayaways)
	if err != nil {
		return domain.LayawayResult{}, err
	}

	at = utc(at)
	var layawayID int64
	err = tx.QueryRowContext(ctx, s.q(`
		INSERT INTO layaways (folio, started_at, employee_id, customer_name, customer_phone,
			total_value, total_paid, pending, status)
		VALUES (?,?,?,?,?,?,?,?,?)
		RETURNING id
	`), folio, at, req.EmployeeID, req.Customer.Name, req.Customer.Phone,
		total, initial, total.Sub(initial), domain.LayawayStatusPending,
	).Scan(&layawayID)
	if err != nil {
		return domain.LayawayResult{}, err
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO payments (layaway_id, created_at, amount, payment_method, employee_id)
		VALUES (?,?,?,?,?)
	`), layawayID, at, initial, req.PaymentMethod, req.EmployeeID)
	if err != nil {
		return domain.LayawayResult{}, err
	}

	for _, item := range req.Items {
		p := item.Product
		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO layaway_line_items (layaway_id, original_product_id, sku, name, weight, purity, unit_price)
			VALUES (?,?,?,?,?,?,?)
		`), layawayID, p.ID, p.SKU, p.Name, p.Weight, p.Purity, item.Price.Round(2))
		if err != nil {
			return domain.LayawayResult{}, err
		}
		if err := s.consumeUnit(ctx, tx, p.ID); err != nil {
			return domain.LayawayResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.LayawayResult{}, err
	}
	return domain.LayawayResult{LayawayID: layawayID, Folio: folio}, nil
}

// AddLayawayPayment appends a payment and recomputes the running balance from
// the full payment history. The layaway is marked paid off once nothing is
// pending.
func (s *Store) AddLayawayPayment(ctx context.Context, req domain.PaymentRequest, at time.Time) (*domain.Layaway, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, store.ErrInvalidAmount
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		total  decimal.Decimal
		status string
	)
	err = tx.QueryRowContext(ctx, s.q(`
		SELECT total_value, status FROM layaways WHERE id = ?`+s.dialect.LockClause,
	), req.LayawayID).Scan(&total, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.LayawayStatusPending {
		return nil, store.ErrLayawayClosed
	}

	paid, err := s.sumPayments(ctx, tx, req.LayawayID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(total.Sub(paid)) {
		return nil, store.ErrOverpayment
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO payments (layaway_id, created_at, amount, payment_method, employee_id)
		VALUES (?,?,?,?,?)
	`), req.LayawayID, utc(at), amount, req.PaymentMethod, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	paid, err = s.sumPayments(ctx, tx, req.LayawayID)
	if err != nil {
		return nil, err
	}
	pending := total.Sub(paid)
	status = domain.LayawayStatusPending
	if !pending.IsPositive() {
		status = domain.LayawayStatusPaidOff
	}

	_, err = tx.ExecContext(ctx, s.q(`
		UPDATE layaways SET total_paid = ?, pending = ?, status = ? WHERE id = ?
	`), paid, pending, status, req.LayawayID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetLayaway(ctx, req.LayawayID)
}

func (s *Store) sumPayments(ctx context.Context, tx *sql.Tx, layawayID int64) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := tx.QueryRowContext(ctx, s.q(`
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE layaway_id = ?
	`), layawayID).Scan(&paid)
	if err != nil {
		return decimal.Zero, err
	}
	return paid.Round(2), nil
}

// CancelLayaway closes a pending layaway. Goods taken off the shelf when the
// layaway was opened are not restocked.
func (s *Store) CancelLayaway(ctx context.Context, id int64) (*domain.Layaway, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE layaways SET status = ? WHERE id = ? AND status = ?
	`), domain.LayawayStatusCancelled, id, domain.LayawayStatusPending)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := s.getLayawayHeader(ctx, id); err != nil {
			return nil, err
		}
		return nil, store.ErrLayawayClosed
	}
	return s.GetLayaway(ctx, id)
}

const layawayColumns = `id, folio, started_at, employee_id, customer_name, customer_phone,
	total_value, total_paid, pending, status`

func scanLayaway(row interface{ Scan(...any) error }) (domain.Layaway, error) {
	var l domain.Layaway
	err := row.Scan(&l.ID, &l.Folio, &l.StartedAt, &l.EmployeeID, &l.Customer.Name, &l.Customer.Phone,
		&l.TotalValue, &l.TotalPaid, &l.Pending, &l.Status)
	l.StartedAt = l.StartedAt.UTC()
	return l, err
}

func (s *Store) getLayawayHeader(ctx context.Context, id int64) (domain.Layaway, error) {
	l, err := scanLayaway(s.db.QueryRowContext(ctx, s.q(`
		SELECT `+layawayColumns+`
		FROM layaways
		WHERE id = ?
	`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Layaway{}, store.ErrNotFound
		}
		return domain.Layaway{}, err
	}
	return l, nil
}

func (s *Store) GetLayaway(ctx context.Context, id int64) (*domain.Layaway, error) {
	l, err := s.getLayawayHeader(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.layawayItems(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Items = items

	payments, err := s.layawayPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Payments = payments
	return &l, nil
}

func (s *Store) layawayItems(ctx context.Context, id int64) ([]domain.LayawayLineItem, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, layaway_id, original_product_id, sku, name, weight, purity, unit_price
		FROM layaway_line_items
		WHERE layaway_id = ?
		ORDER BY id
	`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.LayawayLineItem, 0, 4)
	for rows.Next() {
		var li domain.LayawayLineItem
		if err := rows.Scan(&li.ID, &li.LayawayID, &li.OriginalProductID, &li.SKU, &li.Name, &li.Weight, &li.Purity, &li.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (s *Store) layawayPayments(ctx context.Context, id int64) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, layaway_id, created_at, amount, payment_method, employee_id
		FROM payments
		WHERE layaway_id = ?
		ORDER BY created_at, id
	`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, 4)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.LayawayID, &p.CreatedAt, &p.Amount, &p.PaymentMethod, &p.EmployeeID); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListLayaways returns headers only, newest first. An empty status lists all.
func (s *Store) ListLayaways(ctx context.Context, status string) ([]domain.Layaway, error) {
	query := `SELECT ` + layawayColumns + ` FROM layaways`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY started_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	layaways := make([]domain.Layaway, 0, 16)
	for rows.Next() {
		l, err := scanLayaway(rows)
		if err != nil {
			return nil, err
		}
		layaways = append(layaways, l)
	}
	return layaways, rows.Err()
}
