package sqlstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/domain"
)

// Every report covers the half-open window [from, to).

func (s *Store) TotalSales(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, int64, error) {
	var (
		total decimal.Decimal
		count int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM sales
		WHERE created_at >= ? AND created_at < ?
	`), from.UTC(), to.UTC()).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return total.Round(2), count, nil
}

func (s *Store) SalesByEmployee(ctx context.Context, from time.Time, to time.Time) ([]domain.EmployeeTotal, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT e.name, COALESCE(SUM(s.total), 0) AS total
		FROM sales s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.created_at >= ? AND s.created_at < ?
		GROUP BY e.id, e.name
		ORDER BY total DESC, e.name
	`), from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]domain.EmployeeTotal, 0, 8)
	for rows.Next() {
		var t domain.EmployeeTotal
		if err := rows.Scan(&t.EmployeeName, &t.Total); err != nil {
			return nil, err
		}
		t.Total = t.Total.Round(2)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *Store) SalesByPaymentMethod(ctx context.Context, from time.Time, to time.Time) ([]domain.PaymentMethodTotal, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT payment_method, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE created_at >= ? AND created_at < ?
		GROUP BY payment_method
		ORDER BY payment_method
	`), from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]domain.PaymentMethodTotal, 0, 3)
	for rows.Next() {
		var t domain.PaymentMethodTotal
		if err := rows.Scan(&t.PaymentMethod, &t.Sales, &t.Total); err != nil {
			return nil, err
		}
		t.Total = t.Total.Round(2)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *Store) ItemizedSales(ctx context.Context, from time.Time, to time.Time) ([]domain.ItemizedSale, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT s.folio, li.sku, li.name, li.weight, li.sale_price, e.name
		FROM sale_line_items li
		JOIN sales s ON s.id = li.sale_id
		JOIN employees e ON e.id = s.employee_id
		WHERE s.created_at >= ? AND s.created_at < ?
		ORDER BY s.created_at, s.id, li.id
	`), from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ItemizedSale, 0, 32)
	for rows.Next() {
		var it domain.ItemizedSale
		if err := rows.Scan(&it.Folio, &it.SKU, &it.Name, &it.Weight, &it.Price, &it.EmployeeName); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) ListSales(ctx context.Context, from time.Time, to time.Time) ([]domain.SaleSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT s.id, s.folio, s.created_at, s.total, s.payment_method, e.name
		FROM sales s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.created_at >= ? AND s.created_at < ?
		ORDER BY s.created_at DESC, s.id DESC
	`), from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.SaleSummary, 0, 32)
	for rows.Next() {
		var sale domain.SaleSummary
		if err := rows.Scan(&sale.ID, &sale.Folio, &sale.CreatedAt, &sale.Total, &sale.PaymentMethod, &sale.EmployeeName); err != nil {
			return nil, err
		}
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) TotalLayawayPayments(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE created_at >= ? AND created_at < ?
	`), from.UTC(), to.UTC()).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}
