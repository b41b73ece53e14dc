package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

const productColumns = `id, sku, name, weight, purity, category, quantity`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Weight, &p.Purity, &p.Category, &p.Quantity)
	return p, err
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	created, err := s.insertProduct(ctx, s.db, product)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateProducts inserts every product or none of them.
func (s *Store) CreateProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	if len(products) == 0 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	created := make([]domain.Product, 0, len(products))
	for _, product := range products {
		p, err := s.insertProduct(ctx, tx, product)
		if err != nil {
			return nil, err
		}
		created = append(created, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) insertProduct(ctx context.Context, db queryer, product domain.Product) (domain.Product, error) {
	if product.SKU == "" || product.Name == "" || product.Quantity < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	err := db.QueryRowContext(ctx, s.q(`
		INSERT INTO products (sku, name, weight, purity, category, quantity)
		VALUES (?,?,?,?,?,?)
		RETURNING id
	`), product.SKU, product.Name, product.Weight, product.Purity, product.Category, product.Quantity).Scan(&product.ID)
	if err != nil {
		if s.isUniqueViolation(err) {
			return domain.Product{}, store.ErrDuplicateKey
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, s.q(`
		SELECT `+productColumns+`
		FROM products
		WHERE sku = ?
	`), sku))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, s.q(`
		SELECT `+productColumns+`
		FROM products
		WHERE id = ?
	`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID < 1 || product.SKU == "" || product.Name == "" || product.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE products
		SET sku = ?, name = ?, weight = ?, purity = ?, category = ?, quantity = ?
		WHERE id = ?
	`), product.SKU, product.Name, product.Weight, product.Purity, product.Category, product.Quantity, product.ID)
	if err != nil {
		if s.isUniqueViolation(err) {
			return nil, store.ErrDuplicateKey
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
