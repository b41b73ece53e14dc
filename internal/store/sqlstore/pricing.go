package sqlstore

import (
	"context"
	"time"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

// GetRates returns the singleton price row, creating it with zero rates on
// first access.
func (s *Store) GetRates(ctx context.Context) (domain.PriceRates, error) {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO price_config (id, rate_10k, rate_14k, rate_italian, updated_at)
		VALUES (1, 0, 0, 0, ?)
		ON CONFLICT (id) DO NOTHING
	`), time.Now().UTC())
	if err != nil {
		return domain.PriceRates{}, err
	}

	var rates domain.PriceRates
	err = s.db.QueryRowContext(ctx, `
		SELECT rate_10k, rate_14k, rate_italian, updated_at
		FROM price_config
		WHERE id = 1
	`).Scan(&rates.Rate10k, &rates.Rate14k, &rates.RateItalian, &rates.UpdatedAt)
	if err != nil {
		return domain.PriceRates{}, err
	}
	rates.UpdatedAt = rates.UpdatedAt.UTC()
	return rates, nil
}

func (s *Store) SetRates(ctx context.Context, rates domain.PriceRates) error {
	if rates.Rate10k.IsNegative() || rates.Rate14k.IsNegative() || rates.RateItalian.IsNegative() {
		return store.ErrInvalidRate
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO price_config (id, rate_10k, rate_14k, rate_italian, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET rate_10k = excluded.rate_10k, rate_14k = excluded.rate_14k,
			rate_italian = excluded.rate_italian, updated_at = excluded.updated_at
	`), rates.Rate10k, rates.Rate14k, rates.RateItalian, utc(rates.UpdatedAt))
	return err
}
