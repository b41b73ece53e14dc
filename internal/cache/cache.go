package cache

import (
	"context"
	"time"

	"joyeria/backend/internal/domain"
)

// RatesCache holds the current gold price rates between store reads.
type RatesCache interface {
	Get(ctx context.Context, key string) (*domain.PriceRates, bool, error)
	Set(ctx context.Context, key string, value *domain.PriceRates, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type NoopRatesCache struct{}

func (NoopRatesCache) Get(_ context.Context, _ string) (*domain.PriceRates, bool, error) {
	return nil, false, nil
}

func (NoopRatesCache) Set(_ context.Context, _ string, _ *domain.PriceRates, _ time.Duration) error {
	return nil
}

func (NoopRatesCache) Delete(_ context.Context, _ string) error {
	return nil
}
