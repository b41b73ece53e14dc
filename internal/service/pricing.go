package service

import (
	"context"
	"fmt"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

func (s *Service) GetRates(ctx context.Context) (domain.PriceRates, error) {
	return s.pricer.Rates(ctx)
}

func (s *Service) SetRates(ctx context.Context, rates domain.PriceRates) (domain.PriceRates, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.PriceRates{}, err
	}
	if rates.Rate10k.IsNegative() || rates.Rate14k.IsNegative() || rates.RateItalian.IsNegative() {
		return domain.PriceRates{}, store.ErrInvalidRate
	}

	rates.Rate10k = rates.Rate10k.Round(2)
	rates.Rate14k = rates.Rate14k.Round(2)
	rates.RateItalian = rates.RateItalian.Round(2)
	rates.UpdatedAt = s.now().UTC()
	if err := s.repo.SetRates(ctx, rates); err != nil {
		return domain.PriceRates{}, err
	}
	s.pricer.Invalidate(ctx)

	s.logAudit(ctx, "rates_update", "price_config", "1",
		fmt.Sprintf("10k=%s,14k=%s,italiano=%s", rates.Rate10k.StringFixed(2), rates.Rate14k.StringFixed(2), rates.RateItalian.StringFixed(2)))
	return rates, nil
}

// QuoteCart prices catalog products at the current rates, less the cart
// discount. The agreed price at checkout may differ; this is the starting
// suggestion.
func (s *Service) QuoteCart(ctx context.Context, req domain.CartQuoteRequest) (domain.CartQuote, error) {
	if len(req.ProductIDs) == 0 {
		return domain.CartQuote{}, store.ErrEmptyCart
	}

	products := make([]domain.Product, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		p, err := s.repo.GetProductByID(ctx, id)
		if err != nil {
			return domain.CartQuote{}, fmt.Errorf("quote product %d: %w", id, err)
		}
		products = append(products, *p)
	}
	return s.pricer.Quote(ctx, products, req.DiscountPercent)
}
