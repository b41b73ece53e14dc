package pricing

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/cache"
	"joyeria/backend/internal/domain"
)

const ratesCacheKey = "joyeria:price_rates"

var ErrUnknownPurity = errors.New("unknown purity")

// RatesSource is the store side of the rates cache.
type RatesSource interface {
	GetRates(ctx context.Context) (domain.PriceRates, error)
}

type Engine struct {
	source   RatesSource
	cache    cache.RatesCache
	cacheTTL time.Duration
}

func NewEngine(source RatesSource, cacheStore cache.RatesCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopRatesCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}

	return &Engine{
		source:   source,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
	}
}

// Rates reads through the cache. Cache failures fall back to the store.
func (e *Engine) Rates(ctx context.Context) (domain.PriceRates, error) {
	if cached, ok, err := e.cache.Get(ctx, ratesCacheKey); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		log.Printf("[pricing] rates cache get failed: %v", err)
	}

	rates, err := e.source.GetRates(ctx)
	if err != nil {
		return domain.PriceRates{}, err
	}
	if err := e.cache.Set(ctx, ratesCacheKey, &rates, e.cacheTTL); err != nil {
		log.Printf("[pricing] rates cache set failed: %v", err)
	}
	return rates, nil
}

// Invalidate drops the cached rates; call after the store rates change.
func (e *Engine) Invalidate(ctx context.Context) {
	if err := e.cache.Delete(ctx, ratesCacheKey); err != nil {
		log.Printf("[pricing] rates cache delete failed: %v", err)
	}
}

// SuggestedPrice is weight times the per-gram rate of the purity, in cents.
func SuggestedPrice(rates domain.PriceRates, weight decimal.Decimal, purity string) (decimal.Decimal, error) {
	rate, ok := rates.RateFor(purity)
	if !ok {
		return decimal.Zero, ErrUnknownPurity
	}
	return weight.Mul(rate).Round(2), nil
}

// Quote prices every product at the current rates and applies a cart-wide
// percentage discount, clamped to 0..100. Products with an unknown purity are
// quoted at zero.
func (e *Engine) Quote(ctx context.Context, products []domain.Product, discountPercent decimal.Decimal) (domain.CartQuote, error) {
	rates, err := e.Rates(ctx)
	if err != nil {
		return domain.CartQuote{}, err
	}

	quote := domain.CartQuote{
		Lines:    make([]domain.QuoteLine, 0, len(products)),
		Subtotal: decimal.Zero,
	}
	for _, p := range products {
		price, err := SuggestedPrice(rates, p.Weight, p.Purity)
		if err != nil {
			price = decimal.Zero
		}
		quote.Lines = append(quote.Lines, domain.QuoteLine{
			ProductID:      p.ID,
			SKU:            p.SKU,
			Name:           p.Name,
			Weight:         p.Weight,
			Purity:         p.Purity,
			SuggestedPrice: price,
		})
		quote.Subtotal = quote.Subtotal.Add(price)
	}

	quote.DiscountPercent = ClampDiscount(discountPercent)
	quote.Discount, quote.Total = ApplyDiscount(quote.Subtotal, quote.DiscountPercent)
	return quote, nil
}

var hundred = decimal.NewFromInt(100)

// ClampDiscount keeps a percentage inside 0..100.
func ClampDiscount(percent decimal.Decimal) decimal.Decimal {
	if percent.IsNegative() {
		return decimal.Zero
	}
	if percent.GreaterThan(hundred) {
		return hundred
	}
	return percent
}

// ApplyDiscount returns the discount amount and the discounted total, which
// never drops below zero.
func ApplyDiscount(subtotal decimal.Decimal, percent decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	discount := subtotal.Mul(ClampDiscount(percent)).Div(hundred).Round(2)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return discount, total
}

// NormalizePurity maps user input onto the purity enumeration.
func NormalizePurity(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "10k", "10":
		return domain.PurityTenK, true
	case "14k", "14":
		return domain.PurityFourteenK, true
	case "italiano", "italian", "ita":
		return domain.PurityItalian, true
	}
	return "", false
}
