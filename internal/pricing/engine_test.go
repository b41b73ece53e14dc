package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/domain"
)

type countingSource struct {
	rates domain.PriceRates
	calls int
}

func (s *countingSource) GetRates(_ context.Context) (domain.PriceRates, error) {
	s.calls++
	return s.rates, nil
}

type mapCache struct {
	items map[string]domain.PriceRates
}

func (c *mapCache) Get(_ context.Context, key string) (*domain.PriceRates, bool, error) {
	v, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *mapCache) Set(_ context.Context, key string, value *domain.PriceRates, _ time.Duration) error {
	c.items[key] = *value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.items, key)
	return nil
}

func TestSuggestedPriceMultipliesWeightByRate(t *testing.T) {
	rates := domain.PriceRates{
		Rate10k:     decimal.RequireFromString("950"),
		Rate14k:     decimal.RequireFromString("1200.50"),
		RateItalian: decimal.RequireFromString("1400"),
	}

	price, err := SuggestedPrice(rates, decimal.RequireFromString("3.333"), domain.PurityFourteenK)
	if err != nil {
		t.Fatalf("suggested price: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("4001.27")) {
		t.Fatalf("expected 4001.27, got %s", price)
	}

	if _, err := SuggestedPrice(rates, decimal.RequireFromString("1"), "18k"); !errors.Is(err, ErrUnknownPurity) {
		t.Fatalf("expected ErrUnknownPurity, got %v", err)
	}
}

func TestRatesReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{rates: domain.PriceRates{Rate10k: decimal.RequireFromString("900")}}
	engine := NewEngine(src, &mapCache{items: map[string]domain.PriceRates{}}, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := engine.Rates(ctx); err != nil {
			t.Fatalf("rates: %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 store read, got %d", src.calls)
	}

	src.rates.Rate10k = decimal.RequireFromString("950")
	engine.Invalidate(ctx)
	rates, err := engine.Rates(ctx)
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if src.calls != 2 || !rates.Rate10k.Equal(decimal.RequireFromString("950")) {
		t.Fatalf("expected fresh rates after invalidate, calls=%d rate=%s", src.calls, rates.Rate10k)
	}
}

func TestQuoteTotalsLines(t *testing.T) {
	src := &countingSource{rates: domain.PriceRates{
		Rate10k:     decimal.RequireFromString("1000"),
		RateItalian: decimal.RequireFromString("1500"),
	}}
	engine := NewEngine(src, nil, 0)

	quote, err := engine.Quote(context.Background(), []domain.Product{
		{ID: 1, SKU: "10AN2", Weight: decimal.RequireFromString("2"), Purity: domain.PurityTenK},
		{ID: 2, SKU: "ITAC1", Weight: decimal.RequireFromString("1.5"), Purity: domain.PurityItalian},
		{ID: 3, SKU: "X", Weight: decimal.RequireFromString("4"), Purity: "oro"},
	}, decimal.Zero)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(quote.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(quote.Lines))
	}
	if !quote.Lines[1].SuggestedPrice.Equal(decimal.RequireFromString("2250")) {
		t.Fatalf("expected 2250, got %s", quote.Lines[1].SuggestedPrice)
	}
	if !quote.Lines[2].SuggestedPrice.IsZero() {
		t.Fatalf("unknown purity should quote zero, got %s", quote.Lines[2].SuggestedPrice)
	}
	if !quote.Subtotal.Equal(decimal.RequireFromString("4250")) || !quote.Total.Equal(quote.Subtotal) {
		t.Fatalf("expected subtotal and total 4250, got %s and %s", quote.Subtotal, quote.Total)
	}
	if src.calls != 1 {
		t.Fatalf("noop cache should read store once per quote, got %d", src.calls)
	}
}

func TestQuoteAppliesClampedDiscount(t *testing.T) {
	src := &countingSource{rates: domain.PriceRates{Rate14k: decimal.RequireFromString("1200")}}
	engine := NewEngine(src, nil, 0)
	products := []domain.Product{{ID: 1, Weight: decimal.RequireFromString("2.5"), Purity: domain.PurityFourteenK}}

	cases := []struct {
		percent  string
		clamped  string
		discount string
		total    string
	}{
		{"10", "10", "300", "2700"},
		{"12.5", "12.5", "375", "2625"},
		{"-5", "0", "0", "3000"},
		{"150", "100", "3000", "0"},
	}
	for _, tc := range cases {
		quote, err := engine.Quote(context.Background(), products, decimal.RequireFromString(tc.percent))
		if err != nil {
			t.Fatalf("quote %s%%: %v", tc.percent, err)
		}
		if !quote.Subtotal.Equal(decimal.RequireFromString("3000")) {
			t.Fatalf("%s%%: expected subtotal 3000, got %s", tc.percent, quote.Subtotal)
		}
		if !quote.DiscountPercent.Equal(decimal.RequireFromString(tc.clamped)) ||
			!quote.Discount.Equal(decimal.RequireFromString(tc.discount)) ||
			!quote.Total.Equal(decimal.RequireFromString(tc.total)) {
			t.Fatalf("%s%%: unexpected quote percent=%s discount=%s total=%s", tc.percent, quote.DiscountPercent, quote.Discount, quote.Total)
		}
	}
}

func TestNormalizePurity(t *testing.T) {
	cases := map[string]string{
		"10k":      domain.PurityTenK,
		" 14K ":    domain.PurityFourteenK,
		"Italian":  domain.PurityItalian,
		"Italiano": domain.PurityItalian,
	}
	for in, want := range cases {
		got, ok := NormalizePurity(in)
		if !ok || got != want {
			t.Fatalf("NormalizePurity(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := NormalizePurity("18k"); ok {
		t.Fatalf("expected 18k to be rejected")
	}
}
