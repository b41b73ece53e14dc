package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/pricing"
	"joyeria/backend/internal/store"
)

// ListProducts returns the catalog narrowed by filter.Query and ordered by
// name (the default) or by category then name.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	sortBy := strings.ToLower(strings.TrimSpace(filter.Sort))
	switch sortBy {
	case "", domain.ProductSortName, domain.ProductSortCategory:
	default:
		return nil, invalid("unknown sort %q", filter.Sort)
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	if query != "" {
		matched := products[:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), query) ||
				strings.Contains(strings.ToLower(p.SKU), query) ||
				strings.Contains(strings.ToLower(p.Category), query) {
				matched = append(matched, p)
			}
		}
		products = matched
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if sortBy == domain.ProductSortCategory {
			if ca, cb := strings.ToLower(a.Category), strings.ToLower(b.Category); ca != cb {
				return ca < cb
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return products, nil
}

func (s *Service) FindProductBySKU(ctx context.Context, sku string) (domain.Product, error) {
	sku = normalizeSKU(sku)
	if sku == "" {
		return domain.Product{}, invalid("sku is required")
	}
	p, err := s.repo.GetProductBySKU(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductRequest) (domain.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}
	product, err := productFromRequest(req, 1)
	if err != nil {
		return domain.Product{}, err
	}
	if product.SKU == "" {
		product.SKU, err = s.GenerateSKU(ctx, domain.SKUSuggestionRequest{
			Name: product.Name, Weight: req.Weight, Purity: product.Purity,
		})
		if err != nil {
			return domain.Product{}, err
		}
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.SKU, fmt.Sprintf("name=%s,weight=%s,qty=%d", created.Name, created.Weight, created.Quantity))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductRequest) (domain.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}
	if id < 1 {
		return domain.Product{}, invalid("product id is required")
	}
	s.stockMu.Lock()
	defer s.stockMu.Unlock()

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := productFromRequest(req, existing.Quantity)
	if err != nil {
		return domain.Product{}, err
	}
	if product.SKU == "" {
		product.SKU = existing.SKU
	}
	product.ID = id

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", updated.SKU, fmt.Sprintf("id=%d,qty=%d", updated.ID, updated.Quantity))
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	s.stockMu.Lock()
	deleted, err := s.repo.DeleteProduct(ctx, id)
	s.stockMu.Unlock()
	if err != nil {
		return err
	}
	if !deleted {
		return store.ErrNotFound
	}

	s.logAudit(ctx, "product_delete", "product", strconv.FormatInt(id, 10), "")
	return nil
}

// GenerateSKU builds purity prefix + name initials + weight digits, adding a
// counter suffix until the key is free.
func (s *Service) GenerateSKU(ctx context.Context, req domain.SKUSuggestionRequest) (string, error) {
	return s.generateSKU(ctx, req, nil)
}

func (s *Service) generateSKU(ctx context.Context, req domain.SKUSuggestionRequest, reserved map[string]struct{}) (string, error) {
	purity, ok := pricing.NormalizePurity(req.Purity)
	if !ok {
		return "", invalid("unknown purity %q", req.Purity)
	}
	initials := nameInitials(req.Name)
	if initials == "" {
		return "", invalid("name is required")
	}
	if !req.Weight.IsPositive() {
		return "", invalid("weight must be greater than zero")
	}

	base := skuPrefix(purity) + initials + weightDigits(req.Weight)
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := s.skuTaken(ctx, candidate, reserved)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(counter)
	}
}

func (s *Service) skuTaken(ctx context.Context, sku string, reserved map[string]struct{}) (bool, error) {
	if _, ok := reserved[sku]; ok {
		return true, nil
	}
	_, err := s.repo.GetProductBySKU(ctx, sku)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BulkCreateProducts adds one unit-quantity piece per weight listed in
// req.Weights. Either every piece is created or none is.
func (s *Service) BulkCreateProducts(ctx context.Context, req domain.BulkProductRequest) ([]domain.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	purity, ok := pricing.NormalizePurity(req.Purity)
	if !ok {
		return nil, invalid("unknown purity %q", req.Purity)
	}
	weights, err := parseWeights(req.Weights)
	if err != nil {
		return nil, err
	}

	reserved := make(map[string]struct{}, len(weights))
	products := make([]domain.Product, 0, len(weights))
	for _, weight := range weights {
		sku, err := s.generateSKU(ctx, domain.SKUSuggestionRequest{Name: name, Weight: weight, Purity: purity}, reserved)
		if err != nil {
			return nil, err
		}
		reserved[sku] = struct{}{}
		products = append(products, domain.Product{
			SKU:      sku,
			Name:     name,
			Weight:   weight.Round(3),
			Purity:   purity,
			Category: defaultCategory(req.Category),
			Quantity: 1,
		})
	}

	created, err := s.repo.CreateProducts(ctx, products)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "product_bulk_create", "product", name, fmt.Sprintf("count=%d,purity=%s", len(created), purity))
	return created, nil
}

func parseWeights(raw string) ([]decimal.Decimal, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, invalid("at least one weight is required")
	}

	weights := make([]decimal.Decimal, 0, len(fields))
	for _, field := range fields {
		w, err := decimal.NewFromString(field)
		if err != nil || !w.IsPositive() {
			return nil, invalid("weight %q is not a positive number", field)
		}
		weights = append(weights, w)
	}
	return weights, nil
}

func productFromRequest(req domain.ProductRequest, defaultQty int) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, invalid("name is required")
	}
	if !req.Weight.IsPositive() {
		return domain.Product{}, invalid("weight must be greater than zero")
	}
	purity, ok := pricing.NormalizePurity(req.Purity)
	if !ok {
		return domain.Product{}, invalid("unknown purity %q", req.Purity)
	}
	quantity := defaultQty
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		return domain.Product{}, invalid("quantity must not be negative")
	}

	return domain.Product{
		SKU:      normalizeSKU(req.SKU),
		Name:     name,
		Weight:   req.Weight.Round(3),
		Purity:   purity,
		Category: defaultCategory(req.Category),
		Quantity: quantity,
	}, nil
}

// weightDigits is the weight as it was typed, separators dropped, so "2.50"
// gives "250" and "3.0" gives "30".
func weightDigits(w decimal.Decimal) string {
	text := w.String()
	if exp := w.Exponent(); exp < 0 {
		text = w.StringFixed(-exp)
	}
	return strings.NewReplacer(".", "", ",", "").Replace(text)
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func defaultCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "Otro"
	}
	return category
}

func skuPrefix(purity string) string {
	switch purity {
	case domain.PurityTenK:
		return "10"
	case domain.PurityFourteenK:
		return "14"
	default:
		return "ITA"
	}
}

func nameInitials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		b.WriteString(strings.ToUpper(string(r)))
	}
	return b.String()
}
