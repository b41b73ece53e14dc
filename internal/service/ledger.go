package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (domain.SaleResult, error) {
	req.EmployeeID = employeeFor(ctx, req.EmployeeID)
	if req.EmployeeID < 1 {
		return domain.SaleResult{}, invalid("employee is required")
	}
	method, ok := normalizePaymentMethod(req.PaymentMethod)
	if !ok {
		return domain.SaleResult{}, invalid("unsupported payment method %q", req.PaymentMethod)
	}
	req.PaymentMethod = method
	if !req.Total.IsPositive() {
		return domain.SaleResult{}, store.ErrInvalidAmount
	}
	req.Total = req.Total.Round(2)

	s.stockMu.Lock()
	defer s.stockMu.Unlock()

	items, err := s.prepareCart(ctx, req.Items)
	if err != nil {
		return domain.SaleResult{}, err
	}
	req.Items = items
	req.Customer = trimCustomer(req.Customer)

	res, err := s.repo.RecordSale(ctx, req, s.now())
	if err != nil {
		log.Printf("[service] record sale failed employee=%d items=%d: %v", req.EmployeeID, len(req.Items), err)
		return domain.SaleResult{}, fmt.Errorf("record sale: %w", err)
	}

	s.logAudit(ctx, "sale_record", "sale", strconv.FormatInt(res.SaleID, 10),
		fmt.Sprintf("folio=%d,total=%s,method=%s,items=%d", res.Folio, req.Total.StringFixed(2), req.PaymentMethod, len(req.Items)))
	return res, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) RecordLayaway(ctx context.Context, req domain.LayawayRequest) (domain.LayawayResult, error) {
	req.EmployeeID = employeeFor(ctx, req.EmployeeID)
	if req.EmployeeID < 1 {
		return domain.LayawayResult{}, invalid("employee is required")
	}
	method, ok := normalizePaymentMethod(req.PaymentMethod)
	if !ok {
		return domain.LayawayResult{}, invalid("unsupported payment method %q", req.PaymentMethod)
	}
	req.PaymentMethod = method
	req.Customer = trimCustomer(req.Customer)
	if req.Customer.Name == "" {
		return domain.LayawayResult{}, invalid("customer name is required")
	}

	req.TotalValue = req.TotalValue.Round(2)
	req.InitialPayment = req.InitialPayment.Round(2)
	if !req.TotalValue.IsPositive() || !req.InitialPayment.IsPositive() {
		return domain.LayawayResult{}, store.ErrInvalidAmount
	}
	if req.InitialPayment.GreaterThanOrEqual(req.TotalValue) {
		return domain.LayawayResult{}, store.ErrPayInFull
	}

	s.stockMu.Lock()
	defer s.stockMu.Unlock()

	items, err := s.prepareCart(ctx, req.Items)
	if err != nil {
		return domain.LayawayResult{}, err
	}
	req.Items = items

	res, err := s.repo.RecordLayaway(ctx, req, s.now())
	if err != nil {
		log.Printf("[service] record layaway failed employee=%d items=%d: %v", req.EmployeeID, len(req.Items), err)
		return domain.LayawayResult{}, fmt.Errorf("record layaway: %w", err)
	}

	s.logAudit(ctx, "layaway_record", "layaway", strconv.FormatInt(res.LayawayID, 10),
		fmt.Sprintf("folio=%d,total=%s,initial=%s,customer=%s", res.Folio, req.TotalValue.StringFixed(2), req.InitialPayment.StringFixed(2), req.Customer.Name))
	return res, nil
}

func (s *Service) AddLayawayPayment(ctx context.Context, req domain.PaymentRequest) (domain.Layaway, error) {
	req.EmployeeID = employeeFor(ctx, req.EmployeeID)
	if req.EmployeeID < 1 {
		return domain.Layaway{}, invalid("employee is required")
	}
	if req.LayawayID < 1 {
		return domain.Layaway{}, invalid("layaway id is required")
	}
	method, ok := normalizePaymentMethod(req.PaymentMethod)
	if !ok {
		return domain.Layaway{}, invalid("unsupported payment method %q", req.PaymentMethod)
	}
	req.PaymentMethod = method
	req.Amount = req.Amount.Round(2)
	if !req.Amount.IsPositive() {
		return domain.Layaway{}, store.ErrInvalidAmount
	}

	layaway, err := s.repo.AddLayawayPayment(ctx, req, s.now())
	if err != nil {
		return domain.Layaway{}, fmt.Errorf("add layaway payment: %w", err)
	}

	s.logAudit(ctx, "layaway_payment", "layaway", strconv.FormatInt(layaway.ID, 10),
		fmt.Sprintf("amount=%s,pending=%s,status=%s", req.Amount.StringFixed(2), layaway.Pending.StringFixed(2), layaway.Status))
	return *layaway, nil
}

func (s *Service) CancelLayaway(ctx context.Context, id int64) (domain.Layaway, error) {
	layaway, err := s.repo.CancelLayaway(ctx, id)
	if err != nil {
		return domain.Layaway{}, fmt.Errorf("cancel layaway: %w", err)
	}

	s.logAudit(ctx, "layaway_cancel", "layaway", strconv.FormatInt(id, 10), fmt.Sprintf("paid=%s", layaway.TotalPaid.StringFixed(2)))
	return *layaway, nil
}

func (s *Service) GetLayaway(ctx context.Context, id int64) (domain.Layaway, error) {
	layaway, err := s.repo.GetLayaway(ctx, id)
	if err != nil {
		return domain.Layaway{}, err
	}
	return *layaway, nil
}

func (s *Service) ListLayaways(ctx context.Context, status string) ([]domain.Layaway, error) {
	switch status {
	case "", domain.LayawayStatusPending, domain.LayawayStatusPaidOff, domain.LayawayStatusCancelled:
	default:
		return nil, invalid("unknown layaway status %q", status)
	}
	return s.repo.ListLayaways(ctx, status)
}

// prepareCart checks every entry against the catalog and refreshes its
// product snapshot from the current row.
func (s *Service) prepareCart(ctx context.Context, items []domain.CartItem) ([]domain.CartItem, error) {
	if len(items) == 0 {
		return nil, store.ErrEmptyCart
	}

	current := make(map[int64]domain.Product, len(items))
	wanted := make(map[int64]int, len(items))
	prepared := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		id := item.Product.ID
		if id < 1 {
			return nil, invalid("cart item without product id")
		}
		if item.Price.IsNegative() {
			return nil, store.ErrInvalidAmount
		}

		p, ok := current[id]
		if !ok {
			found, err := s.repo.GetProductByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("cart product %d: %w", id, err)
			}
			p = *found
			current[id] = p
		}

		wanted[id]++
		if wanted[id] > p.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.SKU)
		}
		prepared = append(prepared, domain.CartItem{Product: p, Price: item.Price.Round(2)})
	}
	return prepared, nil
}

func trimCustomer(c domain.CustomerSnapshot) domain.CustomerSnapshot {
	return domain.CustomerSnapshot{
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
		ZipCode: strings.TrimSpace(c.ZipCode),
		Phone:   strings.TrimSpace(c.Phone),
	}
}
