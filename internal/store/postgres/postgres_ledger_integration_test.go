package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/domain"
)

func TestRecordSaleConsumesStockAndAllocatesFolio(t *testing.T) {
	databaseURL := os.Getenv("JOYERIA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set JOYERIA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	sku := fmt.Sprintf("IT-SKU-%d", stamp)
	employeeName := fmt.Sprintf("it-employee-%d", stamp)

	employee, err := s.CreateEmployee(ctx, domain.Employee{
		Name: employeeName, PasswordHash: "x", Role: "cashier", Active: true,
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	product, err := s.CreateProduct(ctx, domain.Product{
		SKU: sku, Name: "Cadena IT", Weight: decimal.RequireFromString("10.5"),
		Purity: domain.PurityFourteenK, Category: "Cadenas", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	var saleID int64
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE sku = $1`, sku)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, employee.ID)
	})

	var before int
	if err := s.db.QueryRowContext(ctx, `SELECT last_folio FROM folio_counters WHERE name = 'sales'`).Scan(&before); err != nil {
		t.Fatalf("read counter: %v", err)
	}

	res, err := s.RecordSale(ctx, domain.SaleRequest{
		EmployeeID:    employee.ID,
		Items:         []domain.CartItem{{Product: *product, Price: decimal.RequireFromString("1200")}},
		Total:         decimal.RequireFromString("1200"),
		PaymentMethod: domain.PaymentCash,
	}, time.Now())
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	saleID = res.SaleID

	want := before + 1
	if before >= domain.MaxFolio {
		want = 1
	}
	if res.Folio != want {
		t.Fatalf("expected folio %d, got %d", want, res.Folio)
	}

	got, err := s.GetProductBySKU(ctx, sku)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got.Quantity != 1 {
		t.Fatalf("expected quantity 1 after sale, got %d", got.Quantity)
	}

	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if len(sale.Items) != 1 || sale.Items[0].SKU != sku || !sale.Items[0].Weight.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("unexpected line items: %+v", sale.Items)
	}
	if sale.Customer.Name != domain.DefaultCustomerName {
		t.Fatalf("expected default customer name, got %q", sale.Customer.Name)
	}
}

func TestRebindNumbersPlaceholders(t *testing.T) {
	got := rebind(`UPDATE t SET a = ?, b = ? WHERE id = ?`)
	want := `UPDATE t SET a = $1, b = $2 WHERE id = $3`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
