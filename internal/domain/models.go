package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PurityTenK      = "10k"
	PurityFourteenK = "14k"
	PurityItalian   = "Italiano"
)

const (
	PaymentCash     = "Efectivo"
	PaymentCard     = "Tarjeta"
	PaymentTransfer = "Transferencia"
)

const (
	LayawayStatusPending   = "Pendiente"
	LayawayStatusPaidOff   = "Liquidado"
	LayawayStatusCancelled = "Cancelado"
)

// DefaultCustomerName is stored on sales that carry no customer snapshot.
const DefaultCustomerName = "Público General"

// MaxFolio is the last folio handed out before the sequence wraps to 1.
const MaxFolio = 10000

// SuggestedCategories is the category list offered by the catalog form.
// Category stays free text; nothing rejects a value outside this list.
var SuggestedCategories = []string{
	"Cadenas", "Pulseras", "Dijes", "Aros", "Medallas", "Aretes", "Arracadas",
	"Gargantillas", "Anillos Caballero", "Anillos Dama", "Argolla Boda",
	"Anillo de Diamante", "Cruces", "Relojes", "Semanarios", "Broqueles", "Otro",
}

type Product struct {
	ID       int64           `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Weight   decimal.Decimal `json:"weight"`
	Purity   string          `json:"purity"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

type ProductRequest struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Weight   decimal.Decimal `json:"weight"`
	Purity   string          `json:"purity"`
	Category string          `json:"category"`
	Quantity *int            `json:"quantity,omitempty"`
}

type BulkProductRequest struct {
	Name     string `json:"name"`
	Purity   string `json:"purity"`
	Category string `json:"category"`
	Weights  string `json:"weights"`
}

type SKUSuggestionRequest struct {
	Name   string          `json:"name"`
	Weight decimal.Decimal `json:"weight"`
	Purity string          `json:"purity"`
}

type Employee struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type EmployeeCreateRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type PriceRates struct {
	Rate10k     decimal.Decimal `json:"rate_10k"`
	Rate14k     decimal.Decimal `json:"rate_14k"`
	RateItalian decimal.Decimal `json:"rate_italian"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RateFor returns the price per gram for a purity grade.
func (r PriceRates) RateFor(purity string) (decimal.Decimal, bool) {
	switch purity {
	case PurityTenK:
		return r.Rate10k, true
	case PurityFourteenK:
		return r.Rate14k, true
	case PurityItalian:
		return r.RateItalian, true
	}
	return decimal.Zero, false
}

type CustomerSnapshot struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// CartItem is one unit in the cart. A product bought twice appears twice.
type CartItem struct {
	Product Product         `json:"product"`
	Price   decimal.Decimal `json:"price"`
}

type SaleRequest struct {
	EmployeeID    int64            `json:"-"`
	Items         []CartItem       `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Customer      CustomerSnapshot `json:"customer"`
}

type SaleResult struct {
	SaleID int64 `json:"sale_id"`
	Folio  int   `json:"folio"`
}

type Sale struct {
	ID            int64            `json:"id"`
	Folio         int              `json:"folio"`
	CreatedAt     time.Time        `json:"created_at"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	EmployeeID    int64            `json:"employee_id"`
	Customer      CustomerSnapshot `json:"customer"`
	Items         []SaleLineItem   `json:"items"`
}

type SaleLineItem struct {
	ID                int64           `json:"id"`
	SaleID            int64           `json:"sale_id"`
	OriginalProductID int64           `json:"original_product_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Weight            decimal.Decimal `json:"weight"`
	Purity            string          `json:"purity"`
	Category          string          `json:"category"`
	SalePrice         decimal.Decimal `json:"sale_price"`
}

type LayawayRequest struct {
	EmployeeID     int64            `json:"-"`
	Items          []CartItem       `json:"items"`
	TotalValue     decimal.Decimal  `json:"total_value"`
	InitialPayment decimal.Decimal  `json:"initial_payment"`
	PaymentMethod  string           `json:"payment_method"`
	Customer       CustomerSnapshot `json:"customer"`
}

type LayawayResult struct {
	LayawayID int64 `json:"layaway_id"`
	Folio     int   `json:"folio"`
}

type Layaway struct {
	ID         int64             `json:"id"`
	Folio      int               `json:"folio"`
	StartedAt  time.Time         `json:"started_at"`
	EmployeeID int64             `json:"employee_id"`
	Customer   CustomerSnapshot  `json:"customer"`
	TotalValue decimal.Decimal   `json:"total_value"`
	TotalPaid  decimal.Decimal   `json:"total_paid"`
	Pending    decimal.Decimal   `json:"pending"`
	Status     string            `json:"status"`
	Items      []LayawayLineItem `json:"items,omitempty"`
	Payments   []Payment         `json:"payments,omitempty"`
}

type LayawayLineItem struct {
	ID                int64           `json:"id"`
	LayawayID         int64           `json:"layaway_id"`
	OriginalProductID int64           `json:"original_product_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Weight            decimal.Decimal `json:"weight"`
	Purity            string          `json:"purity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

type PaymentRequest struct {
	LayawayID     int64           `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	EmployeeID    int64           `json:"-"`
}

type Payment struct {
	ID            int64           `json:"id"`
	LayawayID     int64           `json:"layaway_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	EmployeeID    int64           `json:"employee_id"`
}

type CartQuoteRequest struct {
	ProductIDs      []int64         `json:"product_ids"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type QuoteLine struct {
	ProductID      int64           `json:"product_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Weight         decimal.Decimal `json:"weight"`
	Purity         string          `json:"purity"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
}

type CartQuote struct {
	Lines           []QuoteLine     `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
}

// Catalog listing order.
const (
	ProductSortName     = "name"
	ProductSortCategory = "category"
)

// ProductFilter narrows a catalog listing. Query matches name, SKU or
// category without regard to case.
type ProductFilter struct {
	Query string
	Sort  string
}

type EmployeeTotal struct {
	EmployeeName string          `json:"employee_name"`
	Total        decimal.Decimal `json:"total"`
}

type PaymentMethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Sales         int64           `json:"sales"`
	Total         decimal.Decimal `json:"total"`
}

type ItemizedSale struct {
	Folio        int             `json:"folio"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Weight       decimal.Decimal `json:"weight"`
	Price        decimal.Decimal `json:"price"`
	EmployeeName string          `json:"employee_name"`
}

type SaleSummary struct {
	ID            int64           `json:"id"`
	Folio         int             `json:"folio"`
	CreatedAt     time.Time       `json:"created_at"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	EmployeeName  string          `json:"employee_name"`
}

// CashCut is the end-of-day reconciliation ("corte de caja").
type CashCut struct {
	Date            string               `json:"date"`
	TotalSales      decimal.Decimal      `json:"total_sales"`
	SalesCount      int64                `json:"sales_count"`
	ByEmployee      []EmployeeTotal      `json:"by_employee"`
	ByPaymentMethod []PaymentMethodTotal `json:"by_payment_method"`
	Itemized        []ItemizedSale       `json:"itemized"`
	LayawayPayments decimal.Decimal      `json:"layaway_payments"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	EmployeeID  int64  `json:"employee_id"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	EmployeeID int64
	Name       string
	Role       string
}

type AuditLog struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Actor      string    `json:"actor"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}
