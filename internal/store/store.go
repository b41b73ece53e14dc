package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrPayInFull     = errors.New("initial payment covers the total; record a sale instead")
	ErrOverpayment   = errors.New("payment exceeds pending balance")
	ErrLayawayClosed = errors.New("layaway is not pending")
	ErrInvalidRate   = errors.New("rates must not be negative")
)

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	CreateProducts(ctx context.Context, products []domain.Product) ([]domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)

	GetRates(ctx context.Context) (domain.PriceRates, error)
	SetRates(ctx context.Context, rates domain.PriceRates) error

	RecordSale(ctx context.Context, req domain.SaleRequest, at time.Time) (domain.SaleResult, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	RecordLayaway(ctx context.Context, req domain.LayawayRequest, at time.Time) (domain.LayawayResult, error)
	AddLayawayPayment(ctx context.Context, req domain.PaymentRequest, at time.Time) (*domain.Layaway, error)
	CancelLayaway(ctx context.Context, id int64) (*domain.Layaway, error)
	GetLayaway(ctx context.Context, id int64) (*domain.Layaway, error)
	ListLayaways(ctx context.Context, status string) ([]domain.Layaway, error)

	TotalSales(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, int64, error)
	SalesByEmployee(ctx context.Context, from time.Time, to time.Time) ([]domain.EmployeeTotal, error)
	SalesByPaymentMethod(ctx context.Context, from time.Time, to time.Time) ([]domain.PaymentMethodTotal, error)
	ItemizedSales(ctx context.Context, from time.Time, to time.Time) ([]domain.ItemizedSale, error)
	ListSales(ctx context.Context, from time.Time, to time.Time) ([]domain.SaleSummary, error)
	TotalLayawayPayments(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, error)

	CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	GetEmployeeByName(ctx context.Context, name string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	UpdateEmployeePassword(ctx context.Context, id int64, passwordHash string) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
}
