package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"joyeria/backend/internal/domain"
)

var (
	salesCSVHeader     = []string{"Folio", "Clave", "Producto", "Peso", "Precio", "Empleado"}
	inventoryCSVHeader = []string{"ID", "Clave", "Nombre", "Peso", "Kilataje", "Categoría", "Cantidad"}
)

func (s *Service) TotalSalesToday(ctx context.Context) (decimal.Decimal, error) {
	from, to, _ := s.dayRange("")
	total, _, err := s.repo.TotalSales(ctx, from, to)
	return total, err
}

func (s *Service) SalesByEmployeeToday(ctx context.Context) ([]domain.EmployeeTotal, error) {
	from, to, _ := s.dayRange("")
	return s.repo.SalesByEmployee(ctx, from, to)
}

func (s *Service) ItemizedSalesToday(ctx context.Context) ([]domain.ItemizedSale, error) {
	from, to, _ := s.dayRange("")
	return s.repo.ItemizedSales(ctx, from, to)
}

func (s *Service) SalesToday(ctx context.Context) ([]domain.SaleSummary, error) {
	from, to, _ := s.dayRange("")
	return s.repo.ListSales(ctx, from, to)
}

func (s *Service) LayawayPaymentsToday(ctx context.Context) (decimal.Decimal, error) {
	from, to, _ := s.dayRange("")
	return s.repo.TotalLayawayPayments(ctx, from, to)
}

// CashCut gathers the end-of-day figures for date (YYYY-MM-DD, today when empty).
func (s *Service) CashCut(ctx context.Context, date string) (domain.CashCut, error) {
	from, to, err := s.dayRange(date)
	if err != nil {
		return domain.CashCut{}, err
	}

	cut := domain.CashCut{Date: from.Format("2006-01-02")}
	if cut.TotalSales, cut.SalesCount, err = s.repo.TotalSales(ctx, from, to); err != nil {
		return domain.CashCut{}, err
	}
	if cut.ByEmployee, err = s.repo.SalesByEmployee(ctx, from, to); err != nil {
		return domain.CashCut{}, err
	}
	if cut.ByPaymentMethod, err = s.repo.SalesByPaymentMethod(ctx, from, to); err != nil {
		return domain.CashCut{}, err
	}
	if cut.Itemized, err = s.repo.ItemizedSales(ctx, from, to); err != nil {
		return domain.CashCut{}, err
	}
	if cut.LayawayPayments, err = s.repo.TotalLayawayPayments(ctx, from, to); err != nil {
		return domain.CashCut{}, err
	}
	return cut, nil
}

// ExportSalesCSV returns the itemized sales of the day as CSV rows, header first.
func (s *Service) ExportSalesCSV(ctx context.Context, date string) ([][]string, error) {
	from, to, err := s.dayRange(date)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ItemizedSales(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, salesCSVHeader)
	for _, it := range items {
		rows = append(rows, []string{
			strconv.Itoa(it.Folio),
			it.SKU,
			it.Name,
			it.Weight.String(),
			it.Price.StringFixed(2),
			it.EmployeeName,
		})
	}
	return rows, nil
}

// ExportInventoryCSV returns the full current catalog as CSV rows, header first.
func (s *Service) ExportInventoryCSV(ctx context.Context) ([][]string, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(products)+1)
	rows = append(rows, inventoryCSVHeader)
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.SKU,
			p.Name,
			p.Weight.String(),
			p.Purity,
			p.Category,
			strconv.Itoa(p.Quantity),
		})
	}
	return rows, nil
}

func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
