package httpapi

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/service"
)

func (a *API) handleListProducts(c *gin.Context) {
	products, err := a.service.ListProducts(c.Request.Context(), domain.ProductFilter{
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"products": products, "categories": domain.SuggestedCategories})
}

func (a *API) handleFindProduct(c *gin.Context) {
	product, err := a.service.FindProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, product)
}

func (a *API) handleCreateProduct(c *gin.Context) {
	var req domain.ProductRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	product, err := a.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, product)
}

func (a *API) handleBulkCreateProducts(c *gin.Context) {
	var req domain.BulkProductRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	products, err := a.service.BulkCreateProducts(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"products": products})
}

func (a *API) handleSKUSuggestion(c *gin.Context) {
	var req domain.SKUSuggestionRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	sku, err := a.service.GenerateSKU(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"sku": sku})
}

func (a *API) handleUpdateProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var req domain.ProductRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	product, err := a.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, product)
}

func (a *API) handleDeleteProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if err := a.service.DeleteProduct(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleGetRates(c *gin.Context) {
	rates, err := a.service.GetRates(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rates)
}

func (a *API) handleSetRates(c *gin.Context) {
	var req domain.PriceRates
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	rates, err := a.service.SetRates(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rates)
}

func (a *API) handleQuoteCart(c *gin.Context) {
	var req domain.CartQuoteRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	quote, err := a.service.QuoteCart(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quote)
}

func (a *API) handleRecordSale(c *gin.Context) {
	var req domain.SaleRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	req.EmployeeID = actorFrom(c).EmployeeID

	res, err := a.service.RecordSale(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, res)
}

func (a *API) handleGetSale(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	sale, err := a.service.GetSale(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sale)
}

func (a *API) handleRecordLayaway(c *gin.Context) {
	var req domain.LayawayRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	req.EmployeeID = actorFrom(c).EmployeeID

	res, err := a.service.RecordLayaway(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, res)
}

func (a *API) handleListLayaways(c *gin.Context) {
	layaways, err := a.service.ListLayaways(c.Request.Context(), strings.TrimSpace(c.Query("status")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"layaways": layaways})
}

func (a *API) handleGetLayaway(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	layaway, err := a.service.GetLayaway(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, layaway)
}

func (a *API) handleLayawayPayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var req domain.PaymentRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	req.LayawayID = id
	req.EmployeeID = actorFrom(c).EmployeeID

	layaway, err := a.service.AddLayawayPayment(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, layaway)
}

func (a *API) handleCancelLayaway(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	layaway, err := a.service.CancelLayaway(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, layaway)
}

func (a *API) handleTodayReport(c *gin.Context) {
	ctx := c.Request.Context()
	total, err := a.service.TotalSalesToday(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	byEmployee, err := a.service.SalesByEmployeeToday(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	sales, err := a.service.SalesToday(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	layawayPayments, err := a.service.LayawayPaymentsToday(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, gin.H{
		"total_sales":      total,
		"by_employee":      byEmployee,
		"sales":            sales,
		"layaway_payments": layawayPayments,
	})
}

func (a *API) handleCashCut(c *gin.Context) {
	cut, err := a.service.CashCut(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, cut)
}

func (a *API) handleExportSales(c *gin.Context) {
	date := c.Query("date")
	rows, err := a.service.ExportSalesCSV(c.Request.Context(), date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if date == "" {
		date = "hoy"
	}
	writeCSV(c, fmt.Sprintf("ventas_%s.csv", date), rows)
}

func (a *API) handleExportInventory(c *gin.Context) {
	rows, err := a.service.ExportInventoryCSV(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeCSV(c, "inventario.csv", rows)
}

func (a *API) handleListEmployees(c *gin.Context) {
	employees, err := a.service.ListEmployees(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"employees": employees})
}

func (a *API) handleCreateEmployee(c *gin.Context) {
	var req domain.EmployeeCreateRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	employee, err := a.service.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, employee)
}

func (a *API) handleAuditLogs(c *gin.Context) {
	limit := parsePositiveLimit(c.Query("limit"), 200, 1000)
	logs, err := a.service.ListAuditLogs(c.Request.Context(), c.Query("date"), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"audit_logs": logs})
}

func actorFrom(c *gin.Context) domain.Actor {
	if value, ok := c.Get(actorKey); ok {
		if actor, ok := value.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}

func writeCSV(c *gin.Context, filename string, rows [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := service.WriteCSV(c.Writer, rows); err != nil {
		log.Printf("[httpapi] write csv %s: %v", filename, err)
	}
}
