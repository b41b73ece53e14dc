package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/service"
	"joyeria/backend/internal/store"
	"joyeria/backend/internal/xid"
)

const (
	actorKey     = "actor"
	requestIDKey = "request_id"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func (a *API) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), a.withRequestContext())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  a.origins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/healthz", a.handleHealth)

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", a.handleLogin)

	authed := v1.Group("")
	authed.Use(a.requireAuth())
	{
		authed.GET("/products", a.handleListProducts)
		authed.GET("/products/sku/:sku", a.handleFindProduct)
		authed.POST("/products/sku-suggestion", a.handleSKUSuggestion)

		authed.GET("/rates", a.handleGetRates)
		authed.POST("/cart/quote", a.handleQuoteCart)

		authed.POST("/sales", a.handleRecordSale)
		authed.GET("/sales/:id", a.handleGetSale)

		authed.POST("/layaways", a.handleRecordLayaway)
		authed.GET("/layaways", a.handleListLayaways)
		authed.GET("/layaways/:id", a.handleGetLayaway)
		authed.POST("/layaways/:id/payments", a.handleLayawayPayment)

		authed.GET("/reports/today", a.handleTodayReport)
	}

	admin := v1.Group("")
	admin.Use(a.requireAuth(service.RoleAdmin))
	{
		admin.POST("/products", a.handleCreateProduct)
		admin.POST("/products/bulk", a.handleBulkCreateProducts)
		admin.PUT("/products/:id", a.handleUpdateProduct)
		admin.DELETE("/products/:id", a.handleDeleteProduct)

		admin.PUT("/rates", a.handleSetRates)
		admin.POST("/layaways/:id/cancel", a.handleCancelLayaway)

		admin.GET("/reports/cash-cut", a.handleCashCut)
		admin.GET("/exports/sales.csv", a.handleExportSales)
		admin.GET("/exports/inventory.csv", a.handleExportInventory)

		admin.GET("/employees", a.handleListEmployees)
		admin.POST("/employees", a.handleCreateEmployee)
		admin.GET("/audit-logs", a.handleAuditLogs)
	}

	return r
}

func (a *API) origins() []string {
	origins := make([]string, 0, 1)
	for _, origin := range strings.Split(a.allowedOrigin, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = append(origins, "http://127.0.0.1:3000")
	}
	return origins
}

func (a *API) withRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" || len(requestID) > 64 {
			requestID = xid.New("req")
		}
		c.Set(requestIDKey, requestID)

		c.Header("X-Request-ID", requestID)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
		}

		startedAt := time.Now()
		c.Next()
		log.Printf("[httpapi] %s %s %d %s id=%s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(startedAt), requestID)
	}
}

func (a *API) requireAuth(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			abortWithError(c, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			abortWithError(c, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(c *gin.Context) {
	if !a.loginLimiter.Allow(c.ClientIP()) {
		writeError(c, http.StatusTooManyRequests, errors.New("too many login attempts, try again later"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrInactiveAccount) {
			writeError(c, http.StatusUnauthorized, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// statusFor maps service and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, store.ErrEmptyCart),
		errors.Is(err, store.ErrInvalidAmount),
		errors.Is(err, store.ErrPayInFull),
		errors.Is(err, store.ErrInvalidRate):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey),
		errors.Is(err, store.ErrLayawayClosed),
		errors.Is(err, store.ErrOverpayment),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(c *gin.Context, dest any) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeServiceError(c *gin.Context, err error) {
	writeError(c, statusFor(err), err)
}

func writeError(c *gin.Context, status int, err error) {
	// 5xx responses carry a generic message; the cause is only logged.
	msg := err.Error()
	if status >= 500 {
		log.Printf("[httpapi] internal error (status %d) id=%s: %v", status, c.GetString(requestIDKey), err)
		msg = "internal server error"
	}
	writeJSON(c, status, gin.H{
		"error": msg,
	})
}

func abortWithError(c *gin.Context, status int, err error) {
	writeError(c, status, err)
	c.Abort()
}

func writeJSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
