package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/pricing"
	"joyeria/backend/internal/store"
	"joyeria/backend/internal/xid"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

var (
	ErrForbidden          = errors.New("admin role required")
	ErrInsufficientStock  = errors.New("cart asks for more units than are on hand")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo   store.Repository
	pricer *pricing.Engine
	now    func() time.Time

	// stockMu serializes the cart check with the write that consumes stock.
	stockMu sync.Mutex
}

func New(repo store.Repository, pricer *pricing.Engine) *Service {
	if pricer == nil {
		pricer = pricing.NewEngine(repo, nil, 0)
	}

	return &Service{
		repo:   repo,
		pricer: pricer,
		now:    time.Now,
	}
}

func (s *Service) requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// employeeFor prefers an explicit id and falls back to the acting employee.
func employeeFor(ctx context.Context, id int64) int64 {
	if id > 0 {
		return id
	}
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.EmployeeID
	}
	return 0
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actorName := "system"
	if actor, ok := ActorFromContext(ctx); ok && actor.Name != "" {
		actorName = actor.Name
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:         xid.New("audit"),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actorName,
		Detail:     detail,
		CreatedAt:  s.now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	from, to, err := s.dayRange(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

// dayRange returns the local calendar day [00:00, next 00:00) for date
// (YYYY-MM-DD), or for today when date is empty.
func (s *Service) dayRange(date string) (time.Time, time.Time, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := s.now().In(time.Local)
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	} else {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrInvalidInput)
		}
		day = parsed
	}
	return day, day.AddDate(0, 0, 1), nil
}

func normalizePaymentMethod(method string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "efectivo", "cash":
		return domain.PaymentCash, true
	case "tarjeta", "card":
		return domain.PaymentCard, true
	case "transferencia", "transfer":
		return domain.PaymentTransfer, true
	default:
		return "", false
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{store.ErrInvalidInput}, args...)...)
}
