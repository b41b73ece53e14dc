package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (domain.Employee, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Employee{}, err
	}
	return s.createEmployee(ctx, req)
}

func (s *Service) createEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (domain.Employee, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return domain.Employee{}, invalid("name must be at least 2 characters")
	}
	if len(req.Password) < 6 {
		return domain.Employee{}, invalid("password must be at least 6 characters")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = RoleCashier
	}
	if role != RoleAdmin && role != RoleCashier {
		return domain.Employee{}, invalid("unknown role %q", req.Role)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.CreateEmployee(ctx, domain.Employee{
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.Employee{}, err
	}

	s.logAudit(ctx, "employee_create", "employee", created.Name, "role="+created.Role)
	return *created, nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListEmployees(ctx)
}

// Authenticate checks a name/password pair. Rows still holding a plain-text
// password from an older database are accepted once and rehashed.
func (s *Service) Authenticate(ctx context.Context, name string, password string) (domain.Employee, error) {
	employee, err := s.repo.GetEmployeeByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Employee{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Employee{}, err
	}
	if strings.TrimSpace(password) == "" {
		return domain.Employee{}, ErrInvalidCredentials
	}

	if isPasswordHash(employee.PasswordHash) {
		if !verifyPassword(employee.PasswordHash, password) {
			return domain.Employee{}, ErrInvalidCredentials
		}
	} else {
		if employee.PasswordHash != password {
			return domain.Employee{}, ErrInvalidCredentials
		}
		if hash, err := hashPassword(password); err == nil {
			if err := s.repo.UpdateEmployeePassword(ctx, employee.ID, hash); err != nil {
				log.Printf("[service] WARN: failed to rehash legacy password employee=%d: %v", employee.ID, err)
			}
		}
	}

	if !employee.Active {
		return domain.Employee{}, ErrInactiveAccount
	}
	return *employee, nil
}

// EnsureBootstrapAdmin creates the first admin account when no employee exists.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, name string, password string) error {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return err
	}
	if len(employees) > 0 {
		return nil
	}
	if strings.TrimSpace(name) == "" || password == "" {
		log.Printf("[service] WARN: no employees exist and no bootstrap admin is configured")
		return nil
	}

	created, err := s.createEmployee(ctx, domain.EmployeeCreateRequest{Name: name, Password: password, Role: RoleAdmin})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.Printf("[service] created bootstrap admin %q", created.Name)
	return nil
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
