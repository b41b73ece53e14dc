package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

func (s *Store) CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	employee.Name = strings.TrimSpace(employee.Name)
	if employee.Name == "" || employee.PasswordHash == "" || employee.Role == "" {
		return nil, store.ErrInvalidInput
	}
	employee.CreatedAt = utc(employee.CreatedAt)

	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO employees (name, password_hash, role, active, created_at)
		VALUES (?,?,?,?,?)
		RETURNING id
	`), employee.Name, employee.PasswordHash, employee.Role, employee.Active, employee.CreatedAt).Scan(&employee.ID)
	if err != nil {
		if s.isUniqueViolation(err) {
			return nil, store.ErrDuplicateKey
		}
		return nil, err
	}
	return &employee, nil
}

func (s *Store) GetEmployeeByName(ctx context.Context, name string) (*domain.Employee, error) {
	var e domain.Employee
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, name, password_hash, role, active, created_at
		FROM employees
		WHERE name = ?
	`), strings.TrimSpace(name)).Scan(&e.ID, &e.Name, &e.PasswordHash, &e.Role, &e.Active, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, password_hash, role, active, created_at
		FROM employees
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0, 8)
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.PasswordHash, &e.Role, &e.Active, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.CreatedAt = e.CreatedAt.UTC()
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) UpdateEmployeePassword(ctx context.Context, id int64, passwordHash string) error {
	if passwordHash == "" {
		return store.ErrInvalidInput
	}
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE employees SET password_hash = ? WHERE id = ?`), passwordHash, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
