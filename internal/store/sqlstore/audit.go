package sqlstore

import (
	"context"
	"time"

	"joyeria/backend/internal/domain"
	"joyeria/backend/internal/store"
)

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" || entry.Action == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO audit_logs (id, action, entity_type, entity_id, actor, detail, created_at)
		VALUES (?,?,?,?,?,?,?)
	`), entry.ID, entry.Action, entry.EntityType, entry.EntityID, entry.Actor, entry.Detail, utc(entry.CreatedAt))
	if err != nil && s.isUniqueViolation(err) {
		return store.ErrDuplicateKey
	}
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, action, entity_type, entity_id, actor, detail, created_at
		FROM audit_logs
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at DESC
		LIMIT ?
	`), from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Actor, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
