package sqlstore

import (
	"context"
	"fmt"
)

const (
	folioSales    = "sales"
	folioLayaways = "layaways"
)

// Migrate creates the tables and seeds the folio counters. Safe to run on
// every start.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s schema: %w", s.dialect.Name, err)
		}
	}

	// Counters start from the most recent folio so a database created before
	// the counter table keeps its numbering.
	seeds := []struct {
		name  string
		table string
	}{
		{folioSales, "sales"},
		{folioLayaways, "layaways"},
	}
	for _, seed := range seeds {
		_, err := s.db.ExecContext(ctx, s.q(`
			INSERT INTO folio_counters (name, last_folio)
			SELECT ?, COALESCE((SELECT folio FROM `+seed.table+` ORDER BY id DESC LIMIT 1), 0)
			WHERE true
			ON CONFLICT (name) DO NOTHING
		`), seed.name)
		if err != nil {
			return fmt.Errorf("seed folio counter %s: %w", seed.name, err)
		}
	}
	return nil
}
