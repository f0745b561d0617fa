package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ColumnCatalog lists table columns from information_schema for the
// connection's current schema.
type ColumnCatalog struct {
	db *sqlx.DB
}

func NewColumnCatalog(db *sqlx.DB) *ColumnCatalog {
	return &ColumnCatalog{db: db}
}

func (c *ColumnCatalog) Columns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`
	var cols []string
	if err := c.db.SelectContext(ctx, &cols, query, table); err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	return cols, nil
}
