package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

// baseRepository binds a repository to one resolved table.
type baseRepository struct {
	db      *sqlx.DB
	table   *schema.Table
	metrics *metrics.Metrics
}

func newBaseRepository(db *sqlx.DB, table *schema.Table, m *metrics.Metrics) baseRepository {
	return baseRepository{db: db, table: table, metrics: m}
}

func quote(ident string) string {
	return pq.QuoteIdentifier(ident)
}

// from returns the quoted table name followed by alias.
func (r *baseRepository) from(alias string) string {
	return quote(r.table.Name) + " " + alias
}

// col returns alias."column" for a resolved field, or "" when absent.
func (r *baseRepository) col(alias, field string) string {
	c := r.table.Column(field)
	if c == "" {
		return ""
	}
	return alias + "." + quote(c)
}

// mustCol is col for required fields.
func (r *baseRepository) mustCol(alias, field string) (string, error) {
	c, err := r.table.Require(field)
	if err != nil {
		return "", err
	}
	return alias + "." + quote(c), nil
}

// textOrNull selects a field as text, or NULL when the column is absent.
func (r *baseRepository) textOrNull(alias, field, as string) string {
	if c := r.col(alias, field); c != "" {
		return fmt.Sprintf("CAST(%s AS TEXT) AS %s", c, as)
	}
	return "CAST(NULL AS TEXT) AS " + as
}

// selectIn expands slice arguments, rebinds placeholders and scans into dest.
func (r *baseRepository) selectIn(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := r.doSelectIn(ctx, dest, query, args...)
	r.metrics.ObserveDB(op, time.Since(start).Seconds(), err)
	return err
}

func (r *baseRepository) doSelectIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("failed to expand query: %w", err)
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...)
}

// execIn is selectIn for statements without a result set.
func (r *baseRepository) execIn(ctx context.Context, op string, query string, args ...interface{}) (int64, error) {
	start := time.Now()
	n, err := r.doExecIn(ctx, query, args...)
	r.metrics.ObserveDB(op, time.Since(start).Seconds(), err)
	return n, err
}

func (r *baseRepository) doExecIn(ctx context.Context, query string, args ...interface{}) (int64, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to expand query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
