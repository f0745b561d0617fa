package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

type practitionerRepository struct {
	baseRepository
}

func NewPractitionerRepository(db *sqlx.DB, m *schema.Mapping, mt *metrics.Metrics) repository.PractitionerRepository {
	return &practitionerRepository{newBaseRepository(db, m.Table(schema.TablePractitioners), mt)}
}

func (r *practitionerRepository) columns() (code, name string, err error) {
	if code, err = r.mustCol("e", schema.FieldCode); err != nil {
		return "", "", err
	}
	if name, err = r.mustCol("e", schema.FieldName); err != nil {
		return "", "", err
	}
	return "CAST(" + code + " AS TEXT)", name, nil
}

func (r *practitionerRepository) FindByCodes(ctx context.Context, codes []string) ([]*model.Practitioner, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	code, name, err := r.columns()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s AS codigo, %s AS nombre FROM %s WHERE %s IN (?)`,
		code, name, r.from("e"), code)

	var practitioners []*model.Practitioner
	if err := r.selectIn(ctx, "practitioners.by_code", &practitioners, query, codes); err != nil {
		return nil, fmt.Errorf("failed to get practitioners: %w", err)
	}
	return practitioners, nil
}

func (r *practitionerRepository) ListDoctors(ctx context.Context, f model.DoctorFilter) ([]*model.Practitioner, error) {
	code, name, err := r.columns()
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []interface{}
	)
	if c := r.col("e", schema.FieldProfile); c != "" {
		where = append(where, c+" = ?")
		args = append(args, f.Profile)
	} else {
		log.Warn().Str("table", r.table.Name).Msg("practitioner table has no profile column, not filtering by profile")
	}
	if c := r.col("e", schema.FieldCenter); c != "" {
		where = append(where, c+" = ?")
		args = append(args, f.Center)
	} else {
		log.Warn().Str("table", r.table.Name).Msg("practitioner table has no center column, not filtering by center")
	}
	if f.Codes != nil {
		if len(f.Codes) == 0 {
			return nil, nil
		}
		where = append(where, code+" IN (?)")
		args = append(args, f.Codes)
	}

	query := fmt.Sprintf(`SELECT %s AS codigo, %s AS nombre FROM %s`, code, name, r.from("e"))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s ASC, %s ASC", name, code)

	var practitioners []*model.Practitioner
	if err := r.selectIn(ctx, "practitioners.doctors", &practitioners, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return practitioners, nil
}
