package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

type insurerRepository struct {
	baseRepository
	patients baseRepository
}

func NewInsurerRepository(db *sqlx.DB, m *schema.Mapping, mt *metrics.Metrics) repository.InsurerRepository {
	return &insurerRepository{
		baseRepository: newBaseRepository(db, m.Table(schema.TableInsurers), mt),
		patients:       newBaseRepository(db, m.Table(schema.TablePatients), mt),
	}
}

// List reads the insurer table. Deployments without one get the distinct
// insurer codes found on patients, without names.
func (r *insurerRepository) List(ctx context.Context) ([]*model.Insurer, error) {
	var (
		query string
		op    string
	)
	if r.table.Exists {
		code, err := r.mustCol("i", schema.FieldCode)
		if err != nil {
			return nil, err
		}
		query = fmt.Sprintf(`SELECT CAST(%s AS TEXT) AS codigo, %s FROM %s WHERE %s IS NOT NULL`,
			code, r.textOrNull("i", schema.FieldName, "nombre"), r.from("i"), code)
		op = "insurers.list"
	} else {
		code, err := r.patients.mustCol("u", schema.FieldInsurer)
		if err != nil {
			return nil, err
		}
		query = fmt.Sprintf(`SELECT DISTINCT CAST(%s AS TEXT) AS codigo, CAST(NULL AS TEXT) AS nombre FROM %s WHERE %s IS NOT NULL`,
			code, r.patients.from("u"), code)
		op = "insurers.from_patients"
	}

	var insurers []*model.Insurer
	if err := r.selectIn(ctx, op, &insurers, query); err != nil {
		return nil, fmt.Errorf("failed to list insurers: %w", err)
	}
	return insurers, nil
}
