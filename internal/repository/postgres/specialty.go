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

type specialtyRepository struct {
	baseRepository
	link baseRepository
}

func NewSpecialtyRepository(db *sqlx.DB, m *schema.Mapping, mt *metrics.Metrics) repository.SpecialtyRepository {
	return &specialtyRepository{
		baseRepository: newBaseRepository(db, m.Table(schema.TableSpecialties), mt),
		link:           newBaseRepository(db, m.Table(schema.TableSpecialtyLink), mt),
	}
}

func (r *specialtyRepository) selectQuery() (string, string, error) {
	code, err := r.mustCol("s", schema.FieldCode)
	if err != nil {
		return "", "", err
	}
	name, err := r.mustCol("s", schema.FieldName)
	if err != nil {
		return "", "", err
	}
	code = "CAST(" + code + " AS TEXT)"
	query := fmt.Sprintf(`SELECT %s AS codigo, %s AS nombre, %s FROM %s`,
		code, name, r.textOrNull("s", schema.FieldCUPS, "cups"), r.from("s"))
	return query, code, nil
}

func (r *specialtyRepository) List(ctx context.Context) ([]*model.Specialty, error) {
	query, code, err := r.selectQuery()
	if err != nil {
		return nil, err
	}
	query += " ORDER BY " + code

	var specialties []*model.Specialty
	if err := r.selectIn(ctx, "specialties.list", &specialties, query); err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *specialtyRepository) FindByCodes(ctx context.Context, codes []string) ([]*model.Specialty, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	query, code, err := r.selectQuery()
	if err != nil {
		return nil, err
	}
	query += " WHERE " + code + " IN (?)"

	var specialties []*model.Specialty
	if err := r.selectIn(ctx, "specialties.by_code", &specialties, query, codes); err != nil {
		return nil, fmt.Errorf("failed to get specialties: %w", err)
	}
	return specialties, nil
}

func (r *specialtyRepository) PractitionerCodes(ctx context.Context, specialtyCodes []string) ([]string, error) {
	if len(specialtyCodes) == 0 {
		return nil, nil
	}
	emp, err := r.link.mustCol("l", schema.FieldPractitionerID)
	if err != nil {
		return nil, err
	}
	spec, err := r.link.mustCol("l", schema.FieldSpecialtyCode)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT DISTINCT CAST(%s AS TEXT) FROM %s WHERE CAST(%s AS TEXT) IN (?) AND %s IS NOT NULL`,
		emp, r.link.from("l"), spec, emp)

	var codes []string
	if err := r.link.selectIn(ctx, "specialties.practitioners", &codes, query, specialtyCodes); err != nil {
		return nil, fmt.Errorf("failed to get specialty practitioners: %w", err)
	}
	return codes, nil
}
