package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

type patientRepository struct {
	baseRepository
}

func NewPatientRepository(db *sqlx.DB, m *schema.Mapping, mt *metrics.Metrics) repository.PatientRepository {
	return &patientRepository{newBaseRepository(db, m.Table(schema.TablePatients), mt)}
}

func (r *patientRepository) selectQuery(where string) (string, error) {
	idCol, err := r.mustCol("u", schema.FieldID)
	if err != nil {
		return "", err
	}
	fields := []string{
		idCol + " AS id",
		r.textOrNull("u", schema.FieldDocument, "documento"),
		r.textOrNull("u", schema.FieldInsurer, "codigo_eps"),
		r.textOrNull("u", schema.FieldFirstName, "primer_nombre"),
		r.textOrNull("u", schema.FieldSecondName, "segundo_nombre"),
		r.textOrNull("u", schema.FieldFirstSurname, "primer_apellido"),
		r.textOrNull("u", schema.FieldSecondSurname, "segundo_apellido"),
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(fields, ", "), r.from("u"), where), nil
}

func (r *patientRepository) FindByIDs(ctx context.Context, ids []int64) ([]*model.Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idCol, err := r.mustCol("u", schema.FieldID)
	if err != nil {
		return nil, err
	}
	query, err := r.selectQuery(idCol + " IN (?)")
	if err != nil {
		return nil, err
	}

	var patients []*model.Patient
	if err := r.selectIn(ctx, "patients.by_id", &patients, query, ids); err != nil {
		return nil, fmt.Errorf("failed to get patients: %w", err)
	}
	return patients, nil
}

// FindByDocuments returns no patients when the table has no document column.
func (r *patientRepository) FindByDocuments(ctx context.Context, docs []string) ([]*model.Patient, error) {
	docCol := r.col("u", schema.FieldDocument)
	if len(docs) == 0 || docCol == "" {
		return nil, nil
	}
	query, err := r.selectQuery("CAST(" + docCol + " AS TEXT) IN (?)")
	if err != nil {
		return nil, err
	}

	var patients []*model.Patient
	if err := r.selectIn(ctx, "patients.by_document", &patients, query, docs); err != nil {
		return nil, fmt.Errorf("failed to get patients by document: %w", err)
	}
	return patients, nil
}
