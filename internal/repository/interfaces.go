package repository

import (
	"context"

	"github.com/jwalitptl/cupos-admin/internal/model"
)

// All repository interfaces in one file
type (
	// CupoRepository reads and conditionally deletes appointment slots.
	CupoRepository interface {
		Find(ctx context.Context, q model.CupoQuery) ([]*model.Cupo, error)
		Statuses(ctx context.Context, ids []int64) ([]model.CupoStatus, error)
		// DeleteUnassigned removes the given slots that are still unassigned
		// and returns how many rows were deleted.
		DeleteUnassigned(ctx context.Context, ids []int64) (int64, error)
		// FiltersInsurer reports whether the slot table carries its own insurer
		// column, so CupoQuery.InsurerCode is applied in the query.
		FiltersInsurer() bool
		// HasProcedureCode reports whether the slot table has a procedure-code column.
		HasProcedureCode() bool
	}

	PatientRepository interface {
		FindByIDs(ctx context.Context, ids []int64) ([]*model.Patient, error)
		FindByDocuments(ctx context.Context, docs []string) ([]*model.Patient, error)
	}

	PractitionerRepository interface {
		FindByCodes(ctx context.Context, codes []string) ([]*model.Practitioner, error)
		ListDoctors(ctx context.Context, f model.DoctorFilter) ([]*model.Practitioner, error)
	}

	SpecialtyRepository interface {
		List(ctx context.Context) ([]*model.Specialty, error)
		FindByCodes(ctx context.Context, codes []string) ([]*model.Specialty, error)
		// PractitionerCodes returns the distinct practitioner codes linked to
		// any of the given specialties.
		PractitionerCodes(ctx context.Context, specialtyCodes []string) ([]string, error)
	}

	InsurerRepository interface {
		List(ctx context.Context) ([]*model.Insurer, error)
	}
)
