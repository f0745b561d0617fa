package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

// Repositories bundles every repository bound to one resolved mapping.
type Repositories struct {
	Cupos         repository.CupoRepository
	Patients      repository.PatientRepository
	Practitioners repository.PractitionerRepository
	Specialties   repository.SpecialtyRepository
	Insurers      repository.InsurerRepository
}

func NewRepositories(db *sqlx.DB, m *schema.Mapping, mt *metrics.Metrics) *Repositories {
	return &Repositories{
		Cupos:         NewCupoRepository(db, m, mt),
		Patients:      NewPatientRepository(db, m, mt),
		Practitioners: NewPractitionerRepository(db, m, mt),
		Specialties:   NewSpecialtyRepository(db, m, mt),
		Insurers:      NewInsurerRepository(db, m, mt),
	}
}
