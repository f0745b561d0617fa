// Package memory holds in-process repositories over plain slices. They
// mirror the SQL semantics of the postgres package and back the service
// and router tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
)

// Doctor is a practitioner together with the attributes the catalog filters on.
type Doctor struct {
	model.Practitioner
	Profile int
	Center  int64
}

// Store is the shared dataset behind the memory repositories.
type Store struct {
	mu sync.RWMutex

	Cupos         []*model.Cupo
	Patients      []*model.Patient
	Doctors       []*Doctor
	Specialties   []*model.Specialty
	Links         map[string][]string // specialty code → practitioner codes
	Insurers      []*model.Insurer
	SlotInsurer   bool // slot rows carry InsurerCode and queries filter on it
	NoProcedure   bool // slot table has no procedure-code column
	FindCalls     int
	PatientCalls  int
	DoctorCalls   int
	DeletedCupoID []int64
}

func NewStore() *Store {
	return &Store{Links: map[string][]string{}}
}

// Repositories returns one repository of each kind over s.
func (s *Store) Repositories() (repository.CupoRepository, repository.PatientRepository, repository.PractitionerRepository, repository.SpecialtyRepository, repository.InsurerRepository) {
	return &cupoRepository{s}, &patientRepository{s}, &practitionerRepository{s}, &specialtyRepository{s}, &insurerRepository{s}
}

type cupoRepository struct{ s *Store }

func NewCupoRepository(s *Store) repository.CupoRepository { return &cupoRepository{s} }

func (r *cupoRepository) FiltersInsurer() bool   { return r.s.SlotInsurer }
func (r *cupoRepository) HasProcedureCode() bool { return !r.s.NoProcedure }

func (r *cupoRepository) Find(_ context.Context, q model.CupoQuery) ([]*model.Cupo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.FindCalls++

	var out []*model.Cupo
	for _, c := range r.s.Cupos {
		if matches(c, q, r.s.SlotInsurer) {
			cp := *c
			out = append(out, &cp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Direction == model.SortDesc {
			return lessCupo(out[j], out[i])
		}
		return lessCupo(out[i], out[j])
	})

	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func matches(c *model.Cupo, q model.CupoQuery, slotInsurer bool) bool {
	if c.Fecha.Before(q.Desde) || c.Fecha.After(q.Hasta) {
		return false
	}
	if c.Hora != nil {
		h := hhmm(*c.Hora)
		if q.HoraDesde != "" && h < q.HoraDesde {
			return false
		}
		if q.HoraHasta != "" && h > q.HoraHasta {
			return false
		}
	}
	if len(q.Estados) > 0 {
		cat, ok := c.Category()
		if !ok || !containsCategory(q.Estados, cat) {
			return false
		}
	}
	if len(q.ProcedureCodes) > 0 && (c.ProcedureCode == nil || !contains(q.ProcedureCodes, *c.ProcedureCode)) {
		return false
	}
	if len(q.Practitioners) > 0 && (c.PractitionerRef == nil || !contains(q.Practitioners, *c.PractitionerRef)) {
		return false
	}
	if slotInsurer && q.InsurerCode != "" && (c.InsurerCode == nil || *c.InsurerCode != q.InsurerCode) {
		return false
	}
	return true
}

// lessCupo orders by date, time and id, with a missing time after any time.
func lessCupo(a, b *model.Cupo) bool {
	if !a.Fecha.Equal(b.Fecha) {
		return a.Fecha.Before(b.Fecha)
	}
	switch {
	case a.Hora == nil && b.Hora != nil:
		return false
	case a.Hora != nil && b.Hora == nil:
		return true
	case a.Hora != nil && b.Hora != nil && hhmm(*a.Hora) != hhmm(*b.Hora):
		return hhmm(*a.Hora) < hhmm(*b.Hora)
	}
	return a.ID < b.ID
}

func hhmm(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

func (r *cupoRepository) Statuses(_ context.Context, ids []int64) ([]model.CupoStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.CupoStatus
	for _, c := range r.s.Cupos {
		if containsID(ids, c.ID) {
			out = append(out, model.CupoStatus{ID: c.ID, Estado: c.Estado})
		}
	}
	return out, nil
}

func (r *cupoRepository) DeleteUnassigned(_ context.Context, ids []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.Cupos[:0]
	var deleted int64
	for _, c := range r.s.Cupos {
		if cat, ok := c.Category(); ok && cat == model.StatusSinAsignar && containsID(ids, c.ID) {
			deleted++
			r.s.DeletedCupoID = append(r.s.DeletedCupoID, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	r.s.Cupos = kept
	return deleted, nil
}

type patientRepository struct{ s *Store }

func NewPatientRepository(s *Store) repository.PatientRepository { return &patientRepository{s} }

func (r *patientRepository) FindByIDs(_ context.Context, ids []int64) ([]*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.PatientCalls++

	var out []*model.Patient
	for _, p := range r.s.Patients {
		if containsID(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *patientRepository) FindByDocuments(_ context.Context, docs []string) ([]*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.PatientCalls++

	var out []*model.Patient
	for _, p := range r.s.Patients {
		if p.Documento != nil && contains(docs, *p.Documento) {
			out = append(out, p)
		}
	}
	return out, nil
}

type practitionerRepository struct{ s *Store }

func NewPractitionerRepository(s *Store) repository.PractitionerRepository {
	return &practitionerRepository{s}
}

func (r *practitionerRepository) FindByCodes(_ context.Context, codes []string) ([]*model.Practitioner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.DoctorCalls++

	var out []*model.Practitioner
	for _, d := range r.s.Doctors {
		if contains(codes, d.Code) {
			p := d.Practitioner
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *practitionerRepository) ListDoctors(_ context.Context, f model.DoctorFilter) ([]*model.Practitioner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Practitioner
	for _, d := range r.s.Doctors {
		if d.Profile != f.Profile || d.Center != f.Center {
			continue
		}
		if f.Codes != nil && !contains(f.Codes, d.Code) {
			continue
		}
		p := d.Practitioner
		out = append(out, &p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := deref(out[i].Name), deref(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

type specialtyRepository struct{ s *Store }

func NewSpecialtyRepository(s *Store) repository.SpecialtyRepository { return &specialtyRepository{s} }

func (r *specialtyRepository) List(_ context.Context) ([]*model.Specialty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := append([]*model.Specialty(nil), r.s.Specialties...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *specialtyRepository) FindByCodes(_ context.Context, codes []string) ([]*model.Specialty, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Specialty
	for _, sp := range r.s.Specialties {
		if contains(codes, sp.Code) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (r *specialtyRepository) PractitionerCodes(_ context.Context, specialtyCodes []string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := map[string]struct{}{}
	var out []string
	for _, sc := range specialtyCodes {
		for _, code := range r.s.Links[sc] {
			if _, ok := seen[code]; ok || strings.TrimSpace(code) == "" {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out, nil
}

type insurerRepository struct{ s *Store }

func NewInsurerRepository(s *Store) repository.InsurerRepository { return &insurerRepository{s} }

func (r *insurerRepository) List(_ context.Context) ([]*model.Insurer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]*model.Insurer(nil), r.s.Insurers...), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsID(list []int64, v int64) bool {
	for _, id := range list {
		if id == v {
			return true
		}
	}
	return false
}

func containsCategory(list []model.StatusCategory, v model.StatusCategory) bool {
	for _, c := range list {
		if c == v {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
