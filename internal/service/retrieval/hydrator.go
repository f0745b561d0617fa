package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
)

// Hydrator resolves patient and practitioner references for one request.
// Lookups are batched over distinct references and remembered, so each
// reference is fetched at most once per request.
type Hydrator struct {
	patients      repository.PatientRepository
	practitioners repository.PractitionerRepository
	chunk         int

	byID      map[int64]*model.Patient
	byDoc     map[string]*model.Patient
	triedIDs  map[int64]struct{}
	triedDocs map[string]struct{}

	doctors      map[string]*model.Practitioner
	triedDoctors map[string]struct{}
}

// NewHydrator returns an empty hydrator. chunk bounds the size of each
// IN list sent to the database.
func NewHydrator(patients repository.PatientRepository, practitioners repository.PractitionerRepository, chunk int) *Hydrator {
	if chunk <= 0 {
		chunk = 1000
	}
	return &Hydrator{
		patients:      patients,
		practitioners: practitioners,
		chunk:         chunk,
		byID:          make(map[int64]*model.Patient),
		byDoc:         make(map[string]*model.Patient),
		triedIDs:      make(map[int64]struct{}),
		triedDocs:     make(map[string]struct{}),
		doctors:       make(map[string]*model.Practitioner),
		triedDoctors:  make(map[string]struct{}),
	}
}

func ref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// LoadPatients fetches the patients referenced by cupos. A reference is
// tried as a numeric id first and, when that finds nothing, as a document.
func (h *Hydrator) LoadPatients(ctx context.Context, cupos []*model.Cupo) error {
	var ids []int64
	seenID := make(map[int64]struct{})
	for _, c := range cupos {
		id, err := strconv.ParseInt(ref(c.PatientRef), 10, 64)
		if err != nil {
			continue
		}
		if _, ok := h.triedIDs[id]; ok {
			continue
		}
		if _, ok := seenID[id]; ok {
			continue
		}
		seenID[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, part := range chunks(ids, h.chunk) {
		found, err := h.patients.FindByIDs(ctx, part)
		if err != nil {
			return fmt.Errorf("failed to load patients: %w", err)
		}
		for _, p := range found {
			h.byID[p.ID] = p
		}
		for _, id := range part {
			h.triedIDs[id] = struct{}{}
		}
	}

	var docs []string
	seenDoc := make(map[string]struct{})
	for _, c := range cupos {
		r := ref(c.PatientRef)
		if r == "" || h.lookupID(r) != nil {
			continue
		}
		if _, ok := h.triedDocs[r]; ok {
			continue
		}
		if _, ok := seenDoc[r]; ok {
			continue
		}
		seenDoc[r] = struct{}{}
		docs = append(docs, r)
	}

	for _, part := range chunks(docs, h.chunk) {
		found, err := h.patients.FindByDocuments(ctx, part)
		if err != nil {
			return fmt.Errorf("failed to load patients by document: %w", err)
		}
		for _, p := range found {
			if d := ref(p.Documento); d != "" {
				h.byDoc[d] = p
			}
		}
		for _, d := range part {
			h.triedDocs[d] = struct{}{}
		}
	}
	return nil
}

func (h *Hydrator) lookupID(r string) *model.Patient {
	id, err := strconv.ParseInt(r, 10, 64)
	if err != nil {
		return nil
	}
	return h.byID[id]
}

// Patient returns the loaded patient for a slot reference, or nil.
func (h *Hydrator) Patient(patientRef *string) *model.Patient {
	r := ref(patientRef)
	if r == "" {
		return nil
	}
	if p := h.lookupID(r); p != nil {
		return p
	}
	return h.byDoc[r]
}

// LoadPractitioners fetches the practitioners referenced by cupos.
func (h *Hydrator) LoadPractitioners(ctx context.Context, cupos []*model.Cupo) error {
	var codes []string
	seen := make(map[string]struct{})
	for _, c := range cupos {
		r := ref(c.PractitionerRef)
		if r == "" {
			continue
		}
		if _, ok := h.triedDoctors[r]; ok {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		codes = append(codes, r)
	}

	for _, part := range chunks(codes, h.chunk) {
		found, err := h.practitioners.FindByCodes(ctx, part)
		if err != nil {
			return fmt.Errorf("failed to load practitioners: %w", err)
		}
		for _, p := range found {
			h.doctors[strings.TrimSpace(p.Code)] = p
		}
		for _, c := range part {
			h.triedDoctors[c] = struct{}{}
		}
	}
	return nil
}

// Practitioner returns the loaded practitioner for a slot reference, or nil.
func (h *Hydrator) Practitioner(practitionerRef *string) *model.Practitioner {
	return h.doctors[ref(practitionerRef)]
}

// Insurer is the slot's own insurer code when present, else the patient's.
func (h *Hydrator) Insurer(c *model.Cupo) string {
	if code := ref(c.InsurerCode); code != "" {
		return code
	}
	if p := h.Patient(c.PatientRef); p != nil {
		return ref(p.InsurerCode)
	}
	return ""
}

// Row builds the response row for a slot. Unresolved references give nil names.
func (h *Hydrator) Row(c *model.Cupo) model.ReportRow {
	row := model.ReportRow{
		CitaID:    c.ID,
		Fecha:     c.Fecha.Format(model.DateLayout),
		Hora:      formatHour(c.Hora),
		IDUsuario: c.PatientRef,
		IDMedico:  c.PractitionerRef,
		Estado:    c.Estado,
		TipoCita:  c.ProcedureCode,
	}
	if cat, ok := c.Category(); ok {
		row.Categoria = cat
	}
	if p := h.Patient(c.PatientRef); p != nil {
		if name := p.DisplayName(); name != "" {
			row.Paciente = &name
		}
	}
	if eps := h.Insurer(c); eps != "" {
		row.EPS = &eps
	}
	if d := h.Practitioner(c.PractitionerRef); d != nil && d.Name != nil {
		if name := strings.TrimSpace(*d.Name); name != "" {
			row.Medico = &name
		}
	}
	return row
}

func formatHour(h *string) *string {
	s := ref(h)
	if s == "" {
		return nil
	}
	if len(s) > 5 {
		s = s[:5]
	}
	return &s
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
