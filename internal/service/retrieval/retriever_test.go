package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository/memory"
	"github.com/jwalitptl/cupos-admin/internal/service/facet"
	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
)

func strPtr(s string) *string { return &s }

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func cupo(id int64, fecha time.Time, hora, patient, doctor, estado, cups string) *model.Cupo {
	c := &model.Cupo{ID: id, Fecha: fecha, Estado: strPtr(estado)}
	if hora != "" {
		c.Hora = strPtr(hora)
	}
	if patient != "" {
		c.PatientRef = strPtr(patient)
	}
	if doctor != "" {
		c.PractitionerRef = strPtr(doctor)
	}
	if cups != "" {
		c.ProcedureCode = strPtr(cups)
	}
	return c
}

func fixture() *memory.Store {
	s := memory.NewStore()
	s.Patients = []*model.Patient{
		{ID: 1, Documento: strPtr("1010"), InsurerCode: strPtr("EPS01"), PrimerNombre: strPtr("Ana"), PrimerApellido: strPtr("Gómez"), SegundoApellido: strPtr("")},
		{ID: 2, Documento: strPtr("2020"), InsurerCode: strPtr("EPS02"), PrimerNombre: strPtr("Luis"), PrimerApellido: strPtr("Pérez")},
		{ID: 3, Documento: strPtr("3030"), InsurerCode: strPtr("EPS01"), PrimerNombre: strPtr("Marta")},
	}
	s.Doctors = []*memory.Doctor{
		{Practitioner: model.Practitioner{Code: "M1", Name: strPtr("Dr. Uno")}, Profile: 2, Center: 1},
		{Practitioner: model.Practitioner{Code: "M2", Name: strPtr("Dra. Dos")}, Profile: 2, Center: 1},
	}
	s.Specialties = []*model.Specialty{
		{Code: "001", Name: strPtr("MEDICINA GENERAL"), CUPS: strPtr("890201")},
		{Code: "002", Name: strPtr("ODONTOLOGIA")},
		{Code: "050", Name: strPtr("OTRA")},
	}
	s.Cupos = []*model.Cupo{
		cupo(1, day(1, 5), "08:00", "1", "M1", "Sin asignar", "890201"),
		cupo(2, day(1, 5), "09:00:00", "2", "M2", "Atendida", "890203"),
		cupo(3, day(1, 10), "07:30", "3030", "M1", "Asignada", "890201"),
		cupo(4, day(1, 15), "", "999", "M9", "Cumplida", ""),
		cupo(5, day(2, 1), "08:00", "1", "M1", "Sin asignar", "890201"),
		cupo(6, day(1, 20), "10:00", "1", "M1", "Cancelada", "890201"),
	}
	return s
}

func retrieverFor(s *memory.Store, opts Options) *Retriever {
	cupos, patients, practitioners, specialties, _ := s.Repositories()
	return NewRetriever(cupos, patients, practitioners, facet.NewTranslator(specialties, nil), nil, opts)
}

func january() model.Filters {
	return model.Filters{
		Desde:   day(1, 1),
		Hasta:   day(1, 31),
		Estados: model.AllStatusCategories,
		Limit:   model.DefaultLimit,
	}
}

func ids(rows []model.ReportRow) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.CitaID)
	}
	return out
}

func TestRetrieveDateRangeAndOrder(t *testing.T) {
	r := retrieverFor(fixture(), Options{})

	res, err := r.Retrieve(context.Background(), Request{Filters: january(), Direction: model.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(res.Rows), "slot 6 matches no category, slot 5 is out of range")

	res, err = r.Retrieve(context.Background(), Request{Filters: january(), Direction: model.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(res.Rows))

	for _, row := range res.Rows {
		fecha, err := time.Parse(model.DateLayout, row.Fecha)
		require.NoError(t, err)
		assert.False(t, fecha.Before(day(1, 1)) || fecha.After(day(1, 31)))
	}
}

func TestRetrieveStatusFilter(t *testing.T) {
	r := retrieverFor(fixture(), Options{})
	f := january()
	f.Estados = []model.StatusCategory{model.StatusSinAsignar, model.StatusAtendida}

	res, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(res.Rows))
	for _, row := range res.Rows {
		assert.Contains(t, f.Estados, row.Categoria)
	}
}

func TestRetrieveHydration(t *testing.T) {
	s := fixture()
	r := retrieverFor(s, Options{})

	res, err := r.Retrieve(context.Background(), Request{Filters: january(), Direction: model.SortAsc})
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)

	first := res.Rows[0]
	require.NotNil(t, first.Paciente)
	assert.Equal(t, "Ana Gómez", *first.Paciente)
	assert.Equal(t, "EPS01", *first.EPS)
	assert.Equal(t, "Dr. Uno", *first.Medico)
	assert.Equal(t, "1", *first.IDUsuario)
	assert.Equal(t, "08:00", *first.Hora)
	assert.Equal(t, model.StatusSinAsignar, first.Categoria)

	assert.Equal(t, "09:00", *res.Rows[1].Hora)

	byDocument := res.Rows[2]
	require.NotNil(t, byDocument.Paciente)
	assert.Equal(t, "Marta", *byDocument.Paciente, "reference resolved through the document number")

	missing := res.Rows[3]
	assert.Nil(t, missing.Paciente)
	assert.Nil(t, missing.EPS)
	assert.Nil(t, missing.Medico)
	assert.Nil(t, missing.Hora)
	assert.Equal(t, "M9", *missing.IDMedico)

	assert.Equal(t, 2, s.PatientCalls, "one lookup by id and one by document")
	assert.Equal(t, 1, s.DoctorCalls)
}

func TestRetrieveSpecialty(t *testing.T) {
	s := fixture()
	r := retrieverFor(s, Options{})

	f := january()
	f.Especialidades = []string{"001"}
	res, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(res.Rows))
	for _, row := range res.Rows {
		assert.Equal(t, "890201", *row.TipoCita)
	}

	f.Especialidades = []string{"002"}
	res, err = r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(res.Rows), "fallback table maps 002 to 890203")

	calls := s.FindCalls
	f.Especialidades = []string{"050"}
	res, err = r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Equal(t, calls, s.FindCalls, "no query when the specialty has no procedure code")
}

func TestRetrieveSpecialtyWithoutProcedureColumn(t *testing.T) {
	s := fixture()
	s.NoProcedure = true
	r := retrieverFor(s, Options{})

	f := january()
	f.Especialidades = []string{"001"}
	_, err := r.Retrieve(context.Background(), Request{Filters: f})
	assert.True(t, apperrors.Is(err, apperrors.ErrSchemaResolution))
}

func TestRetrievePractitioners(t *testing.T) {
	r := retrieverFor(fixture(), Options{})
	f := january()
	f.Medicos = []string{"M2", "M9"}

	res, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, ids(res.Rows))
}

func TestRetrieveInsurerScan(t *testing.T) {
	s := fixture()
	r := retrieverFor(s, Options{BatchSize: 2})

	f := january()
	f.EPS = "EPS01"
	res, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(res.Rows))
	assert.False(t, res.Partial)
	assert.Equal(t, 4, res.Scanned)

	f.EPS = "EPS02"
	res, err = r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(res.Rows))

	f.EPS = "EPS01"
	f.Offset, f.Limit = 1, 1
	res, err = r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(res.Rows))
}

func TestRetrieveInsurerScanCap(t *testing.T) {
	s := fixture()
	r := retrieverFor(s, Options{BatchSize: 2, ScanCap: 2})

	f := january()
	f.EPS = "EPS01"
	res, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, []int64{3}, ids(res.Rows), "matches found before the cap are returned")

	res, err = r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc, ScanCap: 10})
	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.Equal(t, []int64{3, 1}, ids(res.Rows))
}

func TestRetrieveInsurerOnSlot(t *testing.T) {
	s := fixture()
	s.SlotInsurer = true
	s.Cupos[1].InsurerCode = strPtr("EPS09")
	r := retrieverFor(s, Options{BatchSize: 2})

	f := january()
	f.EPS = "EPS09"
	res, err := r.Retrieve(context.Background(), Request{Filters: f})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(res.Rows))
	assert.Equal(t, "EPS09", *res.Rows[0].EPS, "the slot's own insurer wins over the patient's")
	assert.Equal(t, 1, s.FindCalls)
	assert.Zero(t, res.Scanned)
}

func TestRetrieveLargePageInBatches(t *testing.T) {
	s := fixture()
	r := retrieverFor(s, Options{BatchSize: 2})

	f := january()
	f.Offset, f.Limit = 1, 3
	res, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, ids(res.Rows))
	assert.Equal(t, 2, s.FindCalls)
}

func TestRetrieveIsIdempotent(t *testing.T) {
	r := retrieverFor(fixture(), Options{})
	f := january()

	first, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	second, err := r.Retrieve(context.Background(), Request{Filters: f, Direction: model.SortDesc})
	require.NoError(t, err)
	assert.Equal(t, first.Rows, second.Rows)
}
