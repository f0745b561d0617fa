package report

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/cupos-admin/internal/export"
	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository/memory"
	"github.com/jwalitptl/cupos-admin/internal/service/facet"
	"github.com/jwalitptl/cupos-admin/internal/service/retrieval"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

func strPtr(s string) *string { return &s }

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func newService(t *testing.T) (*Service, *metrics.Metrics) {
	t.Helper()
	s := memory.NewStore()
	s.Patients = []*model.Patient{
		{ID: 1, InsurerCode: strPtr("EPS01"), PrimerNombre: strPtr("Ana")},
		{ID: 2, InsurerCode: strPtr("EPS02"), PrimerNombre: strPtr("Luis")},
	}
	s.Specialties = []*model.Specialty{{Code: "001", CUPS: strPtr("890201")}}
	for i := 1; i <= 12; i++ {
		patient := "1"
		if i%2 == 0 {
			patient = "2"
		}
		s.Cupos = append(s.Cupos, &model.Cupo{
			ID:              int64(i),
			Fecha:           day(i),
			Hora:            strPtr("08:00"),
			PatientRef:      strPtr(patient),
			PractitionerRef: strPtr("M1"),
			Estado:          strPtr("Sin asignar"),
			ProcedureCode:   strPtr("890201"),
		})
	}

	cupos, patients, practitioners, specialties, _ := s.Repositories()
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")
	r := retrieval.NewRetriever(cupos, patients, practitioners, facet.NewTranslator(specialties, nil), m, retrieval.Options{BatchSize: 4})
	return NewService(r, 0, m), m
}

func filters() model.Filters {
	return model.Filters{
		Desde:   day(1),
		Hasta:   day(31),
		Estados: model.AllStatusCategories,
		Limit:   5,
	}
}

func sheetRows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	return rows
}

func TestDataNewestFirst(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.Data(context.Background(), filters())
	require.NoError(t, err)
	require.Len(t, res.Rows, 5)
	assert.Equal(t, int64(12), res.Rows[0].CitaID)
	assert.Equal(t, int64(8), res.Rows[4].CitaID)
}

func TestExportIgnoresPage(t *testing.T) {
	svc, m := newService(t)

	f := filters()
	f.Offset = 3
	var buf bytes.Buffer
	out, err := svc.Export(context.Background(), f, &buf)
	require.NoError(t, err)

	assert.Equal(t, "reporte_2024-01-01_a_2024-01-31.xlsx", out.Filename)
	assert.Equal(t, 12, out.Rows)
	assert.False(t, out.Partial)

	rows := sheetRows(t, &buf)
	require.Len(t, rows, 13)
	assert.Equal(t, "12", rows[1][0])
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExportRows))
}

func TestExportContainsFirstPage(t *testing.T) {
	svc, _ := newService(t)
	f := filters()
	f.EPS = "EPS02"

	page, err := svc.Data(context.Background(), f)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = svc.Export(context.Background(), f, &buf)
	require.NoError(t, err)
	rows := sheetRows(t, &buf)

	exported := map[string]bool{}
	for _, r := range rows[1:] {
		exported[r[0]] = true
	}
	for _, r := range page.Rows {
		assert.True(t, exported[itoa(r.CitaID)], "cita %d missing from export", r.CitaID)
	}
	assert.Len(t, rows, 7)
}

func TestExportUnknownSpecialtyIsHeaderOnly(t *testing.T) {
	svc, _ := newService(t)
	f := filters()
	f.Especialidades = []string{"999"}

	var buf bytes.Buffer
	out, err := svc.Export(context.Background(), f, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rows)

	rows := sheetRows(t, &buf)
	require.Len(t, rows, 1)
	assert.Equal(t, export.Headers(), rows[0])
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
