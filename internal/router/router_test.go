package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/cupos-admin/internal/cache"
	"github.com/jwalitptl/cupos-admin/internal/export"
	catalogHandler "github.com/jwalitptl/cupos-admin/internal/handler/catalog"
	cupoHandler "github.com/jwalitptl/cupos-admin/internal/handler/cupo"
	"github.com/jwalitptl/cupos-admin/internal/handler/health"
	"github.com/jwalitptl/cupos-admin/internal/handler/prometheus"
	reportHandler "github.com/jwalitptl/cupos-admin/internal/handler/report"
	"github.com/jwalitptl/cupos-admin/internal/middleware"
	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository/memory"
	"github.com/jwalitptl/cupos-admin/internal/service/catalog"
	"github.com/jwalitptl/cupos-admin/internal/service/cupo"
	"github.com/jwalitptl/cupos-admin/internal/service/facet"
	"github.com/jwalitptl/cupos-admin/internal/service/report"
	"github.com/jwalitptl/cupos-admin/internal/service/retrieval"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type testResponse struct {
	Code   int
	Header http.Header
	Body   []byte
	JSON   map[string]interface{}
}

func (r testResponse) Error() string {
	s, _ := r.JSON["error"].(string)
	return s
}

func (r testResponse) List(key string) []interface{} {
	l, _ := r.JSON[key].([]interface{})
	return l
}

func strPtr(s string) *string { return &s }

func fixture() *memory.Store {
	s := memory.NewStore()
	s.Patients = []*model.Patient{
		{ID: 1, InsurerCode: strPtr("EPS01"), PrimerNombre: strPtr("Ana"), PrimerApellido: strPtr("Gómez")},
		{ID: 2, InsurerCode: strPtr("EPS02"), PrimerNombre: strPtr("Luis")},
	}
	s.Doctors = []*memory.Doctor{
		{Practitioner: model.Practitioner{Code: "M1", Name: strPtr("Dr. Uno")}, Profile: 2, Center: 900018045},
		{Practitioner: model.Practitioner{Code: "M2", Name: strPtr("Dra. Dos")}, Profile: 2, Center: 900018045},
	}
	s.Specialties = []*model.Specialty{
		{Code: "001", Name: strPtr("001 - MEDICINA GENERAL"), CUPS: strPtr("890201")},
	}
	s.Links = map[string][]string{"001": {"M2"}}
	s.Insurers = []*model.Insurer{{Code: "EPS01", Name: strPtr("Salud Uno")}, {Code: "EPS02"}}

	slot := func(id int64, d int, hora, patient, doctor, estado string) *model.Cupo {
		return &model.Cupo{
			ID:              id,
			Fecha:           time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
			Hora:            strPtr(hora),
			PatientRef:      strPtr(patient),
			PractitionerRef: strPtr(doctor),
			Estado:          strPtr(estado),
			ProcedureCode:   strPtr("890201"),
		}
	}
	s.Cupos = []*model.Cupo{
		slot(1, 5, "08:00", "1", "M1", "Sin asignar"),
		slot(2, 5, "09:00", "2", "M2", "Atendida"),
		slot(3, 6, "08:00", "1", "M1", "Sin asignar"),
		slot(4, 7, "10:00", "2", "M2", "Asignada"),
	}
	return s
}

func setup(t *testing.T, s *memory.Store, db health.Pinger) *gin.Engine {
	t.Helper()
	reg := promclient.NewRegistry()
	m := metrics.NewMetrics(reg, "test")

	cupos, patients, practitioners, specialties, insurers := s.Repositories()
	retriever := retrieval.NewRetriever(cupos, patients, practitioners, facet.NewTranslator(specialties, nil), m, retrieval.Options{})

	r := NewRouter(
		health.NewHandler(db),
		prometheus.New(reg),
		RouterConfig{Mode: gin.TestMode, CORSConfig: middleware.DefaultCORSConfig()},
		catalogHandler.NewHandler(catalog.NewService(specialties, practitioners, insurers, cache.NopStore{}, m, catalog.Options{DoctorProfile: 2, Center: 900018045})),
		cupoHandler.NewHandler(cupo.NewService(cupos, retriever, m)),
		reportHandler.NewHandler(report.NewService(retriever, 0, m)),
	)
	r.Setup()
	return r.Engine()
}

func makeRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}) testResponse {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	resp := testResponse{Code: w.Code, Header: w.Header(), Body: w.Body.Bytes()}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(resp.Body, &resp.JSON))
	}
	return resp
}

func TestCatalogRoutes(t *testing.T) {
	engine := setup(t, fixture(), pinger{})

	resp := makeRequest(t, engine, http.MethodGet, "/api/catalog/eps", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"value": "EPS02", "label": "EPS02"},
		map[string]interface{}{"value": "EPS01", "label": "Salud Uno"},
	}, resp.List("options"))

	resp = makeRequest(t, engine, http.MethodGet, "/api/catalog/especialidades", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "MEDICINA GENERAL", resp.List("options")[0].(map[string]interface{})["label"])

	resp = makeRequest(t, engine, http.MethodGet, "/api/catalog/medicos", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.List("options"), 2)

	resp = makeRequest(t, engine, http.MethodGet, "/api/catalog/medicos?especialidad[]=001", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.List("options"), 1)

	resp = makeRequest(t, engine, http.MethodPost, "/api/catalog/medicos", map[string]interface{}{"especialidades": "001"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, resp.List("options"), 1)
	assert.Equal(t, "M2", resp.List("options")[0].(map[string]interface{})["value"])
}

func TestCupoListAndDeleteFlow(t *testing.T) {
	s := fixture()
	engine := setup(t, s, pinger{})

	resp := makeRequest(t, engine, http.MethodPost, "/api/cupos/list", map[string]interface{}{
		"desde": "2024-01-01", "hasta": "2024-01-31", "estados": []string{"SIN_ASIGNAR"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	rows := resp.List("rows")
	require.Len(t, rows, 2)
	assert.Equal(t, float64(1), rows[0].(map[string]interface{})["cita_id"])
	assert.Equal(t, "Ana Gómez", rows[0].(map[string]interface{})["paciente"])

	resp = makeRequest(t, engine, http.MethodPost, "/api/cupos/delete", map[string]interface{}{"ids": []int{1, 2, 3}})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Error(), "2")
	assert.Len(t, s.Cupos, 4)

	resp = makeRequest(t, engine, http.MethodPost, "/api/cupos/delete", map[string]interface{}{"ids": "1,3"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, resp.JSON["ok"])
	assert.Equal(t, float64(2), resp.JSON["deleted"])
	assert.Len(t, s.Cupos, 2)

	resp = makeRequest(t, engine, http.MethodPost, "/api/cupos/delete", `{"ids":[]}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "ids is required", resp.Error())
}

func TestCupoListReturnsEveryMatch(t *testing.T) {
	s := fixture()
	s.Cupos = nil
	for i := 0; i < model.DefaultLimit+1; i++ {
		s.Cupos = append(s.Cupos, &model.Cupo{
			ID:              int64(i + 1),
			Fecha:           time.Date(2024, 3, 1+i%28, 0, 0, 0, 0, time.UTC),
			Hora:            strPtr("08:00"),
			PatientRef:      strPtr("1"),
			PractitionerRef: strPtr("M1"),
			Estado:          strPtr("Sin asignar"),
		})
	}
	engine := setup(t, s, pinger{})

	resp := makeRequest(t, engine, http.MethodPost, "/api/cupos/list", map[string]interface{}{
		"desde": "2024-03-01", "hasta": "2024-03-31",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.List("rows"), model.DefaultLimit+1)

	resp = makeRequest(t, engine, http.MethodPost, "/api/cupos/list", map[string]interface{}{
		"desde": "2024-03-01", "hasta": "2024-03-31", "limit": 10,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.List("rows"), 10)
}

func TestReportRoutes(t *testing.T) {
	engine := setup(t, fixture(), pinger{})

	resp := makeRequest(t, engine, http.MethodPost, "/api/reportes/data", map[string]interface{}{
		"desde": "2024-01-01", "hasta": "2024-01-31", "eps": "EPS02",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	rows := resp.List("rows")
	require.Len(t, rows, 2)
	assert.Equal(t, float64(4), rows[0].(map[string]interface{})["cita_id"])

	resp = makeRequest(t, engine, http.MethodPost, "/api/reportes/data", map[string]interface{}{"hasta": "2024-01-31"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "desde is required", resp.Error())

	resp = makeRequest(t, engine, http.MethodPost, "/api/reportes/data", `{"desde":`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Error(), "invalid JSON body")

	resp = makeRequest(t, engine, http.MethodGet, "/api/reportes/export?desde=2024-01-01&hasta=2024-01-31&especialidades=001", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reporte_2024-01-01_a_2024-01-31.xlsx"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "4", resp.Header.Get("X-Export-Rows"))
	assert.NotEmpty(t, resp.Body)

	resp = makeRequest(t, engine, http.MethodGet, "/api/reportes/export?hasta=2024-01-31", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMissingProcedureColumnIsServerError(t *testing.T) {
	s := fixture()
	s.NoProcedure = true
	engine := setup(t, s, pinger{})

	resp := makeRequest(t, engine, http.MethodPost, "/api/reportes/data", map[string]interface{}{
		"desde": "2024-01-01", "hasta": "2024-01-31", "especialidades": []string{"001"},
	})
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Error(), "not found in table")
}

func TestMethodNotAllowed(t *testing.T) {
	engine := setup(t, fixture(), pinger{})

	resp := makeRequest(t, engine, http.MethodGet, "/api/cupos/list", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	assert.Equal(t, "method not allowed", resp.Error())

	resp = makeRequest(t, engine, http.MethodPost, "/api/catalog/eps", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	engine := setup(t, fixture(), pinger{})

	resp := makeRequest(t, engine, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderXRequestID))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp = makeRequest(t, engine, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = makeRequest(t, engine, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Body), "http_requests_total")

	down := setup(t, fixture(), pinger{err: errors.New("connection refused")})
	resp = makeRequest(t, down, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "DOWN", resp.JSON["status"])
}
