package cupo

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository/memory"
	"github.com/jwalitptl/cupos-admin/internal/service/facet"
	"github.com/jwalitptl/cupos-admin/internal/service/retrieval"
	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

func strPtr(s string) *string { return &s }

func slot(id int64, d int, hora, estado string) *model.Cupo {
	return &model.Cupo{
		ID:              id,
		Fecha:           time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC),
		Hora:            strPtr(hora),
		PatientRef:      strPtr("1"),
		PractitionerRef: strPtr("M1"),
		Estado:          strPtr(estado),
	}
}

func newService(t *testing.T, cupos ...*model.Cupo) (*Service, *memory.Store, *metrics.Metrics) {
	t.Helper()
	s := memory.NewStore()
	s.Cupos = cupos
	s.Patients = []*model.Patient{{ID: 1, PrimerNombre: strPtr("Ana")}}

	repo, patients, practitioners, specialties, _ := s.Repositories()
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")
	r := retrieval.NewRetriever(repo, patients, practitioners, facet.NewTranslator(specialties, nil), m, retrieval.Options{})
	return NewService(repo, r, m), s, m
}

func TestListOldestFirst(t *testing.T) {
	svc, _, _ := newService(t,
		slot(3, 2, "09:00", "Sin asignar"),
		slot(1, 2, "08:00", "Sin asignar"),
		slot(2, 1, "10:00", "Asignada"),
	)

	res, err := svc.List(context.Background(), model.Filters{
		Desde:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Hasta:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Estados: model.AllStatusCategories,
		Limit:   model.DefaultLimit,
	})
	require.NoError(t, err)

	var ids []int64
	for _, r := range res.Rows {
		ids = append(ids, r.CitaID)
	}
	assert.Equal(t, []int64{2, 1, 3}, ids)
	assert.Equal(t, model.StatusAsignada, res.Rows[0].Categoria)
}

func TestDeleteAllOrNothing(t *testing.T) {
	svc, store, m := newService(t,
		slot(1, 1, "08:00", "Sin asignar"),
		slot(2, 1, "09:00", "Atendida"),
		slot(3, 1, "10:00", "SIN ASIGNAR - reprogramar"),
	)

	_, err := svc.Delete(context.Background(), []int64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrIneligible))
	assert.Contains(t, err.Error(), "2")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode())

	assert.Len(t, store.Cupos, 3, "nothing is deleted when any id is ineligible")
	assert.Empty(t, store.DeletedCupoID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeleteRejects))
}

func TestDeleteMissingIDIsIneligible(t *testing.T) {
	svc, store, _ := newService(t, slot(1, 1, "08:00", "Sin asignar"))

	_, err := svc.Delete(context.Background(), []int64{1, 99})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrIneligible))
	assert.Contains(t, err.Error(), "99")
	assert.Len(t, store.Cupos, 1)
}

func TestDeleteSuccess(t *testing.T) {
	svc, store, m := newService(t,
		slot(1, 1, "08:00", "Sin asignar"),
		slot(2, 1, "09:00", "sin asignar"),
		slot(3, 1, "10:00", "Sin Asignar"),
		slot(4, 1, "11:00", "Asignada"),
	)

	res, err := svc.Delete(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, &DeleteResult{OK: true, Deleted: 3}, res)
	assert.ElementsMatch(t, []int64{1, 2, 3}, store.DeletedCupoID)
	require.Len(t, store.Cupos, 1)
	assert.Equal(t, int64(4), store.Cupos[0].ID)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CuposDeleted))
}

func TestDeleteAcceptsFoldedUnassignedStatus(t *testing.T) {
	svc, store, _ := newService(t,
		slot(1, 1, "08:00", " Sin asignar"),
		slot(2, 1, "09:00", "Sín asignar"),
		slot(3, 1, "10:00", "\tSin asignar"),
	)

	_, err := svc.Delete(context.Background(), []int64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrIneligible))
	assert.Contains(t, err.Error(), "ineligible ids: 3")
	assert.Len(t, store.Cupos, 3)

	res, err := svc.Delete(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, &DeleteResult{OK: true, Deleted: 2}, res)
	assert.ElementsMatch(t, []int64{1, 2}, store.DeletedCupoID)
}

func TestDeleteRequiresIDs(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Delete(context.Background(), nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestIneligibleMessageTruncates(t *testing.T) {
	ids := make([]int64, 12)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	msg := ineligibleMessage(ids)
	assert.Contains(t, msg, "1, 2, 3, 4, 5, 6, 7, 8, 9, 10, …")
	assert.NotContains(t, msg, "11")

	assert.NotContains(t, ineligibleMessage([]int64{7}), "…")
}
