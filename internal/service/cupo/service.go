package cupo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/internal/service/retrieval"
	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
	"github.com/jwalitptl/cupos-admin/pkg/logger"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

// maxReportedIDs bounds the ids listed in an ineligibility error.
const maxReportedIDs = 10

type CupoServicer interface {
	List(ctx context.Context, f model.Filters) (*retrieval.Result, error)
	Delete(ctx context.Context, ids []int64) (*DeleteResult, error)
}

type Service struct {
	repo      repository.CupoRepository
	retriever *retrieval.Retriever
	metrics   *metrics.Metrics
}

func NewService(repo repository.CupoRepository, retriever *retrieval.Retriever, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		retriever: retriever,
		metrics:   m,
	}
}

type DeleteResult struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
	Skipped int64 `json:"skipped,omitempty"`
}

// List returns slots for the deletion screen, oldest first.
func (s *Service) List(ctx context.Context, f model.Filters) (*retrieval.Result, error) {
	return s.retriever.Retrieve(ctx, retrieval.Request{
		Filters:   f,
		Direction: model.SortAsc,
	})
}

// Delete removes the given slots only if every one of them exists and is
// unassigned. Otherwise nothing is deleted.
func (s *Service) Delete(ctx context.Context, ids []int64) (*DeleteResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.Validation("ids is required")
	}

	statuses, err := s.repo.Statuses(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check cupo statuses: %w", err)
	}

	eligible := make(map[int64]bool, len(statuses))
	for _, st := range statuses {
		if st.Estado == nil {
			continue
		}
		if cat, ok := model.CategorizeStatus(*st.Estado); ok && cat == model.StatusSinAsignar {
			eligible[st.ID] = true
		}
	}

	var rejected []int64
	for _, id := range ids {
		if !eligible[id] {
			rejected = append(rejected, id)
		}
	}
	if len(rejected) > 0 {
		if s.metrics != nil {
			s.metrics.DeleteRejects.Inc()
		}
		logger.FromContext(ctx).Warn().
			Int("requested", len(ids)).
			Int("rejected", len(rejected)).
			Msg("bulk delete rejected")
		return nil, apperrors.Ineligible(ineligibleMessage(rejected))
	}

	deleted, err := s.repo.DeleteUnassigned(ctx, ids)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CuposDeleted.Add(float64(deleted))
	}

	res := &DeleteResult{
		OK:      true,
		Deleted: deleted,
		Skipped: int64(len(ids)) - deleted,
	}
	logger.FromContext(ctx).Info().
		Int("requested", len(ids)).
		Int64("deleted", res.Deleted).
		Int64("skipped", res.Skipped).
		Msg("cupos deleted")
	return res, nil
}

func ineligibleMessage(ids []int64) string {
	n := len(ids)
	if n > maxReportedIDs {
		n = maxReportedIDs
	}
	parts := make([]string, 0, n+1)
	for _, id := range ids[:n] {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	if len(ids) > maxReportedIDs {
		parts = append(parts, "…")
	}
	return "only unassigned cupos can be deleted; ineligible ids: " + strings.Join(parts, ", ")
}
