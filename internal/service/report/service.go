package report

import (
	"context"
	"io"

	"github.com/jwalitptl/cupos-admin/internal/export"
	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/service/retrieval"
	"github.com/jwalitptl/cupos-admin/pkg/logger"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

type ReportServicer interface {
	Data(ctx context.Context, f model.Filters) (*retrieval.Result, error)
	Export(ctx context.Context, f model.Filters, w io.Writer) (*ExportResult, error)
}

type Service struct {
	retriever *retrieval.Retriever
	exportCap int
	metrics   *metrics.Metrics
}

// NewService builds the report service. exportCap bounds the insurer scan
// of an export; zero keeps the retriever's default cap.
func NewService(retriever *retrieval.Retriever, exportCap int, m *metrics.Metrics) *Service {
	return &Service{
		retriever: retriever,
		exportCap: exportCap,
		metrics:   m,
	}
}

// ExportResult describes a written workbook.
type ExportResult struct {
	Filename string
	Rows     int
	Partial  bool
}

// Data returns the requested page of the report, newest slots first.
func (s *Service) Data(ctx context.Context, f model.Filters) (*retrieval.Result, error) {
	return s.retriever.Retrieve(ctx, retrieval.Request{
		Filters:   f,
		Direction: model.SortDesc,
	})
}

// Export writes every matching row to w as an xlsx workbook, ignoring the
// requested page.
func (s *Service) Export(ctx context.Context, f model.Filters, w io.Writer) (*ExportResult, error) {
	res, err := s.retriever.Retrieve(ctx, retrieval.Request{
		Filters:   f.Unbounded(),
		Direction: model.SortDesc,
		ScanCap:   s.exportCap,
	})
	if err != nil {
		return nil, err
	}

	if err := export.WriteWorkbook(w, res.Rows); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ExportRows.Observe(float64(len(res.Rows)))
	}
	logger.FromContext(ctx).Info().
		Int("rows", len(res.Rows)).
		Bool("partial", res.Partial).
		Msg("report exported")

	return &ExportResult{
		Filename: export.Filename(f.Desde, f.Hasta),
		Rows:     len(res.Rows),
		Partial:  res.Partial,
	}, nil
}
