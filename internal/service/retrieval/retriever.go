// Package retrieval runs filtered slot queries and hydrates the results
// with patient and practitioner data.
package retrieval

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/internal/service/facet"
	apperrors "github.com/jwalitptl/cupos-admin/pkg/errors"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

const (
	DefaultBatchSize = 2000
	DefaultScanCap   = 200_000
)

type Options struct {
	BatchSize int
	ScanCap   int
}

type Retriever struct {
	cupos         repository.CupoRepository
	patients      repository.PatientRepository
	practitioners repository.PractitionerRepository
	translator    *facet.Translator
	metrics       *metrics.Metrics
	opts          Options
}

func NewRetriever(
	cupos repository.CupoRepository,
	patients repository.PatientRepository,
	practitioners repository.PractitionerRepository,
	translator *facet.Translator,
	m *metrics.Metrics,
	opts Options,
) *Retriever {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ScanCap <= 0 {
		opts.ScanCap = DefaultScanCap
	}
	return &Retriever{
		cupos:         cupos,
		patients:      patients,
		practitioners: practitioners,
		translator:    translator,
		metrics:       m,
		opts:          opts,
	}
}

// Request is one retrieval. ScanCap overrides the default cap of the
// insurer post-filter scan.
type Request struct {
	Filters   model.Filters
	Direction model.SortDirection
	ScanCap   int
}

type Result struct {
	Rows []model.ReportRow
	// Scanned counts rows examined by an insurer post-filter scan.
	Scanned int
	// Partial is set when the scan cap stopped the scan before the page filled.
	Partial bool
}

// Retrieve returns the [offset, offset+limit) window of slots matching the
// filters, hydrated and in the requested order.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (*Result, error) {
	f := req.Filters
	q := model.CupoQuery{
		Desde:         f.Desde,
		Hasta:         f.Hasta,
		HoraDesde:     f.HoraDesde,
		HoraHasta:     f.HoraHasta,
		Estados:       f.Estados,
		Practitioners: f.Medicos,
		Direction:     req.Direction,
	}

	if len(f.Especialidades) > 0 {
		cups, err := r.translator.Translate(ctx, f.Especialidades)
		if err != nil {
			return nil, err
		}
		if len(cups) == 0 {
			return &Result{Rows: []model.ReportRow{}}, nil
		}
		if !r.cupos.HasProcedureCode() {
			return nil, apperrors.SchemaResolution(schema.TableCupos, schema.FieldProcedureCode)
		}
		q.ProcedureCodes = cups
	}

	h := NewHydrator(r.patients, r.practitioners, r.opts.BatchSize)

	var (
		page []*model.Cupo
		res  = &Result{}
		err  error
	)
	if f.EPS != "" && !r.cupos.FiltersInsurer() {
		page, err = r.scanInsurer(ctx, h, q, f, req.ScanCap, res)
	} else {
		if f.EPS != "" {
			q.InsurerCode = f.EPS
		}
		page, err = r.fetch(ctx, q, f)
	}
	if err != nil {
		return nil, err
	}

	if err := h.LoadPatients(ctx, page); err != nil {
		return nil, err
	}
	if err := h.LoadPractitioners(ctx, page); err != nil {
		return nil, err
	}

	res.Rows = make([]model.ReportRow, 0, len(page))
	for _, c := range page {
		res.Rows = append(res.Rows, h.Row(c))
	}
	return res, nil
}

// fetch reads the page straight from the database, in batches when the
// page is larger than one batch.
func (r *Retriever) fetch(ctx context.Context, q model.CupoQuery, f model.Filters) ([]*model.Cupo, error) {
	q.Offset = f.Offset
	if f.Limit <= r.opts.BatchSize {
		q.Limit = f.Limit
		return r.cupos.Find(ctx, q)
	}

	scan, err := Scan(ctx, NewQuerySource(r.cupos, q, r.opts.BatchSize), nil, ScanOptions{Target: f.Limit})
	if err != nil {
		return nil, err
	}
	return scan.Matches, nil
}

// scanInsurer post-filters slots by the patient's insurer code.
func (r *Retriever) scanInsurer(ctx context.Context, h *Hydrator, q model.CupoQuery, f model.Filters, scanCap int, res *Result) ([]*model.Cupo, error) {
	if scanCap <= 0 {
		scanCap = r.opts.ScanCap
	}

	keep := func(ctx context.Context, batch []*model.Cupo) ([]*model.Cupo, error) {
		if err := h.LoadPatients(ctx, batch); err != nil {
			return nil, err
		}
		var kept []*model.Cupo
		for _, c := range batch {
			if h.Insurer(c) == f.EPS {
				kept = append(kept, c)
			}
		}
		return kept, nil
	}

	scan, err := Scan(ctx, NewQuerySource(r.cupos, q, r.opts.BatchSize), keep, ScanOptions{
		Target: f.Window(),
		Cap:    scanCap,
	})
	if err != nil {
		return nil, err
	}

	r.metrics.ObserveScan(scan.Scanned, scan.Batches, scan.CapReached)
	res.Scanned = scan.Scanned
	res.Partial = scan.CapReached
	if scan.CapReached {
		log.Warn().
			Str("eps", f.EPS).
			Int("scanned", scan.Scanned).
			Int("matches", len(scan.Matches)).
			Int("cap", scanCap).
			Msg("scan cap reached, returning partial result")
	}

	return window(scan.Matches, f.Offset, f.Limit), nil
}

func window(items []*model.Cupo, offset, limit int) []*model.Cupo {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
