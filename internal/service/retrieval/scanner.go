package retrieval

import (
	"context"

	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
)

// BatchSource yields successive batches of slots. An empty batch ends the scan.
type BatchSource interface {
	NextBatch(ctx context.Context) ([]*model.Cupo, error)
}

// KeepFunc selects the rows of one batch that count as matches.
type KeepFunc func(ctx context.Context, batch []*model.Cupo) ([]*model.Cupo, error)

// ScanOptions bound a scan. Zero values disable the bound.
type ScanOptions struct {
	Target int // stop once this many matches are held
	Cap    int // stop once this many rows have been examined
}

type ScanResult struct {
	Matches    []*model.Cupo
	Scanned    int
	Batches    int
	CapReached bool
}

// Scan pulls batches from src until Target matches are held, the source is
// exhausted or Cap rows were examined. Hitting the cap is not an error: the
// matches found so far are returned with CapReached set.
func Scan(ctx context.Context, src BatchSource, keep KeepFunc, opts ScanOptions) (*ScanResult, error) {
	res := &ScanResult{}
	full := func() bool { return opts.Target > 0 && len(res.Matches) >= opts.Target }

	for !full() {
		if opts.Cap > 0 && res.Scanned >= opts.Cap {
			res.CapReached = true
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := src.NextBatch(ctx)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		res.Scanned += len(batch)
		res.Batches++

		kept := batch
		if keep != nil {
			if kept, err = keep(ctx, batch); err != nil {
				return nil, err
			}
		}
		for _, c := range kept {
			res.Matches = append(res.Matches, c)
			if full() {
				break
			}
		}
	}
	return res, nil
}

// querySource pages through a slot query with LIMIT/OFFSET.
type querySource struct {
	repo   repository.CupoRepository
	query  model.CupoQuery
	size   int
	offset int
	done   bool
}

// NewQuerySource pages q in batches of size rows, starting at q.Offset.
func NewQuerySource(repo repository.CupoRepository, q model.CupoQuery, size int) BatchSource {
	return &querySource{repo: repo, query: q, size: size, offset: q.Offset}
}

func (s *querySource) NextBatch(ctx context.Context) ([]*model.Cupo, error) {
	if s.done {
		return nil, nil
	}
	q := s.query
	q.Offset = s.offset
	q.Limit = s.size

	rows, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	s.offset += s.size
	if len(rows) < s.size {
		s.done = true
	}
	return rows, nil
}
