// Package catalog serves the select-style option lists of the admin UI.
package catalog

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jwalitptl/cupos-admin/internal/cache"
	"github.com/jwalitptl/cupos-admin/internal/model"
	"github.com/jwalitptl/cupos-admin/internal/repository"
	"github.com/jwalitptl/cupos-admin/pkg/logger"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

const (
	catalogEPS            = "eps"
	catalogEspecialidades = "especialidades"
	catalogMedicos        = "medicos"
)

// specialtyPrefix matches a leading "123 - " code in specialty names.
var specialtyPrefix = regexp.MustCompile(`^\s*\d+\s*[-–]\s*`)

type CatalogServicer interface {
	EPS(ctx context.Context) ([]model.Option, error)
	Especialidades(ctx context.Context) ([]model.Option, error)
	Medicos(ctx context.Context, specialtyCodes []string) ([]model.Option, error)
}

type Options struct {
	TTL           time.Duration
	DoctorProfile int
	Center        int64
}

type Service struct {
	specialties   repository.SpecialtyRepository
	practitioners repository.PractitionerRepository
	insurers      repository.InsurerRepository
	cache         cache.Store
	metrics       *metrics.Metrics
	opts          Options
}

func NewService(
	specialties repository.SpecialtyRepository,
	practitioners repository.PractitionerRepository,
	insurers repository.InsurerRepository,
	store cache.Store,
	m *metrics.Metrics,
	opts Options,
) *Service {
	if store == nil {
		store = cache.NopStore{}
	}
	return &Service{
		specialties:   specialties,
		practitioners: practitioners,
		insurers:      insurers,
		cache:         store,
		metrics:       m,
		opts:          opts,
	}
}

// EPS lists insurers labelled by name, or by code when the name is blank.
func (s *Service) EPS(ctx context.Context) ([]model.Option, error) {
	return s.cached(ctx, catalogEPS, catalogEPS, func() ([]model.Option, error) {
		insurers, err := s.insurers.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list insurers: %w", err)
		}
		opts := make([]model.Option, 0, len(insurers))
		for _, in := range insurers {
			code := strings.TrimSpace(in.Code)
			if code == "" {
				continue
			}
			opts = append(opts, model.Option{Value: code, Label: label(in.Name, code)})
		}
		return opts, nil
	})
}

// Especialidades lists specialties with the numeric code prefix removed
// from their names.
func (s *Service) Especialidades(ctx context.Context) ([]model.Option, error) {
	return s.cached(ctx, catalogEspecialidades, catalogEspecialidades, func() ([]model.Option, error) {
		specialties, err := s.specialties.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list specialties: %w", err)
		}
		opts := make([]model.Option, 0, len(specialties))
		for _, sp := range specialties {
			code := strings.TrimSpace(sp.Code)
			if code == "" {
				continue
			}
			name := ""
			if sp.Name != nil {
				name = specialtyPrefix.ReplaceAllString(*sp.Name, "")
			}
			opts = append(opts, model.Option{Value: code, Label: label(&name, code)})
		}
		return opts, nil
	})
}

// Medicos lists practitioners of the configured center and profile. When
// specialty codes are given only practitioners linked to one of them are
// returned.
func (s *Service) Medicos(ctx context.Context, specialtyCodes []string) ([]model.Option, error) {
	codes := normalizeCodes(specialtyCodes)
	key := catalogMedicos
	if len(codes) > 0 {
		key += ":" + strings.Join(codes, ",")
	}

	return s.cached(ctx, catalogMedicos, key, func() ([]model.Option, error) {
		f := model.DoctorFilter{
			Profile: s.opts.DoctorProfile,
			Center:  s.opts.Center,
		}
		if len(codes) > 0 {
			linked, err := s.specialties.PractitionerCodes(ctx, codes)
			if err != nil {
				return nil, err
			}
			if len(linked) == 0 {
				return []model.Option{}, nil
			}
			f.Codes = linked
		}

		doctors, err := s.practitioners.ListDoctors(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to list practitioners: %w", err)
		}
		opts := make([]model.Option, 0, len(doctors))
		for _, d := range doctors {
			code := strings.TrimSpace(d.Code)
			if code == "" {
				continue
			}
			opts = append(opts, model.Option{Value: code, Label: label(d.Name, code)})
		}
		return opts, nil
	})
}

// cached serves key from the cache or loads, sorts and stores it. Cache
// failures are logged and never fail the request.
func (s *Service) cached(ctx context.Context, catalog, key string, load func() ([]model.Option, error)) ([]model.Option, error) {
	var opts []model.Option
	found, err := s.cache.Get(ctx, key, &opts)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}
	s.metrics.ObserveCache(catalog, found)
	if found {
		return opts, nil
	}

	opts, err = load()
	if err != nil {
		return nil, err
	}
	SortOptions(opts)

	if err := s.cache.Set(ctx, key, opts, s.opts.TTL); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return opts, nil
}

// SortOptions orders options by label using Spanish collation, ignoring
// case and accents, then by value.
func SortOptions(opts []model.Option) {
	c := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(opts, func(i, j int) bool {
		if r := c.CompareString(opts[i].Label, opts[j].Label); r != 0 {
			return r < 0
		}
		return opts[i].Value < opts[j].Value
	})
}

func label(name *string, code string) string {
	if name != nil {
		if n := strings.TrimSpace(*name); n != "" {
			return n
		}
	}
	return code
}

// normalizeCodes trims, dedupes and sorts codes so equal sets share a cache key.
func normalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
