package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/cupos-admin/config"
	"github.com/jwalitptl/cupos-admin/internal/cache"
	"github.com/jwalitptl/cupos-admin/internal/repository/postgres"
	"github.com/jwalitptl/cupos-admin/internal/schema"
	"github.com/jwalitptl/cupos-admin/internal/service/catalog"
	"github.com/jwalitptl/cupos-admin/internal/service/cupo"
	"github.com/jwalitptl/cupos-admin/internal/service/facet"
	"github.com/jwalitptl/cupos-admin/internal/service/report"
	"github.com/jwalitptl/cupos-admin/internal/service/retrieval"
	"github.com/jwalitptl/cupos-admin/pkg/logger"
	"github.com/jwalitptl/cupos-admin/pkg/metrics"
)

const metricsNamespace = "cupos"

// app holds everything built from configuration that the commands share.
type app struct {
	cfg      *config.Config
	db       *sqlx.DB
	mapping  *schema.Mapping
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	repos    *postgres.Repositories
	closers  []func() error
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Log)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: db, closers: []func() error{db.Close}}

	a.mapping, err = schema.Resolve(ctx, postgres.NewColumnCatalog(db), schema.Definitions, cfg.Schema.Tables)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to resolve schema: %w", err)
	}
	log.Info().Int("version", a.mapping.Version).Msg("schema mapping resolved")

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewMetrics(a.registry, metricsNamespace)
	a.repos = postgres.NewRepositories(db, a.mapping, a.metrics)
	return a, nil
}

func (a *app) retriever(scanCap int) *retrieval.Retriever {
	translator := facet.NewTranslator(a.repos.Specialties, a.cfg.Facets.Fallback)
	return retrieval.NewRetriever(
		a.repos.Cupos,
		a.repos.Patients,
		a.repos.Practitioners,
		translator,
		a.metrics,
		retrieval.Options{BatchSize: a.cfg.Scan.BatchSize, ScanCap: scanCap},
	)
}

func (a *app) reportService() *report.Service {
	return report.NewService(a.retriever(a.cfg.Scan.Cap), a.cfg.Scan.ExportCap, a.metrics)
}

func (a *app) cupoService() *cupo.Service {
	return cupo.NewService(a.repos.Cupos, a.retriever(a.cfg.Scan.Cap), a.metrics)
}

func (a *app) catalogService(ctx context.Context) (*catalog.Service, error) {
	store, err := a.cacheStore(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewService(a.repos.Specialties, a.repos.Practitioners, a.repos.Insurers, store, a.metrics, catalog.Options{
		TTL:           a.cfg.Cache.TTL,
		DoctorProfile: a.cfg.Catalog.DoctorProfile,
		Center:        a.cfg.Catalog.Center,
	}), nil
}

// cacheStore uses redis when configured and the in-process cache otherwise.
func (a *app) cacheStore(ctx context.Context) (cache.Store, error) {
	if !a.cfg.Cache.Enabled {
		return cache.NopStore{}, nil
	}
	if a.cfg.Redis.URL == "" {
		return cache.NewMemoryStore(a.cfg.Cache.TTL, a.cfg.Cache.CleanupInterval, a.cfg.Cache.Prefix), nil
	}

	client, err := cache.NewRedisClient(ctx, a.cfg.Redis.URL, a.cfg.Redis.PoolSize)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	log.Info().Msg("catalog cache backed by redis")
	return cache.NewRedisStore(client, a.cfg.Cache.Prefix), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("failed to close resource")
		}
	}
}
