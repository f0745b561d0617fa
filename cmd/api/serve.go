package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	catalogHandler "github.com/jwalitptl/cupos-admin/internal/handler/catalog"
	cupoHandler "github.com/jwalitptl/cupos-admin/internal/handler/cupo"
	"github.com/jwalitptl/cupos-admin/internal/handler/health"
	"github.com/jwalitptl/cupos-admin/internal/handler/prometheus"
	reportHandler "github.com/jwalitptl/cupos-admin/internal/handler/report"
	"github.com/jwalitptl/cupos-admin/internal/middleware"
	"github.com/jwalitptl/cupos-admin/internal/router"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath)
		},
	}
}

func runServer(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	catalogSvc, err := a.catalogService(ctx)
	if err != nil {
		return err
	}

	cors := middleware.DefaultCORSConfig()
	if len(a.cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = a.cfg.CORS.AllowedOrigins
	}
	if len(a.cfg.CORS.AllowedMethods) > 0 {
		cors.AllowMethods = a.cfg.CORS.AllowedMethods
	}
	if len(a.cfg.CORS.AllowedHeaders) > 0 {
		cors.AllowHeaders = a.cfg.CORS.AllowedHeaders
	}

	r := router.NewRouter(
		health.NewHandler(a.db),
		prometheus.New(a.registry),
		router.RouterConfig{
			Mode:             a.cfg.Server.Mode,
			RateLimitEnabled: a.cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(a.cfg.RateLimit.RequestsPerSecond),
			RateBurst:        a.cfg.RateLimit.Burst,
			CORSConfig:       cors,
			MaxBodyBytes:     a.cfg.Server.MaxBodyBytes,
			Compress:         a.cfg.Server.Compress,
			RequestTimeout:   a.cfg.Server.RequestTimeout,
			HSTS:             a.cfg.Server.HSTS,
		},
		catalogHandler.NewHandler(catalogSvc),
		cupoHandler.NewHandler(a.cupoService()),
		reportHandler.NewHandler(a.reportService()),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    a.cfg.Server.ReadTimeout,
		WriteTimeout:   a.cfg.Server.WriteTimeout,
		MaxHeaderBytes: a.cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
