package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/assetopt/internal/adapters/http/api"
	"github.com/okian/assetopt/internal/adapters/http/site"
	"github.com/okian/assetopt/internal/adapters/http/swagger"
	app "github.com/okian/assetopt/internal/app"
	"github.com/okian/assetopt/internal/config"
	"github.com/okian/assetopt/pkg/logger"
	"github.com/okian/assetopt/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	assetMetricsInterval      = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	svc := app.New(append(opts, app.WithLogger(log.Named("service")))...)

	mux, err := buildMux(ctx, svc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Float64("budget", cfg.Budget),
			logger.String("health_policy", cfg.Health.Policy),
			logger.String("dataset", datasetName(cfg)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info(gctx, "server stopped")
		return nil
	})

	g.Go(func() error {
		every(gctx, systemMetricsInterval, updateSystemMetrics)
		return nil
	})

	g.Go(func() error {
		every(gctx, assetMetricsInterval, func() { refreshAssetMetrics(gctx, svc) })
		return nil
	})

	return g.Wait()
}

// buildMux registers every route: docs, API, and the dashboard at /.
func buildMux(ctx context.Context, svc *app.Service) (*http.ServeMux, error) {
	mux := http.NewServeMux()
	if err := swagger.Register(ctx, mux); err != nil {
		return nil, err
	}
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux, svc)
	return mux, nil
}

func datasetName(cfg *config.Config) string {
	if cfg.DatasetPath == "" {
		return "embedded sample"
	}
	return cfg.DatasetPath
}

// every runs fn once immediately and then on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	fn()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordGCPause(avgPauseMs)
	}
}

// refreshAssetMetrics reshapes the dataset so asset gauges stay current
// between API calls.
func refreshAssetMetrics(ctx context.Context, svc *app.Service) {
	if _, err := svc.Assets(ctx); err != nil && ctx.Err() == nil {
		logger.Get().Warn(ctx, "asset metrics refresh failed", logger.Error(err))
	}
}
