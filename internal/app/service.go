// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
//
// Every call reshapes the raw source and, for Optimize, reruns the optimizer.
// Nothing computed by one call is visible to the next.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/okian/assetopt/internal/adapters/repository"
	"github.com/okian/assetopt/internal/config"
	"github.com/okian/assetopt/internal/domain/model"
	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/internal/domain/shaper"
	"github.com/okian/assetopt/internal/domain/types"
	"github.com/okian/assetopt/pkg/logger"
	"github.com/okian/assetopt/pkg/metrics"
)

const statusError = "error"

// Service implements the API dependencies for the asset planner.
type Service struct {
	source    model.RawSource
	shaping   shaper.Config
	optimizer optimizer.Config

	logger logger.Logger

	assetCalls  atomic.Int64
	runs        atomic.Int64
	failedRuns  atomic.Int64
	lastRunID   atomic.String
	lastRunTook atomic.Duration
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets the raw data source.
func WithSource(src model.RawSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithBudget sets the optimization budget. Validation happens per run so a
// bad value surfaces as an invalid_config error rather than being dropped.
func WithBudget(budget float64) Option {
	return func(s *Service) {
		s.optimizer.Budget = budget
	}
}

// WithWeights sets the criterion weights.
func WithWeights(w optimizer.Weights) Option {
	return func(s *Service) {
		s.optimizer.Weights = w
	}
}

// WithCostFloor sets the minimum cost used for ranking.
func WithCostFloor(floor float64) Option {
	return func(s *Service) {
		s.optimizer.CostFloor = floor
	}
}

// WithNormalization sets the health normalization policy and risk cutoffs.
func WithNormalization(cfg shaper.Config) Option {
	return func(s *Service) {
		s.shaping = cfg
	}
}

// New constructs a new Service with default configuration over the embedded
// sample dataset.
func New(opts ...Option) *Service {
	s := &Service{
		shaping:   shaper.DefaultConfig(),
		optimizer: optimizer.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = repository.Default()
	}
	return s
}

// OptionsFromConfig translates process configuration into service options,
// loading the configured dataset file when one is set.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	shaping, err := cfg.ShaperConfig()
	if err != nil {
		return nil, err
	}
	var src model.RawSource = repository.Default()
	if cfg.DatasetPath != "" {
		loaded, err := repository.LoadYAML(cfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		src = loaded
	}
	oc := cfg.OptimizerConfig()
	return []Option{
		WithSource(src),
		WithNormalization(shaping),
		WithBudget(oc.Budget),
		WithWeights(oc.Weights),
		WithCostFloor(oc.CostFloor),
	}, nil
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// Assets shapes the source and summarizes it. A panic in the source is
// reported as a computation error.
func (s *Service) Assets(ctx context.Context) (resp types.AssetsResponse, err error) {
	if err := ctx.Err(); err != nil {
		return types.AssetsResponse{}, err
	}
	s.assetCalls.Inc()

	defer func() {
		if r := recover(); r != nil {
			resp = types.AssetsResponse{}
			err = optimizer.NewComputationError(fmt.Errorf("panic: %v", r))
			metrics.RecordError("", "", string(optimizer.KindComputation), "error")
			s.log().Error(ctx, "asset shaping failed", logger.Error(err))
		}
	}()

	assets := shaper.Shape(ctx, s.source, s.shaping)
	kpi := shaper.Summarize(assets, s.optimizer.Budget)
	metrics.UpdateAssets(kpi.TotalAssets, kpi.HighRiskCount, kpi.AvgHealth)

	s.log().Debug(ctx, "assets shaped",
		logger.Int("total", kpi.TotalAssets),
		logger.Int("high_risk", kpi.HighRiskCount),
		logger.Float64("avg_health", kpi.AvgHealth),
	)
	return types.AssetsResponse{Assets: assets, KPI: kpi}, nil
}

// Optimize shapes the source and selects assets under the budget. A panic
// anywhere in the run is reported as a computation error.
func (s *Service) Optimize(ctx context.Context) (res optimizer.Result, err error) {
	runID := uuid.NewString()
	log := s.log().With(logger.String("run_id", runID))
	start := time.Now()
	candidates := 0

	s.runs.Inc()
	s.lastRunID.Store(runID)

	defer func() {
		if r := recover(); r != nil {
			res = optimizer.Result{}
			err = optimizer.NewComputationError(fmt.Errorf("panic: %v", r))
		}
		took := time.Since(start)
		s.lastRunTook.Store(took)
		ms := float64(took.Microseconds()) / 1000

		if err != nil {
			s.failedRuns.Inc()
			kind := string(optimizer.KindOf(err))
			metrics.RecordOptimizationRun(statusError, ms)
			metrics.RecordError("", "", kind, "error")
			log.Error(ctx, "optimization failed",
				logger.String("kind", kind),
				logger.Duration("took", took),
				logger.Error(err),
			)
			return
		}

		metrics.RecordOptimizationRun(res.Status, ms)
		metrics.UpdateLastSelection(res.SelectedCount, candidates, res.UsedBudget, res.ObjectiveValue)
		log.Info(ctx, "optimization finished",
			logger.Int("candidates", candidates),
			logger.Int("selected", res.SelectedCount),
			logger.Float64("used_budget", res.UsedBudget),
			logger.Float64("budget", res.Budget),
			logger.Float64("objective", res.ObjectiveValue),
			logger.Duration("took", took),
		)
	}()

	if err := ctx.Err(); err != nil {
		return optimizer.Result{}, err
	}

	assets := shaper.Shape(ctx, s.source, s.shaping)
	candidates = len(assets)
	return optimizer.Optimize(ctx, assets, s.optimizer)
}

// GetStats returns configuration and run counters for monitoring.
func (s *Service) GetStats() map[string]any {
	w := s.optimizer.Weights
	return map[string]any{
		"budget":        s.optimizer.Budget,
		"costFloor":     s.optimizer.CostFloor,
		"weights":       map[string]float64{"w1": w.W1, "w2": w.W2, "w3": w.W3, "w4": w.W4},
		"healthPolicy":  string(s.shaping.Policy),
		"healthCeiling": s.shaping.Ceiling,
		"lowCutoff":     s.shaping.LowCutoff,
		"highCutoff":    s.shaping.HighCutoff,
		"assetCalls":    s.assetCalls.Load(),
		"runs":          s.runs.Load(),
		"failedRuns":    s.failedRuns.Load(),
		"lastRunID":     s.lastRunID.Load(),
		"lastRunTookMs": float64(s.lastRunTook.Load().Microseconds()) / 1000,
	}
}

// Budget returns the configured budget.
func (s *Service) Budget() float64 {
	return s.optimizer.Budget
}
