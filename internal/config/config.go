// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and environment variables on top of New.
// - Errors leaving this package wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/internal/domain/shaper"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath points at a YAML dataset. Empty means the embedded sample.
	DatasetPath string `koanf:"dataset_path"`

	// Budget bounds the total cost of a selection.
	Budget float64 `koanf:"budget"`

	// Weights are the criterion coefficients. W3 is accepted but inert.
	Weights Weights `koanf:"weights"`

	// CostFloor is the minimum cost used when ranking by score per cost.
	CostFloor float64 `koanf:"cost_floor"`

	Health Health `koanf:"health"`
	Risk   Risk   `koanf:"risk"`
}

// Weights mirrors optimizer.Weights with config tags.
type Weights struct {
	W1 float64 `koanf:"w1"`
	W2 float64 `koanf:"w2"`
	W3 float64 `koanf:"w3"`
	W4 float64 `koanf:"w4"`
}

// Health selects how raw health scores are normalized.
type Health struct {
	// Policy is "fixed" or "max_observed".
	Policy string `koanf:"policy"`
	// Ceiling is the denominator of the fixed policy.
	Ceiling float64 `koanf:"ceiling"`
}

// Risk holds the health cutoffs for the risk labels.
type Risk struct {
	LowCutoff  float64 `koanf:"low_cutoff"`
	HighCutoff float64 `koanf:"high_cutoff"`
}

// New creates a Config populated with defaults.
func New() *Config {
	w := optimizer.DefaultWeights()
	return &Config{
		LogLevel:  "info",
		Addr:      ":9080",
		Budget:    optimizer.DefaultBudget,
		Weights:   Weights{W1: w.W1, W2: w.W2, W3: w.W3, W4: w.W4},
		CostFloor: optimizer.DefaultCostFloor,
		Health: Health{
			Policy:  string(shaper.PolicyFixed),
			Ceiling: shaper.DefaultCeiling,
		},
		Risk: Risk{
			LowCutoff:  shaper.DefaultLowCutoff,
			HighCutoff: shaper.DefaultHighCutoff,
		},
	}
}

// Validate rejects configuration the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if err := c.OptimizerConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	sc, err := c.ShaperConfig()
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// OptimizerConfig converts the budget, weights and cost floor.
func (c *Config) OptimizerConfig() optimizer.Config {
	return optimizer.Config{
		Budget:    c.Budget,
		Weights:   optimizer.Weights{W1: c.Weights.W1, W2: c.Weights.W2, W3: c.Weights.W3, W4: c.Weights.W4},
		CostFloor: c.CostFloor,
	}
}

// ShaperConfig converts the health and risk sections.
func (c *Config) ShaperConfig() (shaper.Config, error) {
	p, err := shaper.ParsePolicy(c.Health.Policy)
	if err != nil {
		return shaper.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return shaper.Config{
		Policy:     p,
		Ceiling:    c.Health.Ceiling,
		LowCutoff:  c.Risk.LowCutoff,
		HighCutoff: c.Risk.HighCutoff,
	}, nil
}
