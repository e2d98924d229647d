// Package shaper turns raw per-id lookups into shaped asset records.
package shaper

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/assetopt/internal/domain/model"
	"github.com/okian/assetopt/internal/domain/types"
)

// Policy selects the health normalization denominator.
type Policy string

// Normalization policies. The two produce different health_ui values for the
// same data, so the choice is always explicit configuration.
const (
	PolicyFixed       Policy = "fixed"        // shared constant ceiling
	PolicyMaxObserved Policy = "max_observed" // max raw health in the batch
)

// Defaults for the health scale and risk cutoffs.
const (
	DefaultCeiling    = 10000
	DefaultLowCutoff  = 40
	DefaultHighCutoff = 70

	requestLabelBase = 1000
	healthScale      = 100
	healthPlaces     = 1
	publicCategory   = 1
)

// Config carries the normalization denominator policy and risk cutoffs.
type Config struct {
	Policy     Policy
	Ceiling    float64
	LowCutoff  float64
	HighCutoff float64
}

// DefaultConfig returns a fixed 10000 ceiling with 40/70 cutoffs.
func DefaultConfig() Config {
	return Config{
		Policy:     PolicyFixed,
		Ceiling:    DefaultCeiling,
		LowCutoff:  DefaultLowCutoff,
		HighCutoff: DefaultHighCutoff,
	}
}

// Validate rejects an unknown policy, a non-positive fixed ceiling and
// inverted cutoffs. Ceiling is ignored under max_observed.
func (c Config) Validate() error {
	if _, err := ParsePolicy(string(c.Policy)); err != nil {
		return err
	}
	if c.Policy == PolicyFixed && (c.Ceiling <= 0 || math.IsNaN(c.Ceiling) || math.IsInf(c.Ceiling, 0)) {
		return fmt.Errorf("%w: %v", ErrInvalidCeiling, c.Ceiling)
	}
	if math.IsNaN(c.LowCutoff) || math.IsNaN(c.HighCutoff) || c.LowCutoff >= c.HighCutoff {
		return fmt.Errorf("%w: low=%v high=%v", ErrInvalidCutoffs, c.LowCutoff, c.HighCutoff)
	}
	return nil
}

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFixed, PolicyMaxObserved:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Shape builds one Asset per id in src's id order. It never fails: absent
// fields fall back to zero, "General", a synthesized request label, or the
// default operation type. A fixed ceiling that does not pass Validate is
// replaced by DefaultCeiling.
func Shape(ctx context.Context, src model.RawSource, cfg Config) []model.Asset {
	ids := src.IDs(ctx)
	assets := make([]model.Asset, 0, len(ids))
	if len(ids) == 0 {
		return assets
	}

	raw := make([]float64, len(ids))
	for i, id := range ids {
		raw[i] = number(ctx, src, model.FieldHealth, id)
	}
	denom := denominator(cfg, raw)

	for i, id := range ids {
		health := HealthUI(raw[i], denom)
		group, ok := src.Text(ctx, model.FieldType, id)
		if !ok || group == "" {
			group = model.DefaultGroup
		}
		category, _ := src.Number(ctx, model.FieldCategory, id)

		assets = append(assets, model.Asset{
			ID:            id,
			RequestLabel:  requestLabel(ctx, src, id),
			SAIDI:         number(ctx, src, model.FieldSAIDI, id),
			SAIFI:         number(ctx, src, model.FieldSAIFI, id),
			Cost:          number(ctx, src, model.FieldCost, id),
			Group:         group,
			IsPublic:      category == publicCategory,
			RawHealth:     raw[i],
			HealthUI:      health,
			RiskLabel:     RiskFor(health, cfg.LowCutoff, cfg.HighCutoff),
			OperationType: operation(ctx, src, id),
		})
	}
	return assets
}

// HealthUI maps raw onto [0,100] with one decimal.
func HealthUI(raw, denom float64) float64 {
	if denom <= 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		denom = 1
	}
	v := model.Round(raw/denom*healthScale, healthPlaces)
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > healthScale:
		return healthScale
	}
	return v
}

// RiskFor labels a normalized health value: below low is High, below high is
// Medium, otherwise Low.
func RiskFor(healthUI, low, high float64) model.RiskLabel {
	switch {
	case healthUI < low:
		return model.RiskHigh
	case healthUI < high:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Summarize computes the dashboard KPIs for a shaped batch.
func Summarize(assets []model.Asset, budget float64) types.KPI {
	kpi := types.KPI{TotalAssets: len(assets), Budget: budget}
	if len(assets) == 0 {
		return kpi
	}
	var sum float64
	for _, a := range assets {
		if a.RiskLabel == model.RiskHigh {
			kpi.HighRiskCount++
		}
		sum += a.HealthUI
	}
	kpi.AvgHealth = model.Round(sum/float64(len(assets)), healthPlaces)
	return kpi
}

func denominator(cfg Config, raw []float64) float64 {
	if cfg.Policy != PolicyMaxObserved {
		if cfg.Ceiling > 0 && !math.IsInf(cfg.Ceiling, 0) {
			return cfg.Ceiling
		}
		return DefaultCeiling
	}
	maxRaw := 0.0
	for _, v := range raw {
		if v > maxRaw {
			maxRaw = v
		}
	}
	if maxRaw <= 0 {
		return 1
	}
	return maxRaw
}

func number(ctx context.Context, src model.RawSource, f model.Field, id int) float64 {
	v, ok := src.Number(ctx, f, id)
	if !ok {
		return 0
	}
	return v
}

func requestLabel(ctx context.Context, src model.RawSource, id int) string {
	if s, ok := src.Text(ctx, model.FieldRequestID, id); ok && s != "" {
		return s
	}
	if n, ok := src.Number(ctx, model.FieldRequestID, id); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return "T-" + strconv.Itoa(requestLabelBase+id)
}

func operation(ctx context.Context, src model.RawSource, id int) model.OperationType {
	s, ok := src.Text(ctx, model.FieldOperation, id)
	if !ok {
		return model.DefaultOperation
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "investment":
		return model.OperationInvestment
	case "maintenance":
		return model.OperationMaintenance
	default:
		return model.DefaultOperation
	}
}
