// Package optimizer scores shaped assets and greedily selects a subset under a
// budget.
//
// The selection is a single pass over assets ranked by score per unit cost. It
// is a heuristic, not an exact knapsack: a rejected asset is never revisited.
package optimizer

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/okian/assetopt/internal/domain/model"
)

// StatusOptimal is reported by every successful run, including runs that
// select nothing.
const StatusOptimal = "Optimal"

// Defaults.
const (
	DefaultBudget    = 1500
	DefaultCostFloor = 1

	usedBudgetPlaces = 2
	scorePlaces      = 4
	healthScale      = 100
)

// Weights are the criterion coefficients. W3 is the cost-factor weight: it is
// accepted and validated but never contributes to the score.
type Weights struct {
	W1 float64 `json:"w1"` // SAIDI
	W2 float64 `json:"w2"` // SAIFI
	W3 float64 `json:"w3"` // cost factor, inert
	W4 float64 `json:"w4"` // health risk
}

// DefaultWeights returns 0.3/0.2/0.1/0.4.
func DefaultWeights() Weights {
	return Weights{W1: 0.3, W2: 0.2, W3: 0.1, W4: 0.4}
}

// Config parameterizes a run.
type Config struct {
	// Budget bounds the total cost of the selection.
	Budget float64
	// Weights weight the normalized criteria.
	Weights Weights
	// CostFloor is the minimum cost used when ranking by score per cost, so
	// free or near-free assets cannot dominate through division.
	CostFloor float64
}

// DefaultConfig returns the default budget, weights and a cost floor of 1.
func DefaultConfig() Config {
	return Config{
		Budget:    DefaultBudget,
		Weights:   DefaultWeights(),
		CostFloor: DefaultCostFloor,
	}
}

// Validate reports configuration that cannot produce a meaningful run.
func (c Config) Validate() error {
	if !finite(c.Budget) || c.Budget <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBudget, c.Budget)
	}
	for _, w := range []namedValue{{"w1", c.Weights.W1}, {"w2", c.Weights.W2}, {"w3", c.Weights.W3}, {"w4", c.Weights.W4}} {
		if !finite(w.value) || w.value < 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeight, w.name, w.value)
		}
	}
	if !finite(c.CostFloor) || c.CostFloor <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCostFloor, c.CostFloor)
	}
	return nil
}

// Selection is one selected asset in selection order.
type Selection struct {
	RequestLabel  string              `json:"request_label"`
	OperationType model.OperationType `json:"operation_type"`
	Group         string              `json:"group"`
	Cost          float64             `json:"cost"`
	Score         float64             `json:"score"`
}

// Result is the outcome of a successful run.
type Result struct {
	Status         string      `json:"status"`
	SelectedCount  int         `json:"selected_count"`
	UsedBudget     float64     `json:"used_budget"`
	Budget         float64     `json:"budget"`
	ObjectiveValue float64     `json:"objective_value"`
	Selected       []Selection `json:"selected"`
}

// Candidate is a scored asset with its ranking key.
type Candidate struct {
	Asset      model.Asset
	Score      float64
	Efficiency float64
}

// Optimize scores, ranks and greedily selects assets. It never returns a
// partial result: on error the Result is zero. The used budget is the
// decimal sum of the shortest decimal form of each selected cost, and that
// sum never exceeds the budget. A float64 sum of the same costs can exceed it
// by rounding error: 0.1 and 0.2 both fit a budget of 0.3.
func Optimize(_ context.Context, assets []model.Asset, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, newError(KindInvalidConfig, err)
	}

	res := Result{
		Status:   StatusOptimal,
		Budget:   cfg.Budget,
		Selected: []Selection{},
	}
	if len(assets) == 0 {
		return res, nil
	}

	ranked, err := Rank(assets, cfg.Weights, cfg.CostFloor)
	if err != nil {
		return Result{}, err
	}

	budget := decimal.NewFromFloat(cfg.Budget)
	used := decimal.Zero
	total := 0.0
	for _, c := range ranked {
		next := used.Add(decimal.NewFromFloat(c.Asset.Cost))
		if next.GreaterThan(budget) {
			continue
		}
		used = next
		total += c.Score
		res.Selected = append(res.Selected, Selection{
			RequestLabel:  c.Asset.RequestLabel,
			OperationType: c.Asset.OperationType,
			Group:         c.Asset.Group,
			Cost:          c.Asset.Cost,
			Score:         model.Round(c.Score, scorePlaces),
		})
	}

	if !finite(total) {
		return Result{}, newError(KindComputation, fmt.Errorf("%w: objective %v", ErrNonFinite, total))
	}
	res.SelectedCount = len(res.Selected)
	res.UsedBudget, _ = used.Round(usedBudgetPlaces).Float64()
	res.ObjectiveValue = model.Round(total, scorePlaces)
	return res, nil
}

// Rank scores every asset and orders them by score per floored cost,
// descending. Ties keep their input order.
func Rank(assets []model.Asset, w Weights, costFloor float64) ([]Candidate, error) {
	maxSAIDI, maxSAIFI := 0.0, 0.0
	for _, a := range assets {
		if err := checkAsset(a); err != nil {
			return nil, err
		}
		maxSAIDI = math.Max(maxSAIDI, a.SAIDI)
		maxSAIFI = math.Max(maxSAIFI, a.SAIFI)
	}

	ranked := make([]Candidate, len(assets))
	for i, a := range assets {
		score := PriorityScore(a, maxSAIDI, maxSAIFI, w)
		eff := score / math.Max(a.Cost, costFloor)
		if !finite(score) || !finite(eff) {
			return nil, newError(KindComputation, fmt.Errorf("%w: asset %d score %v", ErrNonFinite, a.ID, score))
		}
		ranked[i] = Candidate{Asset: a.WithScore(score), Score: score, Efficiency: eff}
	}

	slices.SortStableFunc(ranked, func(x, y Candidate) int {
		return cmp.Compare(y.Efficiency, x.Efficiency)
	})
	return ranked, nil
}

// PriorityScore is w1*saidi/maxSAIDI + w2*saifi/maxSAIFI + w4*(100-health)/100.
// A criterion whose batch maximum is zero contributes nothing.
func PriorityScore(a model.Asset, maxSAIDI, maxSAIFI float64, w Weights) float64 {
	normSAIDI, normSAIFI := 0.0, 0.0
	if maxSAIDI > 0 {
		normSAIDI = a.SAIDI / maxSAIDI
	}
	if maxSAIFI > 0 {
		normSAIFI = a.SAIFI / maxSAIFI
	}
	healthRisk := (healthScale - a.HealthUI) / healthScale
	return w.W1*normSAIDI + w.W2*normSAIFI + w.W4*healthRisk
}

func checkAsset(a model.Asset) error {
	for _, v := range []namedValue{{"saidi", a.SAIDI}, {"saifi", a.SAIFI}, {"cost", a.Cost}, {"health_ui", a.HealthUI}} {
		if !finite(v.value) || v.value < 0 {
			return newError(KindInvalidInput, fmt.Errorf("%w: asset %d %s=%v", ErrInvalidAsset, a.ID, v.name, v.value))
		}
	}
	return nil
}

type namedValue struct {
	name  string
	value float64
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
