package assetctl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/internal/domain/types"
	"github.com/okian/assetopt/pkg/logger"
)

// Probe failures.
var (
	ErrRequest        = errors.New("request failed")
	ErrBudgetExceeded = errors.New("selection exceeds budget")
	ErrInconsistent   = errors.New("inconsistent result")
	ErrNotIdempotent  = errors.New("runs disagree")
)

// ProbeOptions parameterizes Probe.
type ProbeOptions struct {
	BaseURL     string
	Runs        int
	Concurrency int
	Timeout     time.Duration
}

// ProbeReport summarizes a successful probe.
type ProbeReport struct {
	Assets        int           `json:"assets"`
	Runs          int           `json:"runs"`
	Requests      int64         `json:"requests"`
	SelectedCount int           `json:"selected_count"`
	UsedBudget    float64       `json:"used_budget"`
	Budget        float64       `json:"budget"`
	Objective     float64       `json:"objective_value"`
	Took          time.Duration `json:"took_ns"`
}

// Probe checks a running server: it must be healthy, every optimization run
// must stay within budget and only select listed assets, and all runs must
// return the same result.
func Probe(ctx context.Context, opts ProbeOptions) (*ProbeReport, error) {
	start := time.Now()
	log := logger.Named("probe")
	client := newHTTPClient(opts.BaseURL, opts.Timeout)
	var requests atomic.Int64

	requests.Inc()
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	var assets types.AssetsResponse
	requests.Inc()
	if err := client.getJSON(ctx, "/api/assets", &assets); err != nil {
		return nil, err
	}
	log.Info(ctx, "assets listed", logger.Int("count", len(assets.Assets)))

	runs := max(opts.Runs, 1)
	results := make([]optimizer.Result, runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i := range results {
		g.Go(func() error {
			requests.Inc()
			if err := client.postJSON(gctx, "/api/optimize", &results[i]); err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, res := range results {
		if err := verifyResult(res, assets); err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		if diff := cmp.Diff(results[0], res); diff != "" {
			return nil, fmt.Errorf("%w: run 0 vs run %d (-want +got):\n%s", ErrNotIdempotent, i, diff)
		}
	}

	first := results[0]
	report := &ProbeReport{
		Assets:        len(assets.Assets),
		Runs:          runs,
		Requests:      requests.Load(),
		SelectedCount: first.SelectedCount,
		UsedBudget:    first.UsedBudget,
		Budget:        first.Budget,
		Objective:     first.ObjectiveValue,
		Took:          time.Since(start),
	}
	log.Info(ctx, "probe passed",
		logger.Int("runs", runs),
		logger.Int("selected", report.SelectedCount),
		logger.Float64("used_budget", report.UsedBudget),
		logger.Duration("took", report.Took),
	)
	return report, nil
}

// verifyResult checks one optimization result against the listed assets.
func verifyResult(res optimizer.Result, assets types.AssetsResponse) error {
	if res.Status != optimizer.StatusOptimal {
		return fmt.Errorf("%w: status %q", ErrInconsistent, res.Status)
	}
	if res.SelectedCount != len(res.Selected) {
		return fmt.Errorf("%w: selected_count %d but %d entries", ErrInconsistent, res.SelectedCount, len(res.Selected))
	}

	known := make(map[string]struct{}, len(assets.Assets))
	for _, a := range assets.Assets {
		known[a.RequestLabel] = struct{}{}
	}
	spent := decimal.Zero
	for _, s := range res.Selected {
		if _, ok := known[s.RequestLabel]; !ok {
			return fmt.Errorf("%w: unknown request %q", ErrInconsistent, s.RequestLabel)
		}
		spent = spent.Add(decimal.NewFromFloat(s.Cost))
	}
	if spent.GreaterThan(decimal.NewFromFloat(res.Budget)) {
		return fmt.Errorf("%w: spent %s of %v", ErrBudgetExceeded, spent, res.Budget)
	}
	if !spent.Round(2).Equal(decimal.NewFromFloat(res.UsedBudget)) {
		return fmt.Errorf("%w: used_budget %v but selection costs %s", ErrInconsistent, res.UsedBudget, spent)
	}
	return nil
}

func newProbeCommand() *cobra.Command {
	opts := ProbeOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check a running server for budget and idempotence violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := Probe(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&opts.BaseURL, "url", "http://localhost:9080", "base URL of the server")
	cmd.Flags().IntVar(&opts.Runs, "runs", 5, "number of optimization runs")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 2, "concurrent runs")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	return cmd
}
