package assetctl

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/assetopt/internal/adapters/repository"
	"github.com/okian/assetopt/internal/domain/model"
)

// ErrInvalidCount rejects non-positive dataset sizes.
var ErrInvalidCount = errors.New("count must be positive")

// Ranges of the synthetic dataset.
const (
	maxSAIDI       = 25
	maxSAIFI       = 6
	maxRawHealth   = 10000
	minCost        = 10
	costSpan       = 141
	publicShare    = 0.5
	missingShare   = 0.05
	maintenanceShare = 0.15
	metricPlaces   = 2
)

var groups = []string{"Feeder", "Cable", "Transformer", "Switchgear", "Substation"}

// GenerateOptions parameterizes Generate.
type GenerateOptions struct {
	Count int
	Seed  uint64
	// Missing drops fields at random so consumers exercise fallbacks.
	Missing bool
}

// Generate builds a reproducible synthetic dataset with ids 1..Count.
func Generate(opts GenerateOptions) (repository.Dataset, error) {
	if opts.Count <= 0 {
		return repository.Dataset{}, fmt.Errorf("%w: %d", ErrInvalidCount, opts.Count)
	}
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	d := repository.Dataset{
		IDs:        make([]int, 0, opts.Count),
		SAIDI:      make(map[int]float64, opts.Count),
		SAIFI:      make(map[int]float64, opts.Count),
		Health:     make(map[int]float64, opts.Count),
		Cost:       make(map[int]float64, opts.Count),
		Type:       make(map[int]string, opts.Count),
		Category:   make(map[int]float64, opts.Count),
		Operations: map[int]string{},
	}
	missing := func() bool { return opts.Missing && r.Float64() < missingShare }

	for id := 1; id <= opts.Count; id++ {
		d.IDs = append(d.IDs, id)
		d.SAIDI[id] = model.Round(r.Float64()*maxSAIDI, metricPlaces)
		d.SAIFI[id] = model.Round(r.Float64()*maxSAIFI, metricPlaces)
		d.Cost[id] = float64(minCost + r.IntN(costSpan))
		if !missing() {
			d.Health[id] = float64(r.IntN(maxRawHealth + 1))
		}
		if !missing() {
			d.Type[id] = groups[r.IntN(len(groups))]
		}
		if r.Float64() < publicShare {
			d.Category[id] = 1
		} else {
			d.Category[id] = 0
		}
		if r.Float64() < maintenanceShare {
			d.Operations[id] = string(model.OperationMaintenance)
		}
	}
	return d, nil
}

func newGenerateCommand() *cobra.Command {
	var (
		opts GenerateOptions
		out  string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := Generate(opts)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return writeDataset(cmd.OutOrStdout(), d)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := writeDataset(f, d); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().IntVar(&opts.Count, "count", 30, "number of assets")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&opts.Missing, "missing", false, "drop some health and type values")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func writeDataset(w io.Writer, d repository.Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
