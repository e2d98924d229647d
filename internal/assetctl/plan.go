package assetctl

import (
	"github.com/spf13/cobra"

	service "github.com/okian/assetopt/internal/app"
	"github.com/okian/assetopt/internal/config"
)

// planFlags are shared by the offline commands. Unset flags keep the value
// from the config file and ASSETOPT_ environment.
type planFlags struct {
	dataset   string
	budget    float64
	policy    string
	ceiling   float64
	costFloor float64
}

func (p *planFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.dataset, "dataset", "", "YAML dataset file (default: embedded sample)")
	f.Float64Var(&p.budget, "budget", 0, "optimization budget")
	f.StringVar(&p.policy, "policy", "", "health normalization policy: fixed or max_observed")
	f.Float64Var(&p.ceiling, "ceiling", 0, "health ceiling for the fixed policy")
	f.Float64Var(&p.costFloor, "cost-floor", 0, "minimum cost used when ranking")
}

func (p *planFlags) service(cmd *cobra.Command) (*service.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("dataset") {
		cfg.DatasetPath = p.dataset
	}
	if f.Changed("budget") {
		cfg.Budget = p.budget
	}
	if f.Changed("policy") {
		cfg.Health.Policy = p.policy
	}
	if f.Changed("ceiling") {
		cfg.Health.Ceiling = p.ceiling
	}
	if f.Changed("cost-floor") {
		cfg.CostFloor = p.costFloor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := service.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return service.New(opts...), nil
}
