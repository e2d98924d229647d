package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ASSETOPT_"

// EnvConfigPath names the variable holding an optional YAML config path.
const EnvConfigPath = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ASSETOPT_CONFIG is set
//  3. env (prefix ASSETOPT_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ASSETOPT_COST_FLOOR -> cost_floor, ASSETOPT_WEIGHTS__W1 -> weights.w1.
	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
