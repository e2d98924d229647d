package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/okian/assetopt/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ASSETOPT_ADDR", ":8080")
			_ = os.Setenv("ASSETOPT_BUDGET", "2500.5")
			_ = os.Setenv("ASSETOPT_COST_FLOOR", "0.5")
			_ = os.Setenv("ASSETOPT_WEIGHTS__W1", "0.6")
			_ = os.Setenv("ASSETOPT_HEALTH__POLICY", "max_observed")
			_ = os.Setenv("ASSETOPT_RISK__LOW_CUTOFF", "50")
			_ = os.Setenv("ASSETOPT_RISK__HIGH_CUTOFF", "75")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Budget, convey.ShouldEqual, 2500.5)
				convey.So(cfg.CostFloor, convey.ShouldEqual, 0.5)
				convey.So(cfg.Weights.W1, convey.ShouldEqual, 0.6)
				convey.So(cfg.Weights.W2, convey.ShouldEqual, 0.2)
				convey.So(cfg.Health.Policy, convey.ShouldEqual, "max_observed")
				convey.So(cfg.Health.Ceiling, convey.ShouldEqual, 10000)
				convey.So(cfg.Risk.LowCutoff, convey.ShouldEqual, 50)
				convey.So(cfg.Risk.HighCutoff, convey.ShouldEqual, 75)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# Planning parameters
addr: ":9090"
dataset_path: /data/assets.yaml
budget: 900
weights:
  w1: 0.5
  w4: 0.1 # inline comment
health:
  policy: max_observed
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ASSETOPT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should merge the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "/data/assets.yaml")
				convey.So(cfg.Budget, convey.ShouldEqual, 900)
				convey.So(cfg.Weights, convey.ShouldResemble, config.Weights{W1: 0.5, W2: 0.2, W3: 0.1, W4: 0.1})
				convey.So(cfg.Health.Policy, convey.ShouldEqual, "max_observed")
				convey.So(cfg.Risk.HighCutoff, convey.ShouldEqual, 70)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
budget: 900
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ASSETOPT_CONFIG", tmpFile)
			_ = os.Setenv("ASSETOPT_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Budget, convey.ShouldEqual, 900)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ASSETOPT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ASSETOPT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ASSETOPT_BUDGET", "plenty")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("ASSETOPT_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown normalization policy", func() {
			_ = os.Setenv("ASSETOPT_HEALTH__POLICY", "median")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ASSETOPT_CONFIG",
		"ASSETOPT_ADDR",
		"ASSETOPT_BUDGET",
		"ASSETOPT_COST_FLOOR",
		"ASSETOPT_WEIGHTS__W1",
		"ASSETOPT_HEALTH__POLICY",
		"ASSETOPT_RISK__LOW_CUTOFF",
		"ASSETOPT_RISK__HIGH_CUTOFF",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "assetopt-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
