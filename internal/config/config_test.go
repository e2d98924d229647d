package config_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/assetopt/internal/config"
	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/internal/domain/shaper"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DatasetPath, convey.ShouldBeEmpty)
			convey.So(cfg.Budget, convey.ShouldEqual, 1500)
			convey.So(cfg.Weights, convey.ShouldResemble, config.Weights{W1: 0.3, W2: 0.2, W3: 0.1, W4: 0.4})
			convey.So(cfg.CostFloor, convey.ShouldEqual, 1)
			convey.So(cfg.Health.Policy, convey.ShouldEqual, "fixed")
			convey.So(cfg.Health.Ceiling, convey.ShouldEqual, 10000)
			convey.So(cfg.Risk.LowCutoff, convey.ShouldEqual, 40)
			convey.So(cfg.Risk.HighCutoff, convey.ShouldEqual, 70)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then it should convert into domain configuration", func() {
			convey.So(cfg.OptimizerConfig(), convey.ShouldResemble, optimizer.DefaultConfig())
			sc, err := cfg.ShaperConfig()
			convey.So(err, convey.ShouldBeNil)
			convey.So(sc, convey.ShouldResemble, shaper.DefaultConfig())
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs that cannot run", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"zero budget":       func(c *config.Config) { c.Budget = 0 },
			"negative budget":   func(c *config.Config) { c.Budget = -10 },
			"unknown policy":    func(c *config.Config) { c.Health.Policy = "median" },
			"inverted cutoffs":  func(c *config.Config) { c.Risk.LowCutoff, c.Risk.HighCutoff = 80, 30 },
			"collapsed cutoffs": func(c *config.Config) { c.Risk.LowCutoff, c.Risk.HighCutoff = 50, 50 },
			"zero ceiling":      func(c *config.Config) { c.Health.Ceiling = 0 },
			"negative ceiling":  func(c *config.Config) { c.Health.Ceiling = -5 },
			"NaN ceiling":       func(c *config.Config) { c.Health.Ceiling = math.NaN() },
			"zero cost floor":   func(c *config.Config) { c.CostFloor = 0 },
			"negative weight":   func(c *config.Config) { c.Weights.W2 = -0.1 },
			"NaN weight":        func(c *config.Config) { c.Weights.W4 = math.NaN() },
			"NaN budget":        func(c *config.Config) { c.Budget = math.NaN() },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" should be rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a zero ceiling should be reported as a ceiling error", func() {
			cfg := config.New()
			cfg.Health.Ceiling = 0
			convey.So(errors.Is(cfg.Validate(), shaper.ErrInvalidCeiling), convey.ShouldBeTrue)
		})

		convey.Convey("Then a zero cost floor should be reported as an optimizer error", func() {
			cfg := config.New()
			cfg.CostFloor = 0
			convey.So(errors.Is(cfg.Validate(), optimizer.ErrInvalidCostFloor), convey.ShouldBeTrue)
		})

		convey.Convey("Then max_observed should not need a ceiling", func() {
			cfg := config.New()
			cfg.Health.Policy = "max_observed"
			cfg.Health.Ceiling = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then an unknown policy should fail the shaper conversion", func() {
			cfg := config.New()
			cfg.Health.Policy = "median"
			_, err := cfg.ShaperConfig()
			convey.So(errors.Is(err, shaper.ErrUnknownPolicy), convey.ShouldBeTrue)
		})
	})
}
