package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/okian/assetopt/internal/adapters/repository"
	service "github.com/okian/assetopt/internal/app"
	"github.com/okian/assetopt/internal/config"
	"github.com/okian/assetopt/internal/domain/model"
	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/internal/domain/shaper"
	"github.com/okian/assetopt/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

func twoAssetSource() *repository.MemorySource {
	return repository.NewMemorySource([]int{1, 2},
		repository.WithNumbers(model.FieldSAIDI, map[int]float64{1: 10, 2: 2}),
		repository.WithNumbers(model.FieldSAIFI, map[int]float64{1: 5, 2: 1}),
		repository.WithNumbers(model.FieldHealth, map[int]float64{1: 2000, 2: 9000}),
		repository.WithNumbers(model.FieldCost, map[int]float64{1: 100, 2: 50}),
	)
}

// panicSource fails the way a broken upstream lookup would.
type panicSource struct{}

func (panicSource) IDs(context.Context) []int { return []int{1} }
func (panicSource) Number(context.Context, model.Field, int) (float64, bool) {
	panic("lookup exploded")
}
func (panicSource) Text(context.Context, model.Field, int) (string, bool) { return "", false }

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should use the sample dataset and default budget", func() {
			So(svc.Budget(), ShouldEqual, 1500)
			resp, err := svc.Assets(context.Background())
			So(err, ShouldBeNil)
			So(resp.KPI.TotalAssets, ShouldEqual, 30)
			So(resp.KPI.Budget, ShouldEqual, 1500)
		})
	})
}

func TestService_Assets(t *testing.T) {
	Convey("Given a service over two assets", t, func() {
		svc := service.New(service.WithSource(twoAssetSource()), service.WithBudget(100))
		ctx := context.Background()

		Convey("When listing assets", func() {
			resp, err := svc.Assets(ctx)
			So(err, ShouldBeNil)

			Convey("Then assets should be shaped and summarized", func() {
				So(resp.Assets, ShouldHaveLength, 2)
				So(resp.Assets[0].HealthUI, ShouldEqual, 20)
				So(resp.Assets[0].RiskLabel, ShouldEqual, model.RiskHigh)
				So(resp.Assets[1].HealthUI, ShouldEqual, 90)
				So(resp.Assets[1].RiskLabel, ShouldEqual, model.RiskLow)
				So(resp.KPI.TotalAssets, ShouldEqual, 2)
				So(resp.KPI.HighRiskCount, ShouldEqual, 1)
				So(resp.KPI.AvgHealth, ShouldEqual, 55)
				So(resp.KPI.Budget, ShouldEqual, 100)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Assets(cctx)

			Convey("Then the call should fail with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestService_Optimize(t *testing.T) {
	Convey("Given a service over two assets with a budget of 100", t, func() {
		var buf bytes.Buffer
		So(logger.InitWithWriter(&buf), ShouldBeNil)
		defer func() { _ = logger.Init() }()

		svc := service.New(service.WithSource(twoAssetSource()), service.WithBudget(100))
		ctx := context.Background()

		Convey("When optimizing", func() {
			res, err := svc.Optimize(ctx)
			So(err, ShouldBeNil)

			Convey("Then the better asset should be selected", func() {
				So(res.Status, ShouldEqual, optimizer.StatusOptimal)
				So(res.SelectedCount, ShouldEqual, 1)
				So(res.Selected[0].RequestLabel, ShouldEqual, "T-1001")
				So(res.UsedBudget, ShouldEqual, 100)
				So(res.ObjectiveValue, ShouldEqual, 0.82)
			})

			Convey("Then the run should be logged with its id", func() {
				So(buf.String(), ShouldContainSubstring, "optimization finished")
				So(buf.String(), ShouldContainSubstring, "run_id=")
				So(buf.String(), ShouldContainSubstring, "selected=1")
			})

			Convey("Then a second run should produce the same result", func() {
				again, err := svc.Optimize(ctx)
				So(err, ShouldBeNil)
				So(cmp.Diff(res, again), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a service with a non-positive budget", t, func() {
		svc := service.New(service.WithSource(twoAssetSource()), service.WithBudget(0))

		Convey("When optimizing", func() {
			res, err := svc.Optimize(context.Background())

			Convey("Then it should fail as invalid configuration", func() {
				So(optimizer.KindOf(err), ShouldEqual, optimizer.KindInvalidConfig)
				So(res, ShouldResemble, optimizer.Result{})
				So(svc.GetStats()["failedRuns"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given a source that panics", t, func() {
		svc := service.New(service.WithSource(panicSource{}))

		Convey("When listing assets", func() {
			resp, err := svc.Assets(context.Background())

			Convey("Then the panic should surface as a computation error", func() {
				So(optimizer.KindOf(err), ShouldEqual, optimizer.KindComputation)
				So(err.Error(), ShouldContainSubstring, "lookup exploded")
				So(resp.Assets, ShouldBeNil)
			})
		})

		Convey("When optimizing", func() {
			res, err := svc.Optimize(context.Background())

			Convey("Then the panic should surface as a computation error", func() {
				var oe *optimizer.Error
				So(errors.As(err, &oe), ShouldBeTrue)
				So(oe.Kind, ShouldEqual, optimizer.KindComputation)
				So(err.Error(), ShouldContainSubstring, "lookup exploded")
				So(res, ShouldResemble, optimizer.Result{})
			})
		})
	})

	Convey("Given the max_observed normalization policy", t, func() {
		cfg := shaper.DefaultConfig()
		cfg.Policy = shaper.PolicyMaxObserved
		svc := service.New(service.WithSource(twoAssetSource()), service.WithNormalization(cfg))

		Convey("Then the healthiest asset should score 100", func() {
			resp, err := svc.Assets(context.Background())
			So(err, ShouldBeNil)
			So(resp.Assets[1].HealthUI, ShouldEqual, 100)
			So(resp.Assets[0].HealthUI, ShouldEqual, 22.2)
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a service that ran twice", t, func() {
		svc := service.New(service.WithSource(twoAssetSource()), service.WithCostFloor(2))
		ctx := context.Background()
		_, _ = svc.Assets(ctx)
		_, _ = svc.Optimize(ctx)
		_, _ = svc.Optimize(ctx)

		Convey("Then stats should report configuration and counters", func() {
			stats := svc.GetStats()
			So(stats["budget"], ShouldEqual, 1500.0)
			So(stats["costFloor"], ShouldEqual, 2.0)
			So(stats["healthPolicy"], ShouldEqual, "fixed")
			So(stats["assetCalls"], ShouldEqual, int64(1))
			So(stats["runs"], ShouldEqual, int64(2))
			So(stats["failedRuns"], ShouldEqual, int64(0))
			So(stats["lastRunID"], ShouldNotBeEmpty)
		})
	})
}

func TestOptionsFromConfig(t *testing.T) {
	Convey("Given process configuration", t, func() {
		cfg := config.New()
		cfg.Budget = 100

		Convey("When a dataset file is configured", func() {
			path := filepath.Join(t.TempDir(), "assets.yaml")
			So(os.WriteFile(path, []byte(`
saidi: {1: 10, 2: 2}
saifi: {1: 5, 2: 1}
health: {1: 2000, 2: 9000}
cost: {1: 100, 2: 50}
`), 0o600), ShouldBeNil)
			cfg.DatasetPath = path

			opts, err := service.OptionsFromConfig(cfg)
			So(err, ShouldBeNil)
			res, err := service.New(opts...).Optimize(context.Background())

			Convey("Then the service should optimize that dataset", func() {
				So(err, ShouldBeNil)
				So(res.Budget, ShouldEqual, 100)
				So(res.SelectedCount, ShouldEqual, 1)
				So(res.ObjectiveValue, ShouldEqual, 0.82)
			})
		})

		Convey("When the dataset file is missing", func() {
			cfg.DatasetPath = filepath.Join(t.TempDir(), "missing.yaml")
			_, err := service.OptionsFromConfig(cfg)

			Convey("Then it should fail to load", func() {
				So(errors.Is(err, repository.ErrLoadDataset), ShouldBeTrue)
			})
		})

		Convey("When the policy is unknown", func() {
			cfg.Health.Policy = "median"
			_, err := service.OptionsFromConfig(cfg)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
