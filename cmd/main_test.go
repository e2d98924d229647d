package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	app "github.com/okian/assetopt/internal/app"
	"github.com/okian/assetopt/internal/config"
	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func TestBuildMux(t *testing.T) {
	convey.Convey("Given the full route table over the sample dataset", t, func() {
		ctx := context.Background()
		mux, err := buildMux(ctx, app.New())
		convey.So(err, convey.ShouldBeNil)

		get := func(method, path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
			return w
		}

		convey.Convey("Then every surface should respond", func() {
			for _, path := range []string{"/", "/api/assets", "/api/optimize", "/healthz", "/metrics", "/stats", "/openapi.yaml", "/openapi.json", "/api-docs"} {
				convey.So(get("GET", path).Code, convey.ShouldEqual, http.StatusOK)
			}
			convey.So(get("GET", "/nope").Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then POST /api/optimize should return the sample selection", func() {
			w := get("POST", "/api/optimize")
			var res optimizer.Result
			convey.So(json.Unmarshal(w.Body.Bytes(), &res), convey.ShouldBeNil)
			convey.So(res.Status, convey.ShouldEqual, optimizer.StatusOptimal)
			convey.So(res.SelectedCount, convey.ShouldEqual, 20)
			convey.So(res.UsedBudget, convey.ShouldEqual, 1454)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a server bound to an ephemeral port", t, func() {
		_ = os.Setenv("ASSETOPT_ADDR", "127.0.0.1:0")
		defer func() { _ = os.Unsetenv("ASSETOPT_ADDR") }()

		convey.Convey("When the root context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then run should shut down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return after cancel")
				}
			})
		})
	})

	convey.Convey("Given invalid configuration", t, func() {
		_ = os.Setenv("ASSETOPT_HEALTH__POLICY", "median")
		defer func() { _ = os.Unsetenv("ASSETOPT_HEALTH__POLICY") }()

		convey.Convey("Then run should fail before serving", func() {
			err := run(context.Background())
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestEvery(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0

		convey.Convey("Then every should run once and return", func() {
			every(ctx, time.Hour, func() { calls++ })
			convey.So(calls, convey.ShouldEqual, 1)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metric updaters", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		convey.So(func() { refreshAssetMetrics(context.Background(), app.New()) }, convey.ShouldNotPanic)
	})
}

func TestDatasetName(t *testing.T) {
	convey.Convey("Given dataset configuration", t, func() {
		cfg := config.New()
		convey.So(datasetName(cfg), convey.ShouldEqual, "embedded sample")
		cfg.DatasetPath = "/data/assets.yaml"
		convey.So(datasetName(cfg), convey.ShouldEqual, "/data/assets.yaml")
	})
}
