// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Assets returns the freshly shaped asset list with its KPIs.
	Assets(ctx context.Context) (types.AssetsResponse, error)
	// Optimize runs one stateless optimization.
	Optimize(ctx context.Context) (optimizer.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	assetsHandler   *AssetsHandler
	optimizeHandler *OptimizeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		assetsHandler:   NewAssetsHandler(deps),
		optimizeHandler: NewOptimizeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/assets", RequestIDMiddleware(MetricsMiddleware(s.assetsHandler.HandleGetAssets, "assets")))
	mux.HandleFunc("/api/optimize", RequestIDMiddleware(MetricsMiddleware(s.optimizeHandler.HandleOptimize, "optimize")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Status: types.StatusError, Error: msg})
}
