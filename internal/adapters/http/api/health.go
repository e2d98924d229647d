package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/assetopt/pkg/metrics"
)

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz requests.
// Prometheus scrapers asking for text or OpenMetrics get the metrics
// exposition; everyone else gets a JSON status.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if wantsMetrics(r.Header.Get("Accept")) {
		h.metrics.ServeHTTP(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleMetrics handles GET /metrics requests.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

func wantsMetrics(accept string) bool {
	accept = strings.ToLower(accept)
	return strings.Contains(accept, "application/openmetrics-text") || strings.Contains(accept, "text/plain")
}
