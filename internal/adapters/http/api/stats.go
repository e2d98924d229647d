package api

import (
	"net/http"
)

// StatsProvider reports configuration and run counters.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler wraps provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{stats: provider}
}

// HandleStats writes the provider snapshot as JSON.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
