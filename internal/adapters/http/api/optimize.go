package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/assetopt/internal/domain/optimizer"
	"github.com/okian/assetopt/pkg/logger"
)

// OptimizeDependencies defines the interface for running an optimization.
type OptimizeDependencies interface {
	Optimize(ctx context.Context) (optimizer.Result, error)
}

// OptimizeHandler handles optimization requests.
type OptimizeHandler struct {
	deps OptimizeDependencies
}

// NewOptimizeHandler creates a new optimize handler.
func NewOptimizeHandler(deps OptimizeDependencies) *OptimizeHandler {
	return &OptimizeHandler{deps: deps}
}

// HandleOptimize handles GET and POST /api/optimize. Both methods run the same
// stateless optimization; any request body is ignored.
func (h *OptimizeHandler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodPost}, ", "))
		writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}
	res, err := h.deps.Optimize(r.Context())
	if err != nil {
		// The service logs the failure itself.
		logger.Get().Debug(r.Context(), "optimize request failed",
			logger.String("request_id", RequestID(r.Context())),
			logger.String("kind", string(optimizer.KindOf(err))),
		)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
