package api

import (
	"context"
	"net/http"

	"github.com/okian/assetopt/internal/domain/types"
)

// AssetsDependencies defines the interface for listing shaped assets.
type AssetsDependencies interface {
	Assets(ctx context.Context) (types.AssetsResponse, error)
}

// AssetsHandler handles asset list requests.
type AssetsHandler struct {
	deps AssetsDependencies
}

// NewAssetsHandler creates a new assets handler.
func NewAssetsHandler(deps AssetsDependencies) *AssetsHandler {
	return &AssetsHandler{deps: deps}
}

// HandleGetAssets handles GET /api/assets requests.
func (h *AssetsHandler) HandleGetAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return
	}
	resp, err := h.deps.Assets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
