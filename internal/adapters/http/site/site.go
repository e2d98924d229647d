// Package site renders the dashboard page.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/okian/assetopt/internal/domain/types"
	"github.com/okian/assetopt/pkg/logger"
)

// Error constants
var (
	ErrRender = errors.New("dashboard render failed")
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// AssetsProvider supplies the data rendered on the dashboard.
type AssetsProvider interface {
	Assets(ctx context.Context) (types.AssetsResponse, error)
}

// Register attaches the dashboard at / to mux. Any other unmatched path is a 404.
func Register(_ context.Context, mux *http.ServeMux, assets AssetsProvider) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler(assets))
}

// RootHandler handles root path requests.
type RootHandler struct {
	assets AssetsProvider
}

// NewRootHandler creates a new root handler.
func NewRootHandler(assets AssetsProvider) *RootHandler {
	return &RootHandler{assets: assets}
}

// ServeHTTP handles GET / requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	page, err := h.render(r.Context())
	if err != nil {
		logger.Get().Error(r.Context(), "dashboard render failed", logger.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (h *RootHandler) render(ctx context.Context) ([]byte, error) {
	data, err := h.assets.Assets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}
