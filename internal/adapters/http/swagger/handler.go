// Package swagger serves the OpenAPI document and a ReDoc viewer.
package swagger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

// Error constants.
var (
	ErrServe = errors.New("swagger serve failed")
)

// redocBundle is loaded by the viewer page.
const redocBundle = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"

// Register attaches the ReDoc page and the OpenAPI document routes to mux.
// Routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
//	GET /openapi.json  -> the same document as JSON
func Register(_ context.Context, mux *http.ServeMux) error {
	if mux == nil {
		panic("mux is nil")
	}
	doc, err := toJSON(OpenAPI)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(doc)
	})
	return nil
}

func toJSON(src []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi: %w", err)
	}
	if _, ok := doc["paths"]; !ok {
		return nil, errors.New("openapi document has no paths")
	}
	return json.Marshal(doc)
}

// Minimal HTML that loads ReDoc and points it at /openapi.yaml.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Asset Prioritization API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + redocBundle + `"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
