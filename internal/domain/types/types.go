// Package types contains the API shapes shared by the HTTP and CLI surfaces.
package types

import "github.com/okian/assetopt/internal/domain/model"

// KPI summarizes a shaped snapshot for the dashboard header.
type KPI struct {
	TotalAssets   int     `json:"total_assets"`
	HighRiskCount int     `json:"high_risk_count"`
	AvgHealth     float64 `json:"avg_health"`
	Budget        float64 `json:"budget"`
}

// AssetsResponse is the read endpoint payload.
type AssetsResponse struct {
	Assets []model.Asset `json:"assets"`
	KPI    KPI           `json:"kpi"`
}

// ErrorResponse is returned when an optimization run fails.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// StatusError is the status literal carried by ErrorResponse.
const StatusError = "Error"
