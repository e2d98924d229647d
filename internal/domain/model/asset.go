// Package model contains domain models passed between layers.
package model

import (
	"context"

	"github.com/shopspring/decimal"
)

// Field names a raw per-asset lookup exposed by a RawSource.
type Field string

// Raw fields. Names follow the upstream dataset keys.
const (
	FieldSAIDI     Field = "SAIDI"     // outage duration index
	FieldSAIFI     Field = "SAIFI"     // outage frequency index
	FieldHealth    Field = "HI"        // raw health index
	FieldCost      Field = "C"         // resource units required
	FieldType      Field = "TYPE"      // group label
	FieldCategory  Field = "K"         // 1 = public
	FieldRequestID Field = "REQUEST"   // pre-assigned request identifier
	FieldOperation Field = "OPERATION" // investment / maintenance flag
)

// RawSource is the read-only data provider behind the shaper. Any field may be
// absent for any id; lookups report presence with the boolean.
type RawSource interface {
	// IDs returns the ordered id universe.
	IDs(ctx context.Context) []int
	// Number looks up a numeric field.
	Number(ctx context.Context, field Field, id int) (float64, bool)
	// Text looks up a string field.
	Text(ctx context.Context, field Field, id int) (string, bool)
}

// RiskLabel buckets an asset by normalized health.
type RiskLabel string

// Risk labels, worst first.
const (
	RiskHigh   RiskLabel = "High"
	RiskMedium RiskLabel = "Medium"
	RiskLow    RiskLabel = "Low"
)

// OperationType tells whether an asset is planned as an investment or maintenance.
type OperationType string

// Operation types.
const (
	OperationInvestment  OperationType = "Investment"
	OperationMaintenance OperationType = "Maintenance"
)

// DefaultOperation applies when the source carries no operation flag.
const DefaultOperation = OperationInvestment

// DefaultGroup applies when the source carries no group label.
const DefaultGroup = "General"

// Asset is a shaped record. PriorityScore stays nil until the optimizer scores it.
type Asset struct {
	ID            int           `json:"id"`
	RequestLabel  string        `json:"request_label"`
	SAIDI         float64       `json:"saidi"`
	SAIFI         float64       `json:"saifi"`
	Cost          float64       `json:"cost"`
	Group         string        `json:"group"`
	IsPublic      bool          `json:"is_public"`
	RawHealth     float64       `json:"raw_health"`
	HealthUI      float64       `json:"health_ui"`
	RiskLabel     RiskLabel     `json:"risk_label"`
	OperationType OperationType `json:"operation_type"`
	PriorityScore *float64      `json:"priority_score,omitempty"`
}

// WithScore returns a copy of a carrying score.
func (a Asset) WithScore(score float64) Asset {
	a.PriorityScore = &score
	return a
}

// Round rounds v to places decimal digits, half away from zero. It rounds the
// shortest decimal form of v, not its exact binary value, so 2.675 becomes
// 2.68 even though the nearest float64 lies just below 2.675.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
