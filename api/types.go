// Package api - API types for the solar calculator
// These types define the contract for the /calculator, /quality and /tariffs endpoints.
// API is stateless, idempotent, and deterministic.
package api

import (
	"solarwise/core/tariff"
	"solarwise/core/types"
)

// RecommendationRequest is the input to POST /calculator/recommendation
type RecommendationRequest struct {
	// MonthlyBillLKR is the customer's current monthly bill (required)
	MonthlyBillLKR *float64 `json:"monthly_bill_lkr"`

	// Category selects the tariff (optional, uses the server default)
	Category string `json:"category,omitempty"`
}

// FullRequest is the input to POST /calculator/full
type FullRequest struct {
	MonthlyBillLKR *float64 `json:"monthly_bill_lkr"`

	// SystemPriceLKR enables the ROI section when present
	SystemPriceLKR *float64 `json:"system_price_lkr,omitempty"`

	Category string `json:"category,omitempty"`
}

// BillRequest is the input to POST /calculator/bill
type BillRequest struct {
	Units    *float64 `json:"units"`
	Category string   `json:"category,omitempty"`
}

// UnitsRequest is the input to POST /calculator/units
type UnitsRequest struct {
	BillLKR  *float64 `json:"bill_lkr"`
	Category string   `json:"category,omitempty"`
}

// UnitsResponse is the output of POST /calculator/units
type UnitsResponse struct {
	Bill     types.Amount   `json:"bill"`
	Currency types.Currency `json:"currency"`
	Units    types.Units    `json:"units"`
}

// Response wraps every successful result
type Response struct {
	Data     interface{}       `json:"data"`
	Metadata *ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains execution metadata
type ResponseMetadata struct {
	RequestID     string `json:"request_id"`
	InputHash     string `json:"input_hash,omitempty"`
	EngineVersion string `json:"engine_version"`
	Schedule      string `json:"schedule,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
}

// ScheduleInfo summarises one registered schedule for GET /tariffs
type ScheduleInfo struct {
	Key         string           `json:"key"`
	Fingerprint string           `json:"fingerprint"`
	Schedule    *tariff.Schedule `json:"schedule"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
