// Package api - HTTP handlers for the solar calculator
// Handlers wrap the engine - they contain NO tariff logic.
// All logic is delegated to core packages.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"solarwise/core/quality"
	"solarwise/core/roi"
	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

// Handler handles calculator requests
type Handler struct {
	opts   Options
	logger *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(opts Options) *Handler {
	return &Handler{opts: opts, logger: opts.Logger}
}

// calculator resolves the active schedule for a category and wraps it in a calculator
func (h *Handler) calculator(category string) (*roi.Calculator, error) {
	cat := h.opts.DefaultCategory
	if category != "" {
		cat = tariff.Category(category)
		if !cat.IsValid() {
			return nil, errors.Inputf("unknown tariff category %q", category)
		}
	}
	biller, err := h.opts.Registry.Resolve(cat, h.opts.Now(), h.opts.VersionConstraint)
	if err != nil {
		return nil, err
	}
	return roi.NewCalculator(roi.NewEngine(biller, h.opts.Sizer, h.logger)), nil
}

// required rejects a numeric field the request body left out
func required(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, errors.Inputf("%s is required", field)
	}
	return *v, nil
}

// handleRecommendation handles POST /calculator/recommendation
func (h *Handler) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req RecommendationRequest
	if !h.decode(w, r, &req) {
		return
	}
	monthlyBill, err := required("monthly_bill_lkr", req.MonthlyBillLKR)
	if err != nil {
		writeError(w, r, err)
		return
	}

	calc, err := h.calculator(req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := calc.CalculateRecommendation(monthlyBill)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, rec, &req, calc, start)
}

// handleFull handles POST /calculator/full
func (h *Handler) handleFull(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req FullRequest
	if !h.decode(w, r, &req) {
		return
	}
	monthlyBill, err := required("monthly_bill_lkr", req.MonthlyBillLKR)
	if err != nil {
		writeError(w, r, err)
		return
	}

	calc, err := h.calculator(req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	full, err := calc.CalculateFull(monthlyBill, req.SystemPriceLKR)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, full, &req, calc, start)
}

// handleBill handles POST /calculator/bill
func (h *Handler) handleBill(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req BillRequest
	if !h.decode(w, r, &req) {
		return
	}
	units, err := required("units", req.Units)
	if err != nil {
		writeError(w, r, err)
		return
	}

	calc, err := h.calculator(req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bill, err := calc.CalculateBill(units)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, bill, &req, calc, start)
}

// handleUnits handles POST /calculator/units
func (h *Handler) handleUnits(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req UnitsRequest
	if !h.decode(w, r, &req) {
		return
	}
	billLKR, err := required("bill_lkr", req.BillLKR)
	if err != nil {
		writeError(w, r, err)
		return
	}

	calc, err := h.calculator(req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	units, err := calc.CalculateUnits(billLKR)
	if err != nil {
		writeError(w, r, err)
		return
	}
	schedule := calc.Engine().Biller().Schedule()
	// CalculateUnits already rejected anything ParseAmount would
	bill, _ := types.ParseAmount("bill_lkr", billLKR)
	resp := UnitsResponse{Bill: bill, Currency: schedule.Currency, Units: units}
	h.respond(w, r, resp, &req, calc, start)
}

// handleScore handles POST /quality/score
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req quality.Components
	if !h.decode(w, r, &req) {
		return
	}

	result, err := quality.Score(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, result, &req, nil, start)
}

// handleListTariffs handles GET /tariffs?category=
func (h *Handler) handleListTariffs(w http.ResponseWriter, r *http.Request) {
	category := tariff.Category(r.URL.Query().Get("category"))
	if category != "" && !category.IsValid() {
		writeError(w, r, errors.Inputf("unknown tariff category %q", category))
		return
	}

	infos := []ScheduleInfo{}
	for _, s := range h.opts.Registry.Schedules() {
		if category != "" && s.Category != category {
			continue
		}
		infos = append(infos, ScheduleInfo{Key: s.Key(), Fingerprint: s.Fingerprint(), Schedule: s})
	}
	writeJSON(w, map[string]interface{}{
		"schedules": infos,
		"count":     len(infos),
	}, http.StatusOK)
}

// handleListSnapshots handles GET /tariffs/snapshots
func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.opts.Store == nil {
		writeJSON(w, ErrorResponse{Error: ErrorBody{
			Code:      "STORE_UNAVAILABLE",
			Message:   "tariff store not configured",
			RequestID: requestIDFrom(r.Context()),
		}}, http.StatusServiceUnavailable)
		return
	}

	snaps, err := h.opts.Store.ListSnapshots(r.Context(), tariff.Category(r.URL.Query().Get("category")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"snapshots": snaps,
		"count":     len(snaps),
	}, http.StatusOK)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, errors.Wrap(errors.TypeInput, "invalid JSON request body", err))
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, data, req interface{}, calc *roi.Calculator, start time.Time) {
	meta := &ResponseMetadata{
		RequestID:     requestIDFrom(r.Context()),
		InputHash:     computeInputHash(req),
		EngineVersion: h.opts.Version,
		DurationMs:    time.Since(start).Milliseconds(),
	}
	if calc != nil {
		meta.Schedule = calc.Engine().Biller().Schedule().Key()
	}
	writeJSON(w, Response{Data: data, Metadata: meta}, http.StatusOK)
}
