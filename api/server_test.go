package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/db"
)

func newTestServer(t *testing.T, store db.TariffStore) *Server {
	t.Helper()
	registry := tariff.NewRegistry(nil)
	_, err := registry.Register(tariff.CEBDomestic2025())
	require.NoError(t, err)
	sizer, err := sizing.New(sizing.DefaultConfig(), nil)
	require.NoError(t, err)

	s, err := NewServer(Options{
		Version:  "test",
		Registry: registry,
		Sizer:    sizer,
		Store:    store,
		Now:      func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "no data in %v", body)
	return d
}

func TestRecommendationEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := do(t, s, http.MethodPost, "/calculator/recommendation", `{"monthly_bill_lkr": 15000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	d := data(t, body)
	assert.Equal(t, "2.8", d["capacity_kw"])
	assert.Equal(t, "357", d["estimated_units"])
	assert.Equal(t, "336000", d["min_price_range"])
	assert.Equal(t, "504000", d["max_price_range"])

	meta := body["metadata"].(map[string]interface{})
	assert.Equal(t, "domestic@2025.1.0", meta["schedule"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), meta["request_id"])
	assert.Len(t, meta["input_hash"], 64)
}

func TestFullEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := do(t, s, http.MethodPost, "/calculator/full", `{"monthly_bill_lkr": 25000, "system_price_lkr": 700000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	roi := data(t, body)["roi"].(map[string]interface{})
	assert.Equal(t, "2.3", roi["payback_years"])
	assert.Equal(t, true, roi["recommended"])

	rec, body = do(t, s, http.MethodPost, "/calculator/full", `{"monthly_bill_lkr": 25000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, data(t, body)["roi"])

	rec, body = do(t, s, http.MethodPost, "/calculator/full", `{"monthly_bill_lkr": 0, "system_price_lkr": 500000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	roi = data(t, body)["roi"].(map[string]interface{})
	assert.Nil(t, roi["payback_years"])
	assert.Equal(t, false, roi["recommended"])
}

func TestBillAndUnitsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := do(t, s, http.MethodPost, "/calculator/bill", `{"units": 180}`)
	require.Equal(t, http.StatusOK, rec.Code)
	bill := data(t, body)
	assert.Equal(t, "5310", bill["total"])
	assert.Equal(t, "standard", bill["regime"])
	assert.Len(t, bill["breakdown"], 4)

	rec, body = do(t, s, http.MethodPost, "/calculator/units", `{"bill_lkr": 5310}`)
	require.Equal(t, http.StatusOK, rec.Code)
	units := data(t, body)
	assert.Equal(t, "180", units["units"])
	assert.Equal(t, "LKR", units["currency"])
}

func TestScoreEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := do(t, s, http.MethodPost, "/quality/score", `{"panel": 8, "inverter": 6, "battery": 9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7.4", data(t, body)["score"])
	assert.Equal(t, true, data(t, body)["sufficient"])

	rec, _ = do(t, s, http.MethodPost, "/quality/score", `{"panel": 12}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"negative bill", "/calculator/recommendation", `{"monthly_bill_lkr": -5}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"negative price", "/calculator/full", `{"monthly_bill_lkr": 100, "system_price_lkr": -1}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"malformed json", "/calculator/bill", `{"units":`, http.StatusBadRequest, "INPUT_ERROR"},
		{"unknown field", "/calculator/bill", `{"kwh": 10}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"unknown category", "/calculator/bill", `{"units": 10, "category": "martian"}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"no schedule for category", "/calculator/bill", `{"units": 10, "category": "industrial"}`, http.StatusNotFound, "NOT_FOUND"},
		{"missing bill", "/calculator/recommendation", `{}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"missing bill with price", "/calculator/full", `{"system_price_lkr": 500000}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"missing units", "/calculator/bill", `{"category": "domestic"}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"missing bill amount", "/calculator/units", `{}`, http.StatusBadRequest, "INPUT_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			errBody := body["error"].(map[string]interface{})
			assert.Equal(t, tt.code, errBody["code"])
			assert.Equal(t, rec.Header().Get("X-Request-ID"), errBody["request_id"])
		})
	}
}

func TestMissingBillIsNotTreatedAsZero(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := do(t, s, http.MethodPost, "/calculator/full", `{"system_price_lkr": 500000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Contains(t, errBody["message"], "monthly_bill_lkr is required")

	// an explicit zero is still a valid bill
	rec, _ = do(t, s, http.MethodPost, "/calculator/full", `{"monthly_bill_lkr": 0, "system_price_lkr": 500000}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTariffEndpoints(t *testing.T) {
	store, err := db.OpenSQLite(filepath.Join(t.TempDir(), "tariffs.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	s := newTestServer(t, store)

	rec, body := do(t, s, http.MethodGet, "/tariffs?category=domestic", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	first := body["schedules"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "domestic@2025.1.0", first["key"])
	assert.Equal(t, tariff.CEBDomestic2025().Fingerprint(), first["fingerprint"])

	rec, body = do(t, s, http.MethodGet, "/tariffs?category=religious", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])

	rec, body = do(t, s, http.MethodGet, "/tariffs/snapshots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])

	withoutStore := newTestServer(t, nil)
	rec, _ = do(t, withoutStore, http.MethodGet, "/tariffs/snapshots", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, nil)

	rec, body := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["schedules"])

	rec, body = do(t, s, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", body["version"])
}

func TestNewServerRequiresRegistryAndSizer(t *testing.T) {
	_, err := NewServer(Options{})
	assert.Error(t, err)
}
