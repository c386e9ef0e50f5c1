package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarwise/core/tariff"
	"solarwise/db"
	"solarwise/internal/config"
	"solarwise/internal/errors"
)

var june2025 = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestNewWithBuiltinSchedule(t *testing.T) {
	a, err := New(context.Background(), config.Default(), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Store)
	assert.Len(t, a.Registry.Schedules(), 1)

	calc, err := a.Calculator("", june2025)
	require.NoError(t, err)
	rec, err := calc.CalculateRecommendation(15000)
	require.NoError(t, err)
	assert.Equal(t, "2.8", rec.CapacityKW.String())
}

func TestNewWithFilesAndStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tariffs.db")

	// seed the store with an active industrial schedule
	store, err := db.OpenSQLite(dbPath, nil)
	require.NoError(t, err)
	industrial := tariff.CEBDomestic2025()
	industrial.Category = tariff.CategoryIndustrial
	snap, err := store.SaveSchedule(ctx, industrial, "test")
	require.NoError(t, err)
	require.NoError(t, store.Activate(ctx, snap.ID))
	require.NoError(t, store.Close())

	cfg := config.Default()
	cfg.Tariff.ScheduleFiles = []string{filepath.Join("..", "..", "adapters", "schedule", "testdata")}
	cfg.Tariff.DatabasePath = dbPath

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Store)

	// builtin and the identical HCL file collapse into one entry
	keys := make([]string, 0)
	for _, s := range a.Registry.Schedules() {
		keys = append(keys, s.Key())
	}
	assert.Equal(t, []string{
		"domestic@2024.1.0",
		"domestic@2025.1.0",
		"industrial@2025.1.0",
		"religious@2025.1.0",
	}, keys)

	calc, err := a.Calculator("domestic", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024.1.0", calc.Engine().Biller().Schedule().Version)

	_, err = a.Calculator("industrial", june2025)
	require.NoError(t, err)
}

func TestCalculatorErrors(t *testing.T) {
	a, err := New(context.Background(), config.Default(), nil)
	require.NoError(t, err)

	_, err = a.Calculator("martian", june2025)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = a.Calculator("commercial", june2025)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	_, err = a.Calculator("domestic", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestNewWithoutSchedules(t *testing.T) {
	cfg := config.Default()
	cfg.Tariff.SkipBuiltin = true

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestServerServesRegistry(t *testing.T) {
	a, err := New(context.Background(), config.Default(), nil)
	require.NoError(t, err)

	srv, err := a.Server()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tariffs/snapshots", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
