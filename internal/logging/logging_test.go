package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{})
	assert.NoError(t, err)
}

func TestNewWritesJSONFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solarwise.log")
	logger, err := New(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	id := uuid.New()
	logger.Info("stored tariff schedule",
		Schedule("domestic@2025.1.0"),
		SnapshotID(id),
		Decimal("total", decimal.RequireFromString("5310.00")))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &line))

	assert.Equal(t, "stored tariff schedule", line["msg"])
	assert.Equal(t, "domestic@2025.1.0", line[KeySchedule])
	assert.Equal(t, id.String(), line[KeySnapshotID])
	assert.Equal(t, "5310", line["total"])
}

func TestInitializeReplacesGlobal(t *testing.T) {
	before := Logger
	t.Cleanup(func() { Logger = before })

	require.NoError(t, Initialize(Config{Level: "warn", Output: "stderr"}))
	assert.NotSame(t, before, Logger)
	assert.NotNil(t, Named("test"))
}
