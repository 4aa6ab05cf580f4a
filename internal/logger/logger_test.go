package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]interface{}
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_FieldsAndCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug").WithFields(map[string]interface{}{"component": "cache"})

	ctx := WithCorrelationID(context.Background(), "abc-123")
	log.Info(ctx, "serving cached data", map[string]interface{}{"age_ms": 10})
	log.Error(ctx, "fetch failed", errors.New("boom"), nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "serving cached data", entries[0]["msg"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "cache", entries[0]["component"])
	assert.Equal(t, "abc-123", entries[0]["correlation_id"])
	assert.EqualValues(t, 10, entries[0]["age_ms"])
	assert.Contains(t, entries[0]["caller"], "logger_test.go")

	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Debug(context.Background(), "hidden", nil)
	log.Info(context.Background(), "hidden", nil)
	log.Warn(context.Background(), "shown", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestLogPerformance(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	LogPerformance(context.Background(), log, "basic_analysis", 1500*time.Millisecond, nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "performance", entries[0]["event_type"])
	assert.EqualValues(t, 1500, entries[0]["duration_ms"])
}

func TestNew_Outputs(t *testing.T) {
	_, err := New(Config{Level: "info", Format: "json", Output: "stdout"})
	assert.NoError(t, err)

	_, err = New(Config{Level: "info", Output: "file"})
	assert.Error(t, err)

	_, err = New(Config{Level: "info", Output: "syslog"})
	assert.Error(t, err)

	log, err := New(Config{
		Level:      "info",
		Format:     "text",
		Output:     "file",
		File:       filepath.Join(t.TempDir(), "logs", "ticketstats.log"),
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)
	log.Info(context.Background(), "written to file", nil)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.Error(context.Background(), "ignored", errors.New("x"), nil)
	})
}
