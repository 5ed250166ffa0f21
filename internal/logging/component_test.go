package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-go/wayfarer/internal/dispatcher"
)

var _ dispatcher.Logger = (*ComponentLogger)(nil)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestComponentLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	dl := NewComponentLogger(zerolog.New(&buf).Level(zerolog.DebugLevel), "dispatcher")

	dl.Debug("test message", "key1", "value1", "key2", 42)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "test message", entry["message"])
	assert.Equal(t, "value1", entry["key1"])
	assert.Equal(t, float64(42), entry["key2"])
	assert.Equal(t, "dispatcher", entry["component"])
}

func TestComponentLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	dl := NewComponentLogger(zerolog.New(&buf), "notify")

	dl.Info("info message", "topic", "tick")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "tick", entry["topic"])
}

func TestComponentLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewComponentLogger(zerolog.New(&buf), "notify")

	dl.Error("buffered handler failed", "topic", "login", "error", errors.New("sink down"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "sink down", entry["error"])
}

func TestComponentLogger_LevelFiltered(t *testing.T) {
	var buf bytes.Buffer
	dl := NewComponentLogger(zerolog.New(&buf).Level(zerolog.InfoLevel), "dispatcher")

	dl.Debug("hidden")
	assert.Empty(t, buf.String())
}
