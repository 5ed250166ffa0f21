package logging

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "logs",
			appName: "wayfarer",
			want:    filepath.Join("logs", "wayfarer.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./logs",
			appName: "wayfarer",
			want:    filepath.Join(".", "logs", "wayfarer.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "wayfarer"),
			appName: "wayfarer",
			want:    filepath.Join("/var", "log", "wayfarer", "wayfarer.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, zerologLevel("trace"))
	assert.Equal(t, zerolog.DebugLevel, zerologLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, zerologLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, zerologLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, zerologLevel("bogus"))
}

func TestNewZerolog_WritesToEveryWriter(t *testing.T) {
	var a, b bytes.Buffer
	log := NewZerolog("info", &a, nil, &b)

	log.Debug().Msg("hidden")
	log.Info().Str("db", "sqlite").Msg("connected")

	for _, buf := range []*bytes.Buffer{&a, &b} {
		assert.Contains(t, buf.String(), "connected")
		assert.Contains(t, buf.String(), "db=")
		assert.NotContains(t, buf.String(), "hidden")
	}
	assert.NotContains(t, b.String(), "\x1b[", "only the first writer is colored")
}

func TestNewZerolog_NoWriters(t *testing.T) {
	log := NewZerolog("debug")
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestNewGraylogWriter_InvalidAddress(t *testing.T) {
	_, err := NewGraylogWriter("not an address", "wayfarer")
	assert.Error(t, err)
}
