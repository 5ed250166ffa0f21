package otel

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), Config{LogWriter: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutExporter(t *testing.T) {
	_, err := New(context.Background(), Config{Enabled: true})
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_FileExporterWritesRecords(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), Config{Enabled: true, ServiceVersion: "1.2.3", LogWriter: &buf})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	var rec otellog.Record
	rec.SetBody(otellog.StringValue("tick finished"))
	p.LoggerProvider().Logger("test").Emit(context.Background(), rec)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "tick finished")
	assert.Contains(t, buf.String(), "wayfarer")
	assert.Contains(t, buf.String(), "1.2.3")
	assert.NoError(t, p.Shutdown(context.Background()))
}
