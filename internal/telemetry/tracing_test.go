package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Togather-Foundation/mapgen/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_InvalidSampleRate(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "none", SampleRate: 2}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sample rate")
}

func TestInitTracing_UnsupportedExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 1}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter")
}

func TestInitTracing_StdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := initTracing(ctx, config.TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		ServiceName: "mapgen-test",
		SampleRate:  1,
	}, "test", &buf)
	require.NoError(t, err)

	_, span := GetTracer("test").Start(ctx, "generator.Create")
	span.End()
	require.NoError(t, shutdown(ctx))

	assert.True(t, strings.Contains(buf.String(), "generator.Create"), buf.String())
}
