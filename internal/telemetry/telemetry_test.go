package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"classical-quiz/internal/config"
)

func resetProvider(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
}

func TestSetupNoneLeavesProvider(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{Exporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupUnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), config.TracingConfig{Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestSetupStdoutWritesSpansToFile(t *testing.T) {
	resetProvider(t)
	path := filepath.Join(t.TempDir(), "traces", "spans.json")

	shutdown, err := Setup(context.Background(), config.TracingConfig{Exporter: "stdout", File: path})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "quiz.select")
	span.End()

	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quiz.select")
	assert.Contains(t, string(data), serviceName)
}

func TestNewProviderExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewProvider(exporter)

	_, span := tp.Tracer("telemetry-test").Start(context.Background(), "quiz.round")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "quiz.round", spans[0].Name)

	require.NoError(t, tp.Shutdown(context.Background()))
}
