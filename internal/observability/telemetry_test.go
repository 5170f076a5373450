package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInstallProviderRecordsSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	recorder := tracetest.NewSpanRecorder()
	shutdown, err := installProvider(context.Background(), "tilemap-test", trace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "op", spans[0].Name())
	assert.Equal(t, "tilemap-test", serviceName(spans[0]))

	require.NoError(t, shutdown(context.Background()))
}

func serviceName(span trace.ReadOnlySpan) string {
	for _, attr := range span.Resource().Attributes() {
		if attr.Key == "service.name" {
			return attr.Value.AsString()
		}
	}
	return ""
}

func TestExporterOptions(t *testing.T) {
	assert.Empty(t, exporterOptions("", false))
	assert.Len(t, exporterOptions("collector:4318", false), 1)
	assert.Len(t, exporterOptions("collector:4318", true), 2)
}

func TestInitTelemetryExportsToEndpoint(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var requests atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			requests.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	endpoint := strings.TrimPrefix(collector.URL, "http://")
	shutdown, err := InitTelemetry(context.Background(), "tilemap-test", endpoint, true)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "fill")
	span.End()

	// shutdown сбрасывает батч в экспортер
	require.NoError(t, shutdown(context.Background()))
	assert.GreaterOrEqual(t, requests.Load(), int32(1))
}
