package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mrops-br/storefront-api/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestNewLogger_AddsServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.OTLPConfig{
		ServiceName: "storefront-api",
		Environment: "test",
		LogLevel:    slog.LevelInfo,
	})

	logger.Info("hello")

	record := decodeLine(t, &buf)
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "storefront-api", record["service.name"])
	assert.Equal(t, "test", record["environment"])
}

func TestNewLogger_InjectsTraceContextAndRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.OTLPConfig{LogLevel: slog.LevelDebug})

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	ctx = WithHTTPRoute(ctx, "/carts/{id}")

	logger.DebugContext(ctx, "traced")

	record := decodeLine(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["span_id"])
	assert.Equal(t, "/carts/{id}", record["http.route"])
}

func TestNewLogger_ResolvesRouteAtWriteTime(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.OTLPConfig{LogLevel: slog.LevelInfo})

	route := "/carts/abc"
	ctx := WithHTTPRouteFunc(context.Background(), func() string { return route })
	route = "/carts/{id}"

	logger.InfoContext(ctx, "matched")

	assert.Equal(t, "/carts/{id}", decodeLine(t, &buf)["http.route"])
	assert.Empty(t, HTTPRouteFromContext(context.Background()))
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.OTLPConfig{LogLevel: slog.LevelWarn})

	logger.Info("dropped")

	assert.Zero(t, buf.Len())
}
