package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/storefront-api/internal/infrastructure/config"
	"github.com/mrops-br/storefront-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

func TestRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	var pattern string
	r.Get("/carts/{id}/items/{productID}", func(w http.ResponseWriter, req *http.Request) {
		pattern = RoutePattern(req)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/carts/42/items/7", nil))
	assert.Equal(t, "/carts/{id}/items/{productID}", pattern)

	// Without chi routing the raw path is used
	req := httptest.NewRequest(http.MethodGet, "/raw/path", nil)
	assert.Equal(t, "/raw/path", RoutePattern(req))
}

func TestHTTPRouteContext_LogsMatchedPattern(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.NewLogger(&buf, &config.OTLPConfig{LogLevel: slog.LevelInfo})

	r := chi.NewRouter()
	r.Use(HTTPRouteContext())
	r.Route("/carts", func(r chi.Router) {
		r.Put("/{id}/items/{productID}", func(w http.ResponseWriter, req *http.Request) {
			logger.InfoContext(req.Context(), "Cart quantity set")
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/carts/0b5d6c1e/items/42", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/carts/{id}/items/{productID}", entry["http.route"])
}

func TestStructuredLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "success logs at info", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error logs at warn", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error logs at error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			r := chi.NewRouter()
			r.Use(StructuredLogger(logger))
			r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/1?sort=rating", nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "/products/{id}", entry["http.route"])
			assert.Equal(t, "sort=rating", entry["url.query"])
			assert.EqualValues(t, tt.status, entry["http.response.status_code"])
		})
	}
}

func TestMetricMiddlewares_PassThrough(t *testing.T) {
	meter := metricnoop.NewMeterProvider().Meter("test")

	r := chi.NewRouter()
	r.Use(HTTPRouteContext())
	r.Use(ActiveRequestsMiddleware(meter))
	r.Use(DurationMillisecondsMiddleware(meter))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Delete("/carts/{id}", func(w http.ResponseWriter, _ *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	// A handler that never writes still completes
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/carts/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
