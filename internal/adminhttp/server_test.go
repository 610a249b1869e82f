package adminhttp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelgrid/analyzer/internal/adminhttp"
	"github.com/sentinelgrid/analyzer/internal/telemetry"
)

func TestHealthzReturnsOK(t *testing.T) {
	srv := adminhttp.New(":0", telemetry.New())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	metrics := telemetry.New()
	metrics.EventsProcessed.Add(3)
	srv := adminhttp.New(":0", metrics)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sentinelgrid_analyzer_events_processed_total")
}
