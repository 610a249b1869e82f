// Package adminhttp serves the operational surface available while the
// watch loop runs: a liveness probe and the Prometheus scrape endpoint.
// This is not the dashboard named out of scope in spec.md §1 — it carries
// no event/incident data, only process health and counters. Grounded on
// the teacher's chi-based HTTP wiring conventions (see also
// Tutu-Engine-tutuengine and skywalker-88-stormgate in the reference
// pack, both chi routers).
package adminhttp

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentinelgrid/analyzer/internal/telemetry"
	"github.com/sentinelgrid/analyzer/pkg/common"
)

// Server is the admin HTTP surface exposed during watch mode.
type Server struct {
	httpServer *http.Server
	runID      string
}

// New builds the admin server bound to addr, serving /healthz and
// /metrics (backed by metrics.Registry).
func New(addr string, metrics *telemetry.Metrics) *Server {
	runID := uuid.NewString()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","run_id":"` + runID + `"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return &Server{
		runID: runID,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Start runs the server in the background; errors other than a clean
// shutdown are logged, not propagated, since the admin surface is
// best-effort and must never take down the analysis loop.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.Error("admin http server stopped unexpectedly", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the underlying router for in-process testing via
// httptest, without requiring a bound network port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
