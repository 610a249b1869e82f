// Package telemetry exposes Prometheus instrumentation for the pipeline:
// events processed, alerts raised, incidents correlated and detection
// latency. Grounded on the teacher's internal/metrics/prometheus.go
// (promauto-registered collectors on a dedicated registry) trimmed to
// this system's single-process, no-multi-tenant concerns.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the pipeline updates during a run.
type Metrics struct {
	Registry *prometheus.Registry

	EventsProcessed   prometheus.Counter
	AlertsRaised      *prometheus.CounterVec
	IncidentsCreated  *prometheus.CounterVec
	DetectionLatency  prometheus.Histogram
	CorrelationLatency prometheus.Histogram
	ActivePolicyRuns  prometheus.Gauge
}

// New builds a fresh, isolated registry and set of collectors so tests and
// concurrent policy runs never clash on prometheus's global default
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinelgrid",
			Subsystem: "analyzer",
			Name:      "events_processed_total",
			Help:      "Total events fed into the detector across all policy runs.",
		}),
		AlertsRaised: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinelgrid",
			Subsystem: "analyzer",
			Name:      "alerts_raised_total",
			Help:      "Alerts raised by the detector, labeled by threat_type.",
		}, []string{"threat_type"}),
		IncidentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinelgrid",
			Subsystem: "analyzer",
			Name:      "incidents_created_total",
			Help:      "Incidents produced by the correlator, labeled by policy.",
		}, []string{"policy"}),
		DetectionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinelgrid",
			Subsystem: "analyzer",
			Name:      "detection_duration_seconds",
			Help:      "Wall-clock time to run the detector over one policy's events.",
			Buckets:   prometheus.DefBuckets,
		}),
		CorrelationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinelgrid",
			Subsystem: "analyzer",
			Name:      "correlation_duration_seconds",
			Help:      "Wall-clock time to run the correlator over one policy's alerts.",
			Buckets:   prometheus.DefBuckets,
		}),
		ActivePolicyRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sentinelgrid",
			Subsystem: "analyzer",
			Name:      "active_policy_runs",
			Help:      "Number of policy evaluations currently in flight.",
		}),
	}
}
