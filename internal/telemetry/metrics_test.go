package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelgrid/analyzer/internal/telemetry"
)

func TestNewRegistersAllCollectorsOnIsolatedRegistry(t *testing.T) {
	m := telemetry.New()
	require.NotNil(t, m.Registry)

	m.EventsProcessed.Add(1)
	m.AlertsRaised.WithLabelValues("credential_attack").Inc()
	m.IncidentsCreated.WithLabelValues("standard").Inc()
	m.DetectionLatency.Observe(0.1)
	m.CorrelationLatency.Observe(0.2)
	m.ActivePolicyRuns.Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewInstancesAreIndependent(t *testing.T) {
	a := telemetry.New()
	b := telemetry.New()

	a.EventsProcessed.Add(5)

	famA, err := a.Registry.Gather()
	require.NoError(t, err)
	famB, err := b.Registry.Gather()
	require.NoError(t, err)

	var gotA, gotB float64
	for _, f := range famA {
		if f.GetName() == "sentinelgrid_analyzer_events_processed_total" {
			gotA = f.Metric[0].GetCounter().GetValue()
		}
	}
	for _, f := range famB {
		if f.GetName() == "sentinelgrid_analyzer_events_processed_total" {
			gotB = f.Metric[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 5.0, gotA)
	assert.Equal(t, 0.0, gotB)
}
