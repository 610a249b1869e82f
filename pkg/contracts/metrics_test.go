package contracts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

func TestNewPolicyMetricsIsFullyAvailableBaseline(t *testing.T) {
	m := contracts.NewPolicyMetrics("standard")
	assert.Equal(t, 100.0, m.AvailabilityPct)
	assert.Equal(t, 0, m.IncidentsTotal)
	assert.NotNil(t, m.IncidentsBySeverity)
	assert.NotNil(t, m.IncidentsByThreat)
}

func TestPolicyMetricsToCSVRowFollowsColumnOrder(t *testing.T) {
	m := contracts.NewPolicyMetrics("standard")
	m.IncidentsTotal = 2
	m.IncidentsBySeverity["critical"] = 1
	m.IncidentsBySeverity["high"] = 1
	m.IncidentsByThreat["outage"] = 2

	row := m.ToCSVRow()
	fields := strings.Split(row, ",")
	require := assert.New(t)
	require.Len(fields, len(contracts.ResultsCSVColumns))
	require.Equal("standard", fields[0])
	require.Equal("2", fields[5])
	require.Equal("1", fields[6])
	require.Equal("1", fields[7])
}
