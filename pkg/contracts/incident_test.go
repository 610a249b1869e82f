package contracts_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

func TestIncidentToCSVRowFollowsColumnOrder(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inc := contracts.Incident{
		IncidentID: "INC-001", Policy: "standard", ThreatType: "outage",
		Severity: "critical", Component: "substation-a", EventCount: 3,
		StartTS: contracts.FormatTimestamp(ts), DetectTS: contracts.FormatTimestamp(ts.Add(10 * time.Second)),
		RecoverTS: contracts.FormatTimestamp(ts.Add(300 * time.Second)),
		MTTDSec: 10, MTTRSec: 290, ImpactScore: 0.8123,
		Description: "service outage", ResponseAction: "failover",
	}

	row, err := inc.ToCSVRow()
	require.NoError(t, err)
	fields := strings.Split(row, ",")
	require.Len(t, fields, len(contracts.IncidentCSVColumns))
	assert.Equal(t, "INC-001", fields[0])
	assert.Equal(t, "standard", fields[1])
	assert.Equal(t, "critical", fields[3])
}

func TestIncidentSeverityOrdinal(t *testing.T) {
	inc := contracts.Incident{Severity: "high"}
	assert.Equal(t, contracts.SeverityHigh, inc.SeverityOrdinal())
}
