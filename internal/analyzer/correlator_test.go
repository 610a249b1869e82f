package analyzer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelgrid/analyzer/internal/analyzer"
	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

func mkAlert(id, ruleID, threatType, severity, component, source string, ts time.Time, eventIDs string) contracts.Alert {
	return contracts.Alert{
		AlertID:      id,
		RuleID:       ruleID,
		RuleName:     ruleID,
		ThreatType:   threatType,
		Severity:     severity,
		Confidence:   0.9,
		Timestamp:    contracts.FormatTimestamp(ts),
		TS:           ts,
		Component:    component,
		Source:       source,
		Description:  "test alert",
		EventCount:   1,
		EventIDs:     eventIDs,
		ResponseHint: "investigate",
	}
}

func TestCorrelateByExplicitTagMergesAcrossComponents(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	alerts := []contracts.Alert{
		mkAlert("ALR-0001", "RULE-BF-001", "credential_attack", "high", "substation-a", "meter-01", base, "COR-100"),
		mkAlert("ALR-0002", "RULE-UCMD-001", "integrity_attack", "critical", "substation-z", "relay-9", base.Add(90*time.Second), "COR-100"),
	}

	incidents, err := analyzer.Correlate(alerts, "standard", map[string]config.ResolvedModifiers{}, 120)
	require.NoError(t, err)
	require.Len(t, incidents, 1)

	inc := incidents[0]
	assert.Equal(t, 2, inc.EventCount)
	assert.Equal(t, "critical", inc.Severity)
	assert.Contains(t, inc.Component, "substation-a")
	assert.Contains(t, inc.Component, "substation-z")
}

func TestCorrelateByLocalityGroupsWithinMergeWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	alerts := []contracts.Alert{
		mkAlert("ALR-0001", "RULE-BF-001", "credential_attack", "high", "substation-a", "meter-01", base, ""),
		mkAlert("ALR-0002", "RULE-BF-001", "credential_attack", "high", "substation-a", "meter-02", base.Add(60*time.Second), ""),
		mkAlert("ALR-0003", "RULE-BF-001", "credential_attack", "high", "substation-a", "meter-03", base.Add(900*time.Second), ""),
	}

	incidents, err := analyzer.Correlate(alerts, "standard", map[string]config.ResolvedModifiers{}, 120)
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, 2, incidents[0].EventCount)
	assert.Equal(t, 1, incidents[1].EventCount)
}

func TestCorrelateIncidentSeverityIsMaxOfMembers(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	alerts := []contracts.Alert{
		mkAlert("ALR-0001", "RULE-SPOOF-001", "integrity_attack", "medium", "substation-a", "meter-01", base, ""),
		mkAlert("ALR-0002", "RULE-UCMD-001", "integrity_attack", "critical", "substation-a", "relay-1", base.Add(30*time.Second), ""),
	}

	incidents, err := analyzer.Correlate(alerts, "standard", map[string]config.ResolvedModifiers{}, 120)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "critical", incidents[0].Severity)
}

func TestCorrelateImpactScoreIsClamped(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	alerts := []contracts.Alert{
		mkAlert("ALR-0001", "RULE-UCMD-001", "integrity_attack", "critical", "substation-a", "relay-1", base, ""),
	}
	impactMult := 5.0
	modifiers := map[string]config.ResolvedModifiers{
		"integrity_attack": config.PolicyModifiers{ImpactMultiplier: &impactMult}.Resolve(),
	}

	incidents, err := analyzer.Correlate(alerts, "standard", modifiers, 120)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.LessOrEqual(t, incidents[0].ImpactScore, 1.0)
	assert.GreaterOrEqual(t, incidents[0].ImpactScore, 0.0)
}

func TestCorrelateEmptyInput(t *testing.T) {
	incidents, err := analyzer.Correlate(nil, "standard", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestCorrelateDetectRecoverArithmetic(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	alerts := []contracts.Alert{
		mkAlert("ALR-0001", "RULE-BF-001", "credential_attack", "high", "substation-a", "meter-01", base, ""),
	}

	incidents, err := analyzer.Correlate(alerts, "standard", map[string]config.ResolvedModifiers{}, 120)
	require.NoError(t, err)
	require.Len(t, incidents, 1)

	inc := incidents[0]
	assert.Equal(t, inc.StartTime.Add(time.Duration(inc.MTTDSec*float64(time.Second))), inc.DetectTime)
	assert.Equal(t, inc.DetectTime.Add(time.Duration(inc.MTTRSec*float64(time.Second))), inc.RecoverTime)
}
