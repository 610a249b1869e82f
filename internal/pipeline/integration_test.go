package pipeline_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/internal/pipeline"
)

// repoRoot locates the module root from this test file's own path so the
// integration test can load the checked-in config/ and testdata/ fixtures
// regardless of the working directory go test is invoked from.
func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// TestEndToEndBatchRunOverSampleFixture exercises the full
// load -> detect -> correlate -> compute chain across every shipped
// policy against the checked-in sample fixture, mirroring what `analyzer
// run` does in production.
func TestEndToEndBatchRunOverSampleFixture(t *testing.T) {
	root := repoRoot(t)

	rulesCfg, err := config.LoadRules(filepath.Join(root, "config"))
	require.NoError(t, err)
	policiesCfg, err := config.LoadPolicies(filepath.Join(root, "config"))
	require.NoError(t, err)

	events, err := pipeline.LoadEvents(filepath.Join(root, "testdata", "sample_events.csv"))
	require.NoError(t, err)
	require.NotEmpty(t, events)

	names := pipeline.ResolvePolicyNames("all", policiesCfg)
	require.ElementsMatch(t, []string{"hardened", "minimal", "standard"}, names)

	horizon := pipeline.Horizon(events, 0)
	results, err := pipeline.RunAll(events, names, rulesCfg, policiesCfg, horizon, nil, 4)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Metrics.AvailabilityPct, 0.0)
		assert.LessOrEqual(t, r.Metrics.AvailabilityPct, 100.0)
		for _, inc := range r.Incidents {
			assert.GreaterOrEqual(t, inc.ImpactScore, 0.0)
			assert.LessOrEqual(t, inc.ImpactScore, 1.0)
			assert.True(t, inc.EventCount >= 1)
		}
	}

	// The sample fixture contains a brute-force burst, a DDoS burst with
	// corroborating outage, anomalous voltage readings, an unauthorized
	// command and a feeder outage. Under the minimal policy the DDoS,
	// unauthorized-command and outage rules fire; the 5-failure burst stays
	// below minimal's raised brute-force threshold (5 × 1.2 = 6) and the two
	// anomalous voltage readings stay below the spoof threshold of 3.
	var minimal pipeline.Result
	for _, r := range results {
		if r.Policy == "minimal" {
			minimal = r
		}
	}
	require.NotEmpty(t, minimal.Alerts)
}

func TestEndToEndJSONLFixtureCorrelatesByExplicitTag(t *testing.T) {
	root := repoRoot(t)

	rulesCfg, err := config.LoadRules(filepath.Join(root, "config"))
	require.NoError(t, err)
	policiesCfg, err := config.LoadPolicies(filepath.Join(root, "config"))
	require.NoError(t, err)

	events, err := pipeline.LoadEvents(filepath.Join(root, "testdata", "sample_events.jsonl"))
	require.NoError(t, err)

	horizon := pipeline.Horizon(events, 0)
	result, err := pipeline.Run(events, "standard", rulesCfg, policiesCfg, horizon, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Alerts)
	// The brute-force alert and the unauthorized-command alert both carry
	// COR-7 in their event_ids, so they form a single incident.
	assert.Len(t, result.Incidents, 1)
}
