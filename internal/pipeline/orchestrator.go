package pipeline

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/internal/analyzer"
	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/internal/policy"
	"github.com/sentinelgrid/analyzer/internal/telemetry"
	"github.com/sentinelgrid/analyzer/pkg/common"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

const mergeWindowSec = 120.0

// Result is one policy's full detect→correlate→metrics output.
type Result struct {
	Policy    string
	Alerts    []contracts.Alert
	Incidents []contracts.Incident
	Metrics   contracts.PolicyMetrics
}

// Horizon implements spec.md §4.5's horizon rule: an explicit horizon_days
// wins; otherwise the observed event span (floored at one hour); otherwise
// one hour for an empty or single-event input.
func Horizon(events []contracts.Event, horizonDays float64) float64 {
	if horizonDays > 0 {
		return horizonDays * 86400
	}
	if len(events) < 2 {
		return 3600
	}
	span := events[len(events)-1].TS.Sub(events[0].TS).Seconds()
	if span < 3600 {
		return 3600
	}
	return span
}

// Run executes the detect→correlate→metrics chain for a single policy.
func Run(events []contracts.Event, policyName string, rules config.RulesConfig, policies config.PoliciesConfig, horizonSec float64, metrics *telemetry.Metrics) (Result, error) {
	mods := policy.Modifiers(policies, policyName)

	if metrics != nil {
		metrics.ActivePolicyRuns.Inc()
		defer metrics.ActivePolicyRuns.Dec()
	}

	start := time.Now()
	alerts, err := analyzer.Detect(events, rules, mods)
	if err != nil {
		return Result{}, common.WrapError(err, "detection failed", map[string]interface{}{"policy": policyName})
	}
	if metrics != nil {
		metrics.DetectionLatency.Observe(time.Since(start).Seconds())
		metrics.EventsProcessed.Add(float64(len(events)))
		for _, a := range alerts {
			metrics.AlertsRaised.WithLabelValues(a.ThreatType).Inc()
		}
	}

	start = time.Now()
	incidents, err := analyzer.Correlate(alerts, policyName, mods, mergeWindowSec)
	if err != nil {
		return Result{}, common.WrapError(err, "correlation failed", map[string]interface{}{"policy": policyName})
	}
	if metrics != nil {
		metrics.CorrelationLatency.Observe(time.Since(start).Seconds())
		metrics.IncidentsCreated.WithLabelValues(policyName).Add(float64(len(incidents)))
	}

	policyMetrics, err := analyzer.Compute(incidents, policyName, horizonSec)
	if err != nil {
		return Result{}, common.WrapError(err, "metrics computation failed", map[string]interface{}{"policy": policyName})
	}

	return Result{Policy: policyName, Alerts: alerts, Incidents: incidents, Metrics: policyMetrics}, nil
}

// RunAll evaluates every named policy against the same event slice. Each
// policy is independent (spec.md §5) so evaluation is fanned out across a
// bounded worker pool, then reassembled in the caller-supplied order.
func RunAll(events []contracts.Event, policyNames []string, rules config.RulesConfig, policies config.PoliciesConfig, horizonSec float64, metrics *telemetry.Metrics, maxWorkers int) ([]Result, error) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make([]Result, len(policyNames))
	errs := make([]error, len(policyNames))

	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	for i, name := range policyNames {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := Run(events, name, rules, policies, horizonSec, metrics)
			results[i] = res
			errs[i] = err
		}(i, name)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			common.Error("policy evaluation failed", err, zap.String("policy", policyNames[i]))
			return nil, err
		}
	}
	return results, nil
}

// AllIncidents flattens every result's incidents, sorted by start time
// within each policy and grouped by the caller's policy order.
func AllIncidents(results []Result) []contracts.Incident {
	var all []contracts.Incident
	for _, r := range results {
		all = append(all, r.Incidents...)
	}
	return all
}

// AllMetrics extracts the per-policy metrics in result order.
func AllMetrics(results []Result) []contracts.PolicyMetrics {
	out := make([]contracts.PolicyMetrics, len(results))
	for i, r := range results {
		out[i] = r.Metrics
	}
	return out
}

// ResolvePolicyNames expands "all"/empty into every known policy (sorted,
// since no caller order exists to preserve) or a comma list into a
// deduplicated policy name list in the caller's own order — spec.md §5's
// ordering guarantee requires `--policies standard,minimal` to emit
// results in that exact order, not alphabetized.
func ResolvePolicyNames(selection string, policies config.PoliciesConfig) []string {
	if selection == "" || selection == "all" {
		return policy.ListNames(policies)
	}
	var names []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(selection, ",") {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
