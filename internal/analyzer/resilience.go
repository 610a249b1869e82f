package analyzer

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/pkg/common"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// interval is a half-open [start, end] downtime span in wall-clock time.
type interval struct{ start, end time.Time }

// Compute aggregates incidents into resilience metrics over horizonSec
// (spec.md §4.3). Only high/critical incidents with valid, ordered
// detect_ts/recover_ts contribute to downtime; every incident contributes
// to the mean MTTD/MTTR and the severity/threat breakdowns.
func Compute(incidents []contracts.Incident, policyName string, horizonSec float64) (contracts.PolicyMetrics, error) {
	m := contracts.NewPolicyMetrics(policyName)
	if len(incidents) == 0 {
		return m, nil
	}

	var intervals []interval
	var mttdSum, mttrSum float64

	for _, inc := range incidents {
		mttdSum += inc.MTTDSec
		mttrSum += inc.MTTRSec

		m.IncidentsTotal++
		m.IncidentsBySeverity[inc.Severity]++
		m.IncidentsByThreat[inc.ThreatType]++

		if !inc.SeverityOrdinal().IsHighOrCritical() {
			continue
		}
		if inc.DetectTS == "" || inc.RecoverTS == "" {
			common.Warn("high-severity incident missing detect/recover timestamps, excluded from downtime",
				zap.String("incident_id", inc.IncidentID))
			continue
		}
		if !inc.RecoverTime.After(inc.DetectTime) {
			common.Warn("high-severity incident has non-positive recovery span, excluded from downtime",
				zap.String("incident_id", inc.IncidentID))
			continue
		}
		intervals = append(intervals, interval{inc.DetectTime, inc.RecoverTime})
	}

	merged := mergeIntervals(intervals)
	var downtimeSec float64
	for _, iv := range merged {
		downtimeSec += iv.end.Sub(iv.start).Seconds()
	}

	if horizonSec <= 0 {
		m.AvailabilityPct = 100
	} else {
		pct := (1 - downtimeSec/horizonSec) * 100
		if pct < 0 {
			pct = 0
		}
		m.AvailabilityPct = roundTo(pct, 100)
	}
	m.TotalDowntimeHr = roundTo(downtimeSec/3600, 10000)
	m.MeanMTTDMin = roundTo(mttdSum/float64(len(incidents))/60, 100)
	m.MeanMTTRMin = roundTo(mttrSum/float64(len(incidents))/60, 100)

	return m, nil
}

// mergeIntervals sorts by start and sweeps, extending the current interval
// when the next one starts at or before its end (spec.md §4.3). The
// result is pairwise disjoint and sorted, satisfying the idempotence law:
// merging an already-merged list leaves it unchanged.
func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start.Before(sorted[j].start) })

	out := []interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &out[len(out)-1]
		if !cur.start.After(last.end) {
			if cur.end.After(last.end) {
				last.end = cur.end
			}
			continue
		}
		out = append(out, cur)
	}
	return out
}
