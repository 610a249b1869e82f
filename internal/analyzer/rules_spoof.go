package analyzer

import (
	"fmt"
	"strconv"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// detectSpoof implements RULE-SPOOF-*: flags telemetry_read readings that
// fall outside a rule's declared bounds or jump more than delta from the
// previous reading in the same (source, key) group, then runs the shared
// sliding-window accumulation over the anomaly list (spec.md §4.1).
func detectSpoof(events []contracts.Event, r config.Rule, p resolvedParams, alloc *alertIDAllocator) []contracts.Alert {
	readings := filterByEvent(events, "telemetry_read")
	order, groups := groupEvents(readings, bySourceKey)

	alerts := make([]contracts.Alert, 0)
	for _, key := range order {
		anomalies := anomaliesOf(groups[key], r)
		if len(anomalies) == 0 {
			continue
		}

		buf := accumulateFire(anomalies, p.WindowSec, p.Threshold)
		if buf == nil {
			continue
		}

		severity, confidence := r.Severity, r.Confidence
		if len(buf) >= 5 {
			severity, confidence = "high", 0.90
		}

		source, telemetryKey := splitIPSource(key)
		alerts = append(alerts, contracts.Alert{
			AlertID:      alloc.next(),
			RuleID:       r.ID,
			RuleName:     r.Name,
			ThreatType:   r.ThreatType,
			Severity:     severity,
			Confidence:   confidence,
			Timestamp:    contracts.FormatTimestamp(buf[0].TS),
			TS:           buf[0].TS,
			Component:    buf[0].Component,
			Source:       source,
			Description:  fmt.Sprintf("telemetry spoofing suspected on %s/%s (%d anomalous readings)", source, telemetryKey, len(buf)),
			EventCount:   len(buf),
			EventIDs:     eventIDsOf(buf),
			ResponseHint: r.ResponseHint,
		})
	}
	return alerts
}

// anomaliesOf walks a (source,key) group in timestamp order and returns
// the subsequence of events whose numeric value breaches the rule's
// bounds or jumps more than delta from the prior reading. Non-numeric
// values are skipped without error (spec.md §4.1 failure semantics).
func anomaliesOf(group []contracts.Event, r config.Rule) []contracts.Event {
	bound, hasBound := boundFor(r, group)
	delta, hasDelta := deltaFor(r, group)

	out := make([]contracts.Event, 0)
	havePrev := false
	var prev float64

	for _, e := range group {
		v, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			continue
		}

		anomalous := false
		if hasBound && (v < bound.Min || v > bound.Max) {
			anomalous = true
		}
		if !anomalous && hasDelta && havePrev {
			diff := v - prev
			if diff < 0 {
				diff = -diff
			}
			if diff > delta {
				anomalous = true
			}
		}
		if anomalous {
			out = append(out, e)
		}

		prev = v
		havePrev = true
	}
	return out
}

func boundFor(r config.Rule, group []contracts.Event) (config.Bound, bool) {
	if len(group) == 0 || r.Bounds == nil {
		return config.Bound{}, false
	}
	b, ok := r.Bounds[group[0].Key]
	return b, ok
}

func deltaFor(r config.Rule, group []contracts.Event) (float64, bool) {
	if len(group) == 0 || r.Delta == nil {
		return 0, false
	}
	d, ok := r.Delta[group[0].Key]
	return d, ok
}
