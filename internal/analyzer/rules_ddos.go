package analyzer

import (
	"fmt"
	"time"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

var ddosServiceImpactValues = map[string]bool{"degraded": true, "down": true}

// detectDDoS implements RULE-DDOS-*: sliding-window accumulation over
// rate_exceeded events per source, escalated to critical when a
// corroborating service_status event appears within 120s (spec.md §4.1).
func detectDDoS(events []contracts.Event, r config.Rule, p resolvedParams, alloc *alertIDAllocator) []contracts.Alert {
	rateEvents := filterByEvent(events, "rate_exceeded")
	order, groups := groupEvents(rateEvents, bySource)

	alerts := make([]contracts.Alert, 0)
	for _, source := range order {
		buf := accumulateFire(groups[source], p.WindowSec, p.Threshold)
		if buf == nil {
			continue
		}

		severity, confidence := r.Severity, r.Confidence
		desc := fmt.Sprintf("volumetric rate-exceeded burst from %s within %.0fs window", source, p.WindowSec)

		if serviceImpactObserved(events, source, buf[0].TS) {
			severity, confidence = "critical", 0.98
			desc = fmt.Sprintf("%s; corroborated by service impact on %s", desc, source)
		}

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
			Description:  desc,
			EventCount:   len(buf),
			EventIDs:     eventIDsOf(buf),
			ResponseHint: r.ResponseHint,
		})
	}
	return alerts
}

// serviceImpactObserved scans all events (not just rate_exceeded ones) for
// a service_status event on source within 120s after windowStart whose
// value signals degraded or down service.
func serviceImpactObserved(events []contracts.Event, source string, windowStart time.Time) bool {
	deadline := windowStart.Add(120 * time.Second)
	for _, e := range events {
		if e.Event != "service_status" || e.Source != source {
			continue
		}
		if e.TS.Before(windowStart) || e.TS.After(deadline) {
			continue
		}
		if ddosServiceImpactValues[e.Value] {
			return true
		}
	}
	return false
}
