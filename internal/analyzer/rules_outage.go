package analyzer

import (
	"fmt"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// detectOutage implements RULE-OUT-*: sliding-window accumulation over
// service_status (or whatever match.event names) events matching an
// optional value allow-list, partitioned by source. The fired buffer is
// then scanned for a severity_override match (spec.md §4.1).
func detectOutage(events []contracts.Event, r config.Rule, p resolvedParams, alloc *alertIDAllocator) []contracts.Alert {
	kind := r.Match.Event
	if kind == "" {
		kind = "service_status"
	}

	candidates := filterByEvent(events, kind)
	if len(r.Match.Values) > 0 {
		candidates = filterByValues(candidates, r.Match.Values)
	}
	order, groups := groupEvents(candidates, bySource)

	alerts := make([]contracts.Alert, 0)
	for _, source := range order {
		buf := accumulateFire(groups[source], p.WindowSec, p.Threshold)
		if buf == nil {
			continue
		}

		severity := r.Severity
		if override, ok := firstSeverityOverride(buf, r.SeverityOverride); ok {
			severity = override
		}

		alerts = append(alerts, contracts.Alert{
			AlertID:      alloc.next(),
			RuleID:       r.ID,
			RuleName:     r.Name,
			ThreatType:   r.ThreatType,
			Severity:     severity,
			Confidence:   r.Confidence,
			Timestamp:    contracts.FormatTimestamp(buf[0].TS),
			TS:           buf[0].TS,
			Component:    buf[0].Component,
			Source:       source,
			Description:  fmt.Sprintf("service outage condition on %s (%s)", source, kind),
			EventCount:   len(buf),
			EventIDs:     eventIDsOf(buf),
			ResponseHint: r.ResponseHint,
		})
	}
	return alerts
}

func filterByValues(events []contracts.Event, values []string) []contracts.Event {
	allowed := make(map[string]bool, len(values))
	for _, v := range values {
		allowed[v] = true
	}
	out := make([]contracts.Event, 0, len(events))
	for _, e := range events {
		if allowed[e.Value] {
			out = append(out, e)
		}
	}
	return out
}

// firstSeverityOverride returns the severity of the first (in
// severity_override declaration order) override whose value appears
// anywhere in buf.
func firstSeverityOverride(buf []contracts.Event, overrides []config.SeverityOverride) (string, bool) {
	for _, ov := range overrides {
		for _, e := range buf {
			if e.Value == ov.Value {
				return ov.Severity, true
			}
		}
	}
	return "", false
}
