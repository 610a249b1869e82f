package analyzer

import (
	"fmt"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// detectBruteForce implements RULE-BF-*: repeated auth_failure events from
// the same (ip, source) within the rule's window. One alert per group per
// run; the group's scan stops as soon as it fires (spec.md §4.1).
func detectBruteForce(events []contracts.Event, r config.Rule, p resolvedParams, alloc *alertIDAllocator) []contracts.Alert {
	failures := filterByEvent(events, "auth_failure")
	order, groups := groupEvents(failures, byIPSource)

	alerts := make([]contracts.Alert, 0)
	for _, key := range order {
		buf := accumulateFire(groups[key], p.WindowSec, p.Threshold)
		if buf == nil {
			continue
		}
		ip, source := splitIPSource(key)
		alerts = append(alerts, contracts.Alert{
			AlertID:      alloc.next(),
			RuleID:       r.ID,
			RuleName:     r.Name,
			ThreatType:   r.ThreatType,
			Severity:     r.Severity,
			Confidence:   r.Confidence,
			Timestamp:    contracts.FormatTimestamp(buf[0].TS),
			TS:           buf[0].TS,
			Component:    buf[0].Component,
			Source:       source,
			Description:  fmt.Sprintf("brute-force credential attack from %s against %s within %.0fs window", ip, source, p.WindowSec),
			EventCount:   len(buf),
			EventIDs:     eventIDsOf(buf),
			ResponseHint: r.ResponseHint,
		})
	}
	return alerts
}

func splitIPSource(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

// eventIDsOf builds the semicolon-joined event_ids field from a fired
// buffer: each member's correlation_id when present, else its timestamp,
// so downstream correlation can still recover a COR- tag if one exists.
func eventIDsOf(buf []contracts.Event) string {
	ids := make([]string, 0, len(buf))
	for _, e := range buf {
		if e.CorrelationID != "" {
			ids = append(ids, e.CorrelationID)
		} else {
			ids = append(ids, e.Timestamp)
		}
	}
	return joinSemicolon(ids)
}

func joinSemicolon(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ";"
		}
		out += p
	}
	return out
}
