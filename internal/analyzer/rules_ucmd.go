package analyzer

import (
	"fmt"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// detectUnauthorizedCmd implements RULE-UCMD-*: any cmd_exec event whose
// actor is blank or outside the rule's allow-list is unauthorized. Unlike
// the windowed families, this emits at most one alert for the whole run
// covering every unauthorized event found (spec.md §4.1).
func detectUnauthorizedCmd(events []contracts.Event, r config.Rule, alloc *alertIDAllocator) []contracts.Alert {
	allowed := make(map[string]bool, len(r.Match.ActorNotIn))
	for _, a := range r.Match.ActorNotIn {
		allowed[normalizeActor(a)] = true
	}

	var unauthorized []contracts.Event
	for _, e := range filterByEvent(events, "cmd_exec") {
		actor := normalizeActor(e.Actor)
		if actor == "" || !allowed[actor] {
			unauthorized = append(unauthorized, e)
		}
	}
	if len(unauthorized) == 0 {
		return nil
	}

	confidence := r.Confidence
	if len(unauthorized) >= 3 {
		confidence = 0.99
	}

	return []contracts.Alert{{
		AlertID:      alloc.next(),
		RuleID:       r.ID,
		RuleName:     r.Name,
		ThreatType:   r.ThreatType,
		Severity:     "critical",
		Confidence:   confidence,
		Timestamp:    contracts.FormatTimestamp(unauthorized[0].TS),
		TS:           unauthorized[0].TS,
		Component:    unauthorized[0].Component,
		Source:       unauthorized[0].Source,
		Description:  fmt.Sprintf("unauthorized command execution by %d actor(s) outside allow-list", countDistinctActors(unauthorized)),
		EventCount:   len(unauthorized),
		EventIDs:     eventIDsOf(unauthorized),
		ResponseHint: r.ResponseHint,
	}}
}

func countDistinctActors(events []contracts.Event) int {
	seen := make(map[string]bool)
	for _, e := range events {
		seen[normalizeActor(e.Actor)] = true
	}
	return len(seen)
}
