package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/internal/policy"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

const defaultMergeWindowSec = 120.0

type baseTiming struct{ MTTDSec, MTTRSec float64 }

var baseTimingByThreat = map[string]baseTiming{
	"credential_attack":   {30, 120},
	"availability_attack": {15, 180},
	"integrity_attack":    {60, 240},
	"outage":              {10, 300},
}

var fallbackTiming = baseTiming{30, 120}

type corrGroup struct {
	key     string
	members []contracts.Alert
	maxTS   time.Time
}

// Correlate clusters alerts into incidents by explicit COR-* correlation
// tags first, then by (component, threat_type) spatio-temporal proximity
// (spec.md §4.2). Returns incidents sorted by start_ts.
func Correlate(alerts []contracts.Alert, policyName string, modifiers map[string]config.ResolvedModifiers, mergeWindowSec float64) ([]contracts.Incident, error) {
	if mergeWindowSec <= 0 {
		mergeWindowSec = defaultMergeWindowSec
	}

	sorted := make([]contracts.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TS.Before(sorted[j].TS) })

	var order []*corrGroup
	corGroups := make(map[string]*corrGroup)
	remaining := make([]contracts.Alert, 0, len(sorted))

	for _, a := range sorted {
		tokens := corTokensOf(a)
		if len(tokens) == 0 {
			remaining = append(remaining, a)
			continue
		}
		key := minToken(tokens)
		g, ok := corGroups[key]
		if !ok {
			g = &corrGroup{key: key}
			corGroups[key] = g
			order = append(order, g)
		}
		joinGroup(g, a)
	}

	active := make(map[string]*corrGroup)
	for _, a := range remaining {
		baseKey := a.Component + "\x00" + a.ThreatType
		g, ok := active[baseKey]
		if ok && absDuration(a.TS.Sub(g.maxTS)) <= durationSeconds(mergeWindowSec) {
			joinGroup(g, a)
			continue
		}
		ng := &corrGroup{key: baseKey + "\x00" + a.AlertID}
		joinGroup(ng, a)
		active[baseKey] = ng
		order = append(order, ng)
	}

	incidents := make([]contracts.Incident, 0, len(order))
	for i, g := range order {
		inc, err := buildIncident(g, policyName, modifiers, i+1)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}

	sort.SliceStable(incidents, func(i, j int) bool { return incidents[i].StartTime.Before(incidents[j].StartTime) })
	return incidents, nil
}

func joinGroup(g *corrGroup, a contracts.Alert) {
	g.members = append(g.members, a)
	if a.TS.After(g.maxTS) {
		g.maxTS = a.TS
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func corTokensOf(a contracts.Alert) []string {
	var out []string
	for _, tok := range strings.Split(a.EventIDs, ";") {
		if strings.HasPrefix(tok, "COR-") {
			out = append(out, tok)
		}
	}
	return out
}

func minToken(tokens []string) string {
	min := tokens[0]
	for _, t := range tokens[1:] {
		if t < min {
			min = t
		}
	}
	return min
}

func buildIncident(g *corrGroup, policyName string, modifiers map[string]config.ResolvedModifiers, seq int) (contracts.Incident, error) {
	members := make([]contracts.Alert, len(g.members))
	copy(members, g.members)
	sort.SliceStable(members, func(i, j int) bool { return members[i].TS.Before(members[j].TS) })

	threatType := members[0].ThreatType
	startTime := members[0].TS

	mod := policy.ModifiersFor(modifiers, threatType)
	base, ok := baseTimingByThreat[threatType]
	if !ok {
		base = fallbackTiming
	}
	mttd := base.MTTDSec * mod.MTTDMultiplier
	mttr := base.MTTRSec * mod.MTTRMultiplier
	detectTime := startTime.Add(durationSeconds(mttd))
	recoverTime := detectTime.Add(durationSeconds(mttr))

	severities := make([]string, len(members))
	var confidenceSum float64
	eventCount := 0
	components := make([]string, 0, len(members))
	descriptions := make([]string, 0, len(members))
	hints := make([]string, 0, len(members))
	for i, m := range members {
		severities[i] = m.Severity
		confidenceSum += m.Confidence
		eventCount += m.EventCount
		components = append(components, m.Component)
		descriptions = append(descriptions, m.Description)
		hints = append(hints, m.ResponseHint)
	}
	severity := contracts.MaxSeverity(severities...)
	avgConfidence := confidenceSum / float64(len(members))

	impact := severity.Weight() * avgConfidence * mod.ImpactMultiplier
	if impact < 0 {
		impact = 0
	}
	if impact > 1 {
		impact = 1
	}
	impact = roundTo4(impact)

	responseAction := strings.Join(sortedUniqueStrings(hints), "; ")
	if responseAction == "" {
		responseAction = "notify"
	}

	return contracts.Incident{
		IncidentID:      fmt.Sprintf("INC-%03d", seq),
		Policy:          policyName,
		ThreatType:      threatType,
		Severity:        severity.String(),
		Component:       strings.Join(sortedUniqueStrings(components), ";"),
		EventCount:      eventCount,
		StartTS:         contracts.FormatTimestamp(startTime),
		StartTime:       startTime,
		DetectTS:        contracts.FormatTimestamp(detectTime),
		DetectTime:      detectTime,
		RecoverTS:       contracts.FormatTimestamp(recoverTime),
		RecoverTime:     recoverTime,
		MTTDSec:         mttd,
		MTTRSec:         mttr,
		ImpactScore:     impact,
		Description:     strings.Join(sortedUniqueStrings(descriptions), " | "),
		ResponseAction:  responseAction,
	}, nil
}

func roundTo4(v float64) float64 {
	return roundTo(v, 10000)
}
