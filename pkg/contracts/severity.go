// Package contracts defines the Event, Alert, Incident and PolicyMetrics
// records exchanged between the detector, correlator, metrics engine and
// the pipeline's CSV/JSONL adapters. Grounded on the teacher's
// pkg/bronze/event.go and pkg/gold/alert.go (fixed-column CSV + compact
// JSON records) and on src/contracts/*.py of the original implementation.
package contracts

// Severity is a total order over event/alert/incident severity, captured
// once per the spec's design note rather than recomputed at each call site.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

var severityValues = map[string]Severity{
	"low":      SeverityLow,
	"medium":   SeverityMedium,
	"high":     SeverityHigh,
	"critical": SeverityCritical,
}

// severityWeights backs Incident.impact_score (spec.md §4.2).
var severityWeights = map[Severity]float64{
	SeverityLow:      0.2,
	SeverityMedium:   0.4,
	SeverityHigh:     0.7,
	SeverityCritical: 1.0,
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return "low"
}

// Weight returns the impact weight used in Incident.impact_score.
func (s Severity) Weight() float64 {
	return severityWeights[s]
}

// ParseSeverity maps an external severity string to its ordinal,
// defaulting to low for unrecognized input (never errors — the detector
// treats malformed severities as a data-quality matter, not a failure).
func ParseSeverity(s string) Severity {
	if v, ok := severityValues[s]; ok {
		return v
	}
	return SeverityLow
}

// MaxSeverity returns the highest-ordinal severity among the given strings,
// defaulting to low when the list is empty.
func MaxSeverity(values ...string) Severity {
	max := SeverityLow
	for _, v := range values {
		if s := ParseSeverity(v); s > max {
			max = s
		}
	}
	return max
}

// IsHighOrCritical reports whether this severity counts toward downtime
// per spec.md §4.3 ("severity ∈ {high, critical}").
func (s Severity) IsHighOrCritical() bool {
	return s == SeverityHigh || s == SeverityCritical
}
