package contracts

import "time"

// Alert is produced by the Detector from one or more Events (spec.md §3,
// §4.1). It is one-way derived and never mutated after emission.
type Alert struct {
	AlertID       string    `json:"alert_id"`
	RuleID        string    `json:"rule_id"`
	RuleName      string    `json:"rule_name"`
	ThreatType    string    `json:"threat_type"`
	Severity      string    `json:"severity"`
	Confidence    float64   `json:"confidence"`
	Timestamp     string    `json:"timestamp"`
	TS            time.Time `json:"-"`
	Component     string    `json:"component"`
	Source        string    `json:"source"`
	Description   string    `json:"description"`
	EventCount    int       `json:"event_count"`
	EventIDs      string    `json:"event_ids"`
	ResponseHint  string    `json:"response_hint"`
}

// SeverityOrdinal returns the alert's severity as a Severity value.
func (a Alert) SeverityOrdinal() Severity {
	return ParseSeverity(a.Severity)
}
