package contracts

import (
	"encoding/csv"
	"strings"
	"time"
)

// IncidentCSVColumns is the fixed external column order for incidents.csv
// (spec.md §6).
var IncidentCSVColumns = []string{
	"incident_id", "policy", "threat_type", "severity", "component",
	"event_count", "start_ts", "detect_ts", "recover_ts", "mttd_sec",
	"mttr_sec", "impact_score", "description", "response_action",
}

// Incident groups one or more Alerts into a single timed security event
// (spec.md §3, §4.2), tagged with the policy under which it was computed.
type Incident struct {
	IncidentID     string
	Policy         string
	ThreatType     string
	Severity       string
	Component      string
	EventCount     int
	StartTS        string
	StartTime      time.Time
	DetectTS       string
	DetectTime     time.Time
	RecoverTS      string
	RecoverTime    time.Time
	MTTDSec        float64
	MTTRSec        float64
	ImpactScore    float64
	Description    string
	ResponseAction string
}

// SeverityOrdinal returns the incident's severity as a Severity value.
func (i Incident) SeverityOrdinal() Severity {
	return ParseSeverity(i.Severity)
}

// ToCSVRow renders i as a single CSV row following IncidentCSVColumns.
func (i Incident) ToCSVRow() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{
		i.IncidentID, i.Policy, i.ThreatType, i.Severity, i.Component,
		itoa(i.EventCount), i.StartTS, i.DetectTS, i.RecoverTS,
		ftoa(i.MTTDSec, 2), ftoa(i.MTTRSec, 2), ftoa(i.ImpactScore, 4),
		i.Description, i.ResponseAction,
	}); err != nil {
		return "", err
	}
	w.Flush()
	return strings.TrimRight(sb.String(), "\r\n"), w.Error()
}
