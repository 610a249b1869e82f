package contracts

// ResultsCSVColumns is the fixed external column order for results.csv
// (spec.md §6).
var ResultsCSVColumns = []string{
	"policy", "availability_pct", "total_downtime_hr", "mean_mttd_min",
	"mean_mttr_min", "incidents_total", "incidents_critical", "incidents_high",
	"incidents_medium", "incidents_low", "by_credential_attack",
	"by_availability_attack", "by_integrity_attack", "by_outage",
}

// PolicyMetrics aggregates all Incidents of one policy over one horizon
// (spec.md §3, §4.3).
type PolicyMetrics struct {
	Policy              string
	AvailabilityPct     float64
	TotalDowntimeHr     float64
	MeanMTTDMin         float64
	MeanMTTRMin         float64
	IncidentsTotal      int
	IncidentsBySeverity map[string]int
	IncidentsByThreat   map[string]int
}

// NewPolicyMetrics returns the zero-incident baseline: 100% availability,
// no downtime, per the "Empty input" law in spec.md §8.
func NewPolicyMetrics(policy string) PolicyMetrics {
	return PolicyMetrics{
		Policy:              policy,
		AvailabilityPct:     100.0,
		IncidentsBySeverity: map[string]int{},
		IncidentsByThreat:   map[string]int{},
	}
}

// ToCSVRow renders m as a single results.csv row following
// ResultsCSVColumns.
func (m PolicyMetrics) ToCSVRow() string {
	sev := m.IncidentsBySeverity
	thr := m.IncidentsByThreat
	cols := []string{
		m.Policy,
		ftoa(m.AvailabilityPct, 2),
		ftoa(m.TotalDowntimeHr, 4),
		ftoa(m.MeanMTTDMin, 2),
		ftoa(m.MeanMTTRMin, 2),
		itoa(m.IncidentsTotal),
		itoa(sev["critical"]),
		itoa(sev["high"]),
		itoa(sev["medium"]),
		itoa(sev["low"]),
		itoa(thr["credential_attack"]),
		itoa(thr["availability_attack"]),
		itoa(thr["integrity_attack"]),
		itoa(thr["outage"]),
	}
	out := cols[0]
	for _, c := range cols[1:] {
		out += "," + csvEscape(c)
	}
	return out
}

func csvEscape(s string) string {
	// Columns here are always numeric or bare identifiers, so no quoting
	// is ever required; kept as a seam in case a future column carries
	// free text.
	return s
}
