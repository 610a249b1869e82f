// Package config loads and validates the declarative rules.yaml and
// policies.yaml that parameterize the detector, correlator and policy
// engine (spec.md §6).
package config

// RuleMatch narrows which Events a Rule considers and, for the
// unauthorized-command family, which actors are allowed.
type RuleMatch struct {
	Event      string   `yaml:"event"`
	GroupBy    []string `yaml:"group_by"`
	Values     []string `yaml:"values"`
	ActorNotIn []string `yaml:"actor_not_in"`
}

// Bound is a static min/max range used by telemetry-spoof rules.
type Bound struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// SeverityOverride escalates a rule's declared severity when a matched
// event's value equals Value (spec.md §4.1, outage family).
type SeverityOverride struct {
	Value    string `yaml:"value"`
	Severity string `yaml:"severity"`
}

// Rule is one entry of rules.yaml (spec.md §3, §6). Its ID prefix selects
// which detector family evaluates it (spec.md Design Notes: "Prefer a
// closed tagged variant ... the prefix is retained only as an external
// identifier").
type Rule struct {
	ID               string             `yaml:"id"`
	Name             string             `yaml:"name"`
	ThreatType       string             `yaml:"threat_type"`
	Enabled          bool               `yaml:"enabled"`
	Match            RuleMatch          `yaml:"match"`
	WindowSec        float64            `yaml:"window_sec"`
	Threshold        int                `yaml:"threshold"`
	Severity         string             `yaml:"severity"`
	Confidence       float64            `yaml:"confidence"`
	Bounds           map[string]Bound   `yaml:"bounds"`
	Delta            map[string]float64 `yaml:"delta"`
	SeverityOverride []SeverityOverride `yaml:"severity_override"`
	ResponseHint     string             `yaml:"response_hint"`
}

// RulesConfig is the top-level shape of rules.yaml.
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// PolicyModifiers is the as-parsed multiplier record from policies.yaml.
// Fields are pointers so that an omitted key in YAML is distinguishable
// from an explicit 0 — spec.md requires missing multipliers to default to
// 1.0, not to the Go zero value. Call Resolve to obtain the fixed-shape,
// fully-defaulted record that the detector/correlator actually operate on.
type PolicyModifiers struct {
	WindowMultiplier    *float64 `yaml:"window_multiplier"`
	ThresholdMultiplier *float64 `yaml:"threshold_multiplier"`
	MTTDMultiplier      *float64 `yaml:"mttd_multiplier"`
	MTTRMultiplier      *float64 `yaml:"mttr_multiplier"`
	ImpactMultiplier    *float64 `yaml:"impact_multiplier"`
}

// ResolvedModifiers is the default-constructed, always-fully-populated
// multiplier record described in spec.md's Design Notes ("a fixed-shape
// record with a default-constructed neutral element; default 1.0 if
// missing").
type ResolvedModifiers struct {
	WindowMultiplier    float64
	ThresholdMultiplier float64
	MTTDMultiplier      float64
	MTTRMultiplier      float64
	ImpactMultiplier    float64
}

// NeutralModifiers is the all-1.0 baseline.
func NeutralModifiers() ResolvedModifiers {
	return ResolvedModifiers{1.0, 1.0, 1.0, 1.0, 1.0}
}

// Resolve fills in 1.0 for any multiplier the config omitted.
func (m PolicyModifiers) Resolve() ResolvedModifiers {
	r := NeutralModifiers()
	if m.WindowMultiplier != nil {
		r.WindowMultiplier = *m.WindowMultiplier
	}
	if m.ThresholdMultiplier != nil {
		r.ThresholdMultiplier = *m.ThresholdMultiplier
	}
	if m.MTTDMultiplier != nil {
		r.MTTDMultiplier = *m.MTTDMultiplier
	}
	if m.MTTRMultiplier != nil {
		r.MTTRMultiplier = *m.MTTRMultiplier
	}
	if m.ImpactMultiplier != nil {
		r.ImpactMultiplier = *m.ImpactMultiplier
	}
	return r
}

// Control is a named security control toggle under a policy. Controls
// whose value is a mapping with enabled: true count toward
// rank_controls' enabled_controls (spec.md §4.4).
type Control struct {
	Enabled bool                   `yaml:"enabled"`
	Extra   map[string]interface{} `yaml:",inline"`
}

// Policy is one named entry of policies.yaml: its control set and its
// per-threat-type multipliers.
type Policy struct {
	Controls  map[string]Control         `yaml:"controls"`
	Modifiers map[string]PolicyModifiers `yaml:"modifiers"`
}

// PoliciesConfig is the top-level shape of policies.yaml.
type PoliciesConfig struct {
	Policies map[string]Policy `yaml:"policies"`
}
