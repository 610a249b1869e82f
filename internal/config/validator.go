package config

import (
	"strings"

	"github.com/sentinelgrid/analyzer/pkg/common"
)

// validRuleFamilies lists the prefixes the detector knows how to dispatch
// on (spec.md §4.1). Anything else is a config-time error: unlike an
// unknown prefix encountered mid-run (which the detector merely logs and
// skips per spec.md §7), a rules.yaml that declares a family we cannot
// possibly evaluate indicates a typo worth catching at startup.
var validRuleFamilies = []string{"RULE-BF", "RULE-DDOS", "RULE-SPOOF", "RULE-UCMD", "RULE-OUT"}

func hasKnownFamily(id string) bool {
	for _, p := range validRuleFamilies {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// validateRules checks the structural invariants spec.md §3 places on
// Rule: "threshold ≥ 1 after multiplier; window_sec ≥ 0". Multipliers are
// applied later by the policy engine, so here we only check the
// rules.yaml-declared baseline values are sane; the policy-adjusted
// invariant is re-checked live in internal/analyzer.
//
// A hand-rolled walk rather than github.com/go-playground/validator: the
// business rules below are cross-field and conditional on rule family
// (e.g. bounds/delta only apply to RULE-SPOOF-*), which tag-based struct
// validation does not express any more concisely than plain Go.
func validateRules(cfg RulesConfig) error {
	seen := make(map[string]bool, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if r.ID == "" {
			return common.NewError("E1002", "rule missing id", nil)
		}
		if seen[r.ID] {
			return common.NewError("E1002", "duplicate rule id", map[string]interface{}{"id": r.ID})
		}
		seen[r.ID] = true

		if !hasKnownFamily(r.ID) {
			return common.NewError("E1002", "rule id has no recognized family prefix", map[string]interface{}{"id": r.ID})
		}
		if r.ThreatType == "" {
			return common.NewError("E1002", "rule missing threat_type", map[string]interface{}{"id": r.ID})
		}
		if r.WindowSec < 0 {
			return common.NewError("E1002", "rule window_sec must be >= 0", map[string]interface{}{"id": r.ID})
		}
		if r.Threshold < 1 {
			return common.NewError("E1002", "rule threshold must be >= 1", map[string]interface{}{"id": r.ID})
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return common.NewError("E1002", "rule confidence must be in [0,1]", map[string]interface{}{"id": r.ID})
		}
	}
	return nil
}

// validatePolicies checks "all multipliers > 0" (spec.md §3) for every
// declared modifier — an explicit 0 or negative multiplier would collapse
// a window/threshold to a degenerate or nonsensical value.
func validatePolicies(cfg PoliciesConfig) error {
	for name, p := range cfg.Policies {
		for threat, mod := range p.Modifiers {
			for field, v := range map[string]*float64{
				"window_multiplier":    mod.WindowMultiplier,
				"threshold_multiplier": mod.ThresholdMultiplier,
				"mttd_multiplier":      mod.MTTDMultiplier,
				"mttr_multiplier":      mod.MTTRMultiplier,
				"impact_multiplier":    mod.ImpactMultiplier,
			} {
				if v != nil && *v <= 0 {
					return common.NewError("E1002", "policy multiplier must be > 0", map[string]interface{}{
						"policy": name, "threat_type": threat, "field": field,
					})
				}
			}
		}
	}
	return nil
}
