// Package policy implements the Policy Engine (spec.md §4.4): it hands
// resolved PolicyModifiers to the detector and correlator, and ranks
// policies by the effectiveness of their declared control sets. Grounded
// on src/analyzer/policy_engine.py of the original implementation and on
// the teacher's config-driven-behavior style in internal/config.
package policy

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/common"
)

// Modifiers returns the per-threat_type modifier map for the named
// policy, defaulting every field to 1.0. An unknown policy name logs a
// warning and returns an empty map — per spec.md's Design Notes open
// question, this implementation takes the documented fallback (treat as
// baseline) rather than a hard error; see DESIGN.md.
func Modifiers(policies config.PoliciesConfig, name string) map[string]config.ResolvedModifiers {
	p, ok := policies.Policies[name]
	if !ok {
		common.Warn("unknown policy — using baseline (all multipliers 1.0)", zap.String("policy", name))
		return map[string]config.ResolvedModifiers{}
	}
	out := make(map[string]config.ResolvedModifiers, len(p.Modifiers))
	for threat, mod := range p.Modifiers {
		out[threat] = mod.Resolve()
	}
	return out
}

// ModifiersFor returns the resolved modifiers for a single threat_type,
// falling back to NeutralModifiers when the policy or threat entry is
// absent.
func ModifiersFor(mods map[string]config.ResolvedModifiers, threatType string) config.ResolvedModifiers {
	if m, ok := mods[threatType]; ok {
		return m
	}
	return config.NeutralModifiers()
}

// ListNames returns every known policy name, sorted. Used only for the
// "all"/empty CLI selection (spec.md §6), where there is no caller-typed
// order to preserve; an explicit comma-separated selection instead keeps
// the caller's order verbatim, per spec.md §5's ordering guarantee — see
// pipeline.ResolvePolicyNames.
func ListNames(policies config.PoliciesConfig) []string {
	names := make([]string, 0, len(policies.Policies))
	for name := range policies.Policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Meta returns the raw Policy entry for name, or the zero value if
// unknown. Used by the report generator to print enabled controls
// (ported from the original's get_policy_meta, see SPEC_FULL.md §C).
func Meta(policies config.PoliciesConfig, name string) config.Policy {
	return policies.Policies[name]
}

// RankedPolicy is one row of the control-effectiveness ranking produced
// by Rank (spec.md §4.4).
type RankedPolicy struct {
	Policy          string
	EnabledControls []string
	AvgMTTDMult     float64
	AvgMTTRMult     float64
	Effectiveness   float64
}

// Rank ranks the selected policies by how much their declared multipliers
// reduce detection/recovery time, descending by effectiveness.
func Rank(policies config.PoliciesConfig, selected []string) []RankedPolicy {
	results := make([]RankedPolicy, 0, len(selected))

	for _, name := range selected {
		p := policies.Policies[name]

		var mttdSum, mttrSum float64
		count := 0
		for _, mod := range p.Modifiers {
			r := mod.Resolve()
			mttdSum += r.MTTDMultiplier
			mttrSum += r.MTTRMultiplier
			count++
		}
		avgMTTD, avgMTTR := 1.0, 1.0
		if count > 0 {
			avgMTTD = mttdSum / float64(count)
			avgMTTR = mttrSum / float64(count)
		}

		var enabled []string
		for name, c := range p.Controls {
			if c.Enabled {
				enabled = append(enabled, name)
			}
		}
		sort.Strings(enabled)

		results = append(results, RankedPolicy{
			Policy:          name,
			EnabledControls: enabled,
			AvgMTTDMult:     round3(avgMTTD),
			AvgMTTRMult:     round3(avgMTTR),
			Effectiveness:   round3(1.0 - (avgMTTD+avgMTTR)/2),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Effectiveness > results[j].Effectiveness
	})
	return results
}

// round3 matches Python's round() (round-half-to-even), per
// src/analyzer/policy_engine.py, rather than round-half-away-from-zero.
func round3(v float64) float64 {
	return math.RoundToEven(v*1000) / 1000
}
