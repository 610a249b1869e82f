// Package analyzer implements the three-stage analytical core: the
// rule-based detector, the alert correlator, and the resilience metrics
// engine. Grounded in structure on the teacher's internal/analyzer
// packages (stateless functions over immutable inputs, no package-level
// mutable state) and in algorithm on the original's src/analyzer/*.py.
package analyzer

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/internal/policy"
	"github.com/sentinelgrid/analyzer/pkg/common"
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// Detect evaluates every enabled rule against events independently and
// returns the resulting alerts sorted by timestamp (spec.md §4.1). events
// must already be sorted by timestamp; Detect does not mutate it.
func Detect(events []contracts.Event, rules config.RulesConfig, modifiers map[string]config.ResolvedModifiers) ([]contracts.Alert, error) {
	alerts := make([]contracts.Alert, 0)
	alloc := &alertIDAllocator{}

	for _, r := range rules.Rules {
		if !r.Enabled {
			common.Debug("rule disabled, skipping", zap.String("rule_id", r.ID))
			continue
		}

		kind, ok := classify(r)
		if !ok {
			continue
		}

		mod := policy.ModifiersFor(modifiers, r.ThreatType)
		params := resolveParams(r.WindowSec, r.Threshold, windowThresholdMult{Window: mod.WindowMultiplier, Threshold: mod.ThresholdMultiplier})
		if params.Threshold < 1 || params.WindowSec < 0 {
			return nil, common.NewError("E3001", "resolved rule parameters violate invariant", map[string]interface{}{
				"rule_id": r.ID, "window_sec": params.WindowSec, "threshold": params.Threshold,
			})
		}

		var fired []contracts.Alert
		switch kind {
		case kindBruteForce:
			fired = detectBruteForce(events, r, params, alloc)
		case kindDDoS:
			fired = detectDDoS(events, r, params, alloc)
		case kindSpoof:
			fired = detectSpoof(events, r, params, alloc)
		case kindUnauthorizedCmd:
			fired = detectUnauthorizedCmd(events, r, alloc)
		case kindOutage:
			fired = detectOutage(events, r, params, alloc)
		}
		alerts = append(alerts, fired...)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].TS.Before(alerts[j].TS)
	})
	return alerts, nil
}
