package analyzer

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/common"
)

// ruleKind is the closed tagged variant spec.md's Design Notes calls for,
// parsed once from a Rule's id prefix instead of re-dispatched on the
// string at every evaluation site.
type ruleKind int

const (
	kindBruteForce ruleKind = iota
	kindDDoS
	kindSpoof
	kindUnauthorizedCmd
	kindOutage
)

func classify(r config.Rule) (ruleKind, bool) {
	switch {
	case strings.HasPrefix(r.ID, "RULE-BF"):
		return kindBruteForce, true
	case strings.HasPrefix(r.ID, "RULE-DDOS"):
		return kindDDoS, true
	case strings.HasPrefix(r.ID, "RULE-SPOOF"):
		return kindSpoof, true
	case strings.HasPrefix(r.ID, "RULE-UCMD"):
		return kindUnauthorizedCmd, true
	case strings.HasPrefix(r.ID, "RULE-OUT"):
		return kindOutage, true
	default:
		common.Warn("unknown rule family prefix skipped", zap.String("rule_id", r.ID))
		return 0, false
	}
}
