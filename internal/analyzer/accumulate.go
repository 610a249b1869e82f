package analyzer

import (
	"math"

	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// accumulateFire slides a window across events (already sorted by
// timestamp) and returns a copy of the first buffer to reach threshold,
// or nil if the group never crosses it. Every windowed rule family (all
// but unauthorized-command, which has no window) funnels its per-group
// scan through this helper; only what happens after firing differs
// (escalation checks, severity overrides).
func accumulateFire(events []contracts.Event, windowSec float64, threshold int) []contracts.Event {
	w := newSlidingWindow(windowSec)
	for _, e := range events {
		buf := w.push(e)
		if len(buf) >= threshold {
			out := make([]contracts.Event, len(buf))
			copy(out, buf)
			return out
		}
	}
	return nil
}

// resolvedParams is the window/threshold pair after policy multipliers
// are applied (spec.md §4.1): window = window_sec * window_multiplier,
// threshold = max(1, round(threshold * threshold_multiplier)).
type resolvedParams struct {
	WindowSec float64
	Threshold int
}

func resolveParams(windowSec float64, threshold int, mult windowThresholdMult) resolvedParams {
	w := windowSec * mult.Window
	// Python's round() is round-half-to-even, not round-half-away-from-zero;
	// matched here so a threshold·multiplier landing exactly on x.5 (e.g.
	// 6.5) resolves the same way as in the original's detector.py.
	t := int(math.RoundToEven(float64(threshold) * mult.Threshold))
	if t < 1 {
		t = 1
	}
	return resolvedParams{WindowSec: w, Threshold: t}
}

type windowThresholdMult struct {
	Window    float64
	Threshold float64
}
