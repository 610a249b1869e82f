package analyzer

import "math"

// roundTo rounds v to the given decimal scale using round-half-to-even,
// matching Python's round() — the original's detector.py/correlator.py/
// metrics.py all rely on that banker's-rounding behavior, so a
// threshold·multiplier or downtime fraction landing exactly on a .5
// boundary resolves the same way here as in the ground truth.
func roundTo(v, scale float64) float64 {
	return math.RoundToEven(v*scale) / scale
}
