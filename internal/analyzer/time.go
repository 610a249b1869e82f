package analyzer

import "time"

func durationSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
