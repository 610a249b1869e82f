package analyzer

import (
	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// slidingWindow tracks the events within windowSec of the most recently
// pushed timestamp for one (rule, group key) pair. It keeps a growable
// backing slice plus a head pointer into it instead of reslicing on every
// push: the original implementation rebuilt its window list from scratch
// on every event (src/analyzer/detector.py's _prune), which is O(n) per
// step and O(n^2) over a burst. Advancing head and periodically
// compacting keeps amortized cost O(1) per push.
type slidingWindow struct {
	windowSec float64
	buf       []contracts.Event
	head      int
}

func newSlidingWindow(windowSec float64) *slidingWindow {
	return &slidingWindow{windowSec: windowSec}
}

// push appends evt and evicts anything older than windowSec relative to
// evt's timestamp, returning the live window contents. The returned slice
// aliases internal storage and must not be retained past the next push.
func (w *slidingWindow) push(evt contracts.Event) []contracts.Event {
	w.buf = append(w.buf, evt)
	cutoff := evt.TS.Add(durationSeconds(-w.windowSec))

	for w.head < len(w.buf) && w.buf[w.head].TS.Before(cutoff) {
		w.head++
	}

	// Compact once the dead prefix dominates, so buf doesn't grow unbounded
	// across a long-running watch session.
	if w.head > 256 && w.head*2 > len(w.buf) {
		remaining := len(w.buf) - w.head
		copy(w.buf, w.buf[w.head:])
		w.buf = w.buf[:remaining]
		w.head = 0
	}

	return w.buf[w.head:]
}

// len reports how many events are currently live in the window.
func (w *slidingWindow) len() int {
	return len(w.buf) - w.head
}
