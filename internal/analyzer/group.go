package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sentinelgrid/analyzer/pkg/contracts"
)

// alertIDAllocator hands out the monotonic ALR-NNNN sequence spec.md §4.1
// requires, scoped to a single Detect call so concurrent policy
// evaluations never share (or race on) a counter.
type alertIDAllocator struct{ n int }

func (a *alertIDAllocator) next() string {
	a.n++
	return fmt.Sprintf("ALR-%04d", a.n)
}

// filterByEvent returns the subset of events whose Event field equals kind.
func filterByEvent(events []contracts.Event, kind string) []contracts.Event {
	out := make([]contracts.Event, 0)
	for _, e := range events {
		if e.Event == kind {
			out = append(out, e)
		}
	}
	return out
}

// groupKeyFunc extracts the grouping key for one event.
type groupKeyFunc func(contracts.Event) string

// groupEvents partitions events (sorted by timestamp) into ordered groups
// keyed by key(event), preserving first-seen key order so iteration is
// deterministic across runs on the same input.
func groupEvents(events []contracts.Event, key groupKeyFunc) (order []string, groups map[string][]contracts.Event) {
	groups = make(map[string][]contracts.Event)
	seen := make(map[string]bool)
	for _, e := range events {
		k := key(e)
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}
	return order, groups
}

func byIPSource(e contracts.Event) string {
	ip := e.IP
	if ip == "" {
		ip = "unknown"
	}
	return ip + "\x00" + e.Source
}
func bySource(e contracts.Event) string   { return e.Source }
func bySourceKey(e contracts.Event) string {
	return e.Source + "\x00" + e.Key
}

func normalizeActor(actor string) string {
	return strings.ToLower(strings.TrimSpace(actor))
}

func sortedUniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
