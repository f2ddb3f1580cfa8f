// Package flare provides flare catalogue parsing utilities.
// This file collapses duplicate reports of the same physical event.
package flare

import "sort"

// Deduplicate returns one event per distinct timestamp, keeping the
// highest-intensity report when catalogues disagree.
//
// The input is stable-sorted by (timestamp ascending, rank descending) and
// the first record per timestamp survives, so the stronger classification
// always wins regardless of input or source order. Timestamps differing by
// any amount, even one second, are distinct events; no time clustering
// happens here.
func Deduplicate(events []Event) []Event {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].Rank() > sorted[j].Rank()
	})

	out := sorted[:1]
	for _, ev := range sorted[1:] {
		if ev.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, ev)
	}
	return out
}
