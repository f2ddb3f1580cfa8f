// Package dataset provides dataset construction utilities.
// This file computes look-ahead labels over the aligned intensity series.
package dataset

import "time"

// Labels computes, for every grid tick t, the maximum intensity over all
// events in (t, t+horizon]. The window excludes the present tick: an event
// at exactly t is a feature of the present, not a future outcome. Ticks
// with no qualifying event get label 0.
//
// The series is processed in reverse chronological order with a monotonic
// deque holding the maximum over already-visited future ticks, giving each
// label in amortized O(1). The result is identical to a naive max scan
// over every future window; label_test.go pins that equivalence.
func Labels(intensity []int8, step, horizon time.Duration) []int8 {
	n := len(intensity)
	labels := make([]int8, n)
	if n == 0 {
		return labels
	}
	h := int(horizon / step)
	if h <= 0 {
		return labels
	}

	// deque holds grid indices in decreasing order with non-increasing
	// intensity from front to back; the front is the window maximum.
	deque := make([]int, 0, n)
	head := 0

	for i := n - 1; i >= 0; i-- {
		// Tick i+1 enters the window (t, t+h] as we step back to i.
		if j := i + 1; j < n {
			for len(deque) > head && intensity[deque[len(deque)-1]] <= intensity[j] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, j)
		}
		// Expire ticks beyond the horizon.
		for len(deque) > head && deque[head] > i+h {
			head++
		}
		if len(deque) > head {
			labels[i] = intensity[deque[head]]
		}
	}
	return labels
}
