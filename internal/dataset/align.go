// Package dataset provides dataset construction utilities.
// This file projects flare events onto the flux grid.
package dataset

import (
	"time"

	"github.com/flarelab/flarecast/internal/flare"
)

// AlignEvents maps deduplicated events onto the flux grid, producing a
// per-tick active intensity. An event is active only at its own timestamp;
// snapping moves it forward by at most one grid tick, modeling the latency
// between a report and the nearest physical sample without letting one
// event contaminate later ticks. Events falling outside the grid are
// dropped. Ticks with no event carry intensity 0.
func AlignEvents(events []flare.Event, gridStart time.Time, n int, step time.Duration) []int8 {
	intensity := make([]int8, n)
	for _, ev := range events {
		d := ev.Timestamp.Sub(gridStart)
		idx := int(d / step)
		if d%step != 0 && d > 0 {
			idx++ // forward snap; negative offsets already truncate toward zero
		}
		if idx < 0 || idx >= n {
			continue
		}
		if r := int8(ev.Rank()); r > intensity[idx] {
			intensity[idx] = r
		}
	}
	return intensity
}
