// Package dataset provides dataset construction utilities.
// This file computes backward-looking rolling statistics and calendar
// features per grid tick.
package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/flarelab/flarecast/internal/flux"
)

// Features computes the per-tick feature vectors over the log-flux series:
// rolling mean, sample standard deviation, min, max, and a lagged delta
// for every configured look-back window, plus hour-of-day and day-of-year.
// All windows end at the current tick and look strictly backward.
//
// Start policy: full window required. A row is emitted only when the
// largest window, including the delta lag, is completely covered by
// present samples; rows with insufficient history are dropped silently.
// The relaxed partial-window alternative would change the label-class
// distribution near the series start, so it is not offered.
//
// Returns the table (labels still zero) and the grid index of each emitted
// row, for the timestamp join with the label series.
func Features(series []flux.Sample, cfg Config) (*Table, []int) {
	n := len(series)
	windows := make([]int, len(cfg.Windows))
	maxLag := 0
	for i, d := range cfg.Windows {
		windows[i] = int(d / cfg.GridStep)
		if windows[i] > maxLag {
			maxLag = windows[i]
		}
	}

	names := featureNames(cfg)
	table := &Table{Names: names}

	// Prefix sums over value and value squared, plus a missing-tick prefix
	// count used to test whether a window is fully present.
	sum := make([]float64, n+1)
	sumSq := make([]float64, n+1)
	missing := make([]int, n+1)
	for i, s := range series {
		v := s.ValueLog
		if s.Missing {
			v = 0 // never read: windows containing this tick are dropped
		}
		sum[i+1] = sum[i] + v
		sumSq[i+1] = sumSq[i] + v*v
		missing[i+1] = missing[i]
		if s.Missing {
			missing[i+1]++
		}
	}

	mins := make([][]float64, len(windows))
	maxs := make([][]float64, len(windows))
	for wi, w := range windows {
		mins[wi], maxs[wi] = slidingMinMax(series, w)
	}

	var gridIdx []int
	for i := maxLag; i < n; i++ {
		// The largest window spans [i-maxLag, i]: the rolling windows need
		// [i-maxLag+1, i] and the longest delta lag needs tick i-maxLag.
		if missing[i+1]-missing[i-maxLag] > 0 {
			continue
		}

		feat := make([]float64, 0, len(names))
		feat = append(feat, series[i].ValueLog)
		for wi, w := range windows {
			lo := i - w + 1
			mean := (sum[i+1] - sum[lo]) / float64(w)
			feat = append(feat, mean)
			feat = append(feat, rollingStd(sumSq[i+1]-sumSq[lo], mean, w))
			feat = append(feat, mins[wi][i])
			feat = append(feat, maxs[wi][i])
			feat = append(feat, series[i].ValueLog-series[i-w].ValueLog)
		}
		feat = append(feat, float64(series[i].Timestamp.Hour()))
		feat = append(feat, float64(series[i].Timestamp.YearDay()))

		table.Rows = append(table.Rows, Row{
			Timestamp: series[i].Timestamp,
			Features:  feat,
		})
		gridIdx = append(gridIdx, i)
	}
	return table, gridIdx
}

// featureNames returns the ordered feature column names for a config.
func featureNames(cfg Config) []string {
	names := []string{"flux_log"}
	for _, d := range cfg.Windows {
		w := WindowName(d)
		names = append(names,
			"roll_mean_"+w,
			"roll_std_"+w,
			"roll_min_"+w,
			"roll_max_"+w,
			"delta_"+w,
		)
	}
	return append(names, "hour", "day_of_year")
}

// WindowName renders a window duration as a column suffix, e.g. "15m".
func WindowName(d time.Duration) string {
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

// rollingStd converts a window's sum of squares into the sample standard
// deviation. Rounding can push the variance a hair below zero on constant
// series; clamp it.
func rollingStd(sq, mean float64, w int) float64 {
	if w < 2 {
		return 0
	}
	variance := (sq - float64(w)*mean*mean) / float64(w-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// slidingMinMax computes rolling min and max over a w-tick window ending
// at each index, using monotonic deques. Output is undefined for windows
// containing missing ticks; those rows are dropped by the caller.
func slidingMinMax(series []flux.Sample, w int) (mins, maxs []float64) {
	n := len(series)
	mins = make([]float64, n)
	maxs = make([]float64, n)

	minDq := make([]int, 0, n)
	maxDq := make([]int, 0, n)
	minHead, maxHead := 0, 0

	for i := 0; i < n; i++ {
		v := series[i].ValueLog

		for len(minDq) > minHead && series[minDq[len(minDq)-1]].ValueLog >= v {
			minDq = minDq[:len(minDq)-1]
		}
		minDq = append(minDq, i)
		for len(maxDq) > maxHead && series[maxDq[len(maxDq)-1]].ValueLog <= v {
			maxDq = maxDq[:len(maxDq)-1]
		}
		maxDq = append(maxDq, i)

		for minDq[minHead] <= i-w {
			minHead++
		}
		for maxDq[maxHead] <= i-w {
			maxHead++
		}

		mins[i] = series[minDq[minHead]].ValueLog
		maxs[i] = series[maxDq[maxHead]].ValueLog
	}
	return mins, maxs
}
