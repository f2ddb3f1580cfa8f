// Package flux provides flux series processing utilities.
// This file turns merged raw samples into the uniform normalized series.
package flux

import (
	"math"
	"sort"
	"time"
)

// NormalizeConfig holds the per-run normalization parameters. Built once
// in main and passed by value; never mutated downstream.
type NormalizeConfig struct {
	Step         time.Duration // grid step
	MaxInterpGap int           // longest gap, in ticks, bridged by interpolation
	Epsilon      float64       // log floor, keeps log10 defined at or below zero
}

// DefaultNormalizeConfig returns the standard 1-minute grid parameters.
func DefaultNormalizeConfig() NormalizeConfig {
	return NormalizeConfig{
		Step:         time.Minute,
		MaxInterpGap: 5,
		Epsilon:      1e-10,
	}
}

// Merge concatenates per-file sample slices in the given slice order,
// sorts by timestamp, and drops duplicate timestamps keeping the first
// occurrence. Callers must pass files in lexicographic name order so the
// surviving duplicate is reproducible across runs.
func Merge(series [][]RawSample) []RawSample {
	total := 0
	for _, s := range series {
		total += len(s)
	}
	if total == 0 {
		return nil
	}

	merged := make([]RawSample, 0, total)
	for _, s := range series {
		merged = append(merged, s...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	out := merged[:1]
	for _, s := range merged[1:] {
		if s.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Normalize projects merged raw samples onto a contiguous fixed-step grid:
//
//  1. mean aggregation of all samples falling inside each grid tick
//  2. linear, time-weighted interpolation across gaps of at most
//     MaxInterpGap consecutive missing ticks; longer gaps stay missing
//  3. ValueLog = log10(max(Value, Epsilon)) on every present tick
//
// The log floor is a required stability step: detector readings at or
// below zero would otherwise produce -Inf/NaN downstream.
func Normalize(raw []RawSample, cfg NormalizeConfig) []Sample {
	if len(raw) == 0 {
		return nil
	}

	type bucket struct {
		tick  time.Time
		sum   float64
		count int
	}

	// Raw input is sorted, so buckets come out sorted too.
	var buckets []bucket
	for _, s := range raw {
		tick := s.Timestamp.Truncate(cfg.Step)
		if n := len(buckets); n > 0 && buckets[n-1].tick.Equal(tick) {
			buckets[n-1].sum += s.Value
			buckets[n-1].count++
			continue
		}
		buckets = append(buckets, bucket{tick: tick, sum: s.Value, count: 1})
	}

	first := buckets[0].tick
	last := buckets[len(buckets)-1].tick
	n := int(last.Sub(first)/cfg.Step) + 1

	grid := make([]Sample, n)
	bi := 0
	for i := 0; i < n; i++ {
		tick := first.Add(time.Duration(i) * cfg.Step)
		grid[i] = Sample{Timestamp: tick, Missing: true}
		if bi < len(buckets) && buckets[bi].tick.Equal(tick) {
			grid[i].Value = buckets[bi].sum / float64(buckets[bi].count)
			grid[i].Missing = false
			bi++
		}
	}

	interpolateGaps(grid, cfg.MaxInterpGap)

	for i := range grid {
		if grid[i].Missing {
			continue
		}
		grid[i].ValueLog = math.Log10(math.Max(grid[i].Value, cfg.Epsilon))
	}
	return grid
}

// interpolateGaps fills runs of up to maxGap consecutive missing ticks
// between two present ticks with linear interpolation. Uniform grid makes
// time weighting equivalent to index weighting.
func interpolateGaps(grid []Sample, maxGap int) {
	if maxGap <= 0 {
		return
	}
	prev := -1 // index of the last present tick
	for i := range grid {
		if grid[i].Missing {
			continue
		}
		if prev >= 0 {
			gap := i - prev - 1
			if gap > 0 && gap <= maxGap {
				lo, hi := grid[prev].Value, grid[i].Value
				span := float64(i - prev)
				for j := prev + 1; j < i; j++ {
					frac := float64(j-prev) / span
					grid[j].Value = lo + (hi-lo)*frac
					grid[j].Missing = false
				}
			}
		}
		prev = i
	}
}
