package flux

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2017, 9, 6, 12, 0, 0, 0, time.UTC)

func TestMergeKeepsFirstOccurrence(t *testing.T) {
	// Two files report the same timestamp with different values; the file
	// earlier in slice order wins.
	a := []RawSample{
		{Timestamp: t0, Value: 1e-6},
		{Timestamp: t0.Add(time.Minute), Value: 2e-6},
	}
	b := []RawSample{
		{Timestamp: t0, Value: 9e-6},
		{Timestamp: t0.Add(2 * time.Minute), Value: 3e-6},
	}

	out := Merge([][]RawSample{a, b})
	require.Len(t, out, 3)
	assert.Equal(t, 1e-6, out[0].Value)
	assert.Equal(t, 2e-6, out[1].Value)
	assert.Equal(t, 3e-6, out[2].Value)
}

func TestMergeSortsAcrossFiles(t *testing.T) {
	a := []RawSample{{Timestamp: t0.Add(5 * time.Minute), Value: 1}}
	b := []RawSample{{Timestamp: t0, Value: 2}}

	out := Merge([][]RawSample{a, b})
	require.Len(t, out, 2)
	assert.True(t, out[0].Timestamp.Before(out[1].Timestamp))
}

func TestNormalizeMeanAggregation(t *testing.T) {
	// Three sub-minute samples inside one grid tick collapse to their mean.
	raw := []RawSample{
		{Timestamp: t0.Add(10 * time.Second), Value: 1e-6},
		{Timestamp: t0.Add(30 * time.Second), Value: 3e-6},
		{Timestamp: t0.Add(50 * time.Second), Value: 2e-6},
		{Timestamp: t0.Add(time.Minute), Value: 4e-6},
	}

	grid := Normalize(raw, DefaultNormalizeConfig())
	require.Len(t, grid, 2)
	assert.Equal(t, t0, grid[0].Timestamp)
	assert.InDelta(t, 2e-6, grid[0].Value, 1e-18)
	assert.InDelta(t, 4e-6, grid[1].Value, 1e-18)
}

func TestNormalizeGridIsContiguous(t *testing.T) {
	raw := []RawSample{
		{Timestamp: t0, Value: 1e-6},
		{Timestamp: t0.Add(10 * time.Minute), Value: 1e-6},
	}

	grid := Normalize(raw, DefaultNormalizeConfig())
	require.Len(t, grid, 11)
	for i, s := range grid {
		assert.Equal(t, t0.Add(time.Duration(i)*time.Minute), s.Timestamp)
	}
}

func TestNormalizeInterpolatesShortGaps(t *testing.T) {
	// A 3-tick gap is within the bound: filled linearly.
	raw := []RawSample{
		{Timestamp: t0, Value: 1e-6},
		{Timestamp: t0.Add(4 * time.Minute), Value: 5e-6},
	}

	grid := Normalize(raw, DefaultNormalizeConfig())
	require.Len(t, grid, 5)
	for i, want := range []float64{1e-6, 2e-6, 3e-6, 4e-6, 5e-6} {
		assert.False(t, grid[i].Missing, "tick %d", i)
		assert.InDelta(t, want, grid[i].Value, 1e-18, "tick %d", i)
	}
}

func TestNormalizeLeavesLongGapsMissing(t *testing.T) {
	// A 9-tick gap exceeds the 5-tick bound: every interior tick stays
	// missing, no interpolation across it.
	raw := []RawSample{
		{Timestamp: t0, Value: 1e-6},
		{Timestamp: t0.Add(10 * time.Minute), Value: 5e-6},
	}

	grid := Normalize(raw, DefaultNormalizeConfig())
	require.Len(t, grid, 11)
	assert.False(t, grid[0].Missing)
	for i := 1; i < 10; i++ {
		assert.True(t, grid[i].Missing, "tick %d", i)
	}
	assert.False(t, grid[10].Missing)
}

func TestNormalizeLogFloor(t *testing.T) {
	raw := []RawSample{
		{Timestamp: t0, Value: 0},
		{Timestamp: t0.Add(time.Minute), Value: -3e-9},
		{Timestamp: t0.Add(2 * time.Minute), Value: 1e-6},
	}

	grid := Normalize(raw, DefaultNormalizeConfig())
	require.Len(t, grid, 3)
	// Non-positive readings clamp to the epsilon floor instead of -Inf/NaN.
	assert.InDelta(t, -10, grid[0].ValueLog, 1e-12)
	assert.InDelta(t, -10, grid[1].ValueLog, 1e-12)
	assert.InDelta(t, -6, grid[2].ValueLog, 1e-12)
	for _, s := range grid {
		assert.False(t, math.IsInf(s.ValueLog, 0))
		assert.False(t, math.IsNaN(s.ValueLog))
	}
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Nil(t, Normalize(nil, DefaultNormalizeConfig()))
}
