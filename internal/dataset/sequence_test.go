package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowAt(minute int, label int8, features ...float64) Row {
	return Row{
		Timestamp: gridStart.Add(time.Duration(minute) * time.Minute),
		Features:  features,
		Label:     label,
	}
}

func TestBuildSequencesSlidingWindows(t *testing.T) {
	table := &Table{
		Names: []string{"a", "b"},
		Rows: []Row{
			rowAt(0, 0, 1, 10),
			rowAt(1, 0, 2, 20),
			rowAt(2, 4, 3, 30),
			rowAt(3, 0, 4, 40),
		},
	}

	set := BuildSequences(table, 3, time.Minute)
	require.Len(t, set.Data, 2)
	assert.Equal(t, 3, set.Length)
	assert.Equal(t, 2, set.FeatureCount)

	// Each sample carries the label and timestamp of its last row.
	assert.Equal(t, []float64{1, 10, 2, 20, 3, 30}, set.Data[0])
	assert.Equal(t, int8(4), set.Labels[0])
	assert.Equal(t, gridStart.Add(2*time.Minute), set.Timestamps[0])

	assert.Equal(t, []float64{2, 20, 3, 30, 4, 40}, set.Data[1])
	assert.Equal(t, int8(0), set.Labels[1])
}

func TestBuildSequencesSkipGaps(t *testing.T) {
	// Rows at minutes 0,1,2 then 10,11,12: slices spanning the gap are
	// discarded, the two contiguous runs each yield one slice.
	table := &Table{Names: []string{"a"}}
	for _, m := range []int{0, 1, 2, 10, 11, 12} {
		table.Rows = append(table.Rows, rowAt(m, 0, float64(m)))
	}

	set := BuildSequences(table, 3, time.Minute)
	require.Len(t, set.Data, 2)
	assert.Equal(t, []float64{0, 1, 2}, set.Data[0])
	assert.Equal(t, []float64{10, 11, 12}, set.Data[1])
}

func TestBuildSequencesShortTable(t *testing.T) {
	table := &Table{Names: []string{"a"}, Rows: []Row{rowAt(0, 0, 1)}}

	set := BuildSequences(table, 3, time.Minute)
	assert.Empty(t, set.Data)
}
