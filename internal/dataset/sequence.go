// Package dataset provides dataset construction utilities.
// This file slices the feature/label table into fixed-length historical
// windows for sequence models.
package dataset

import "time"

// SequenceSet is the tensor-shaped sequence output: Data[k] holds the
// features of ticks [i, i+Length) flattened row-major into
// Length*FeatureCount values, carrying the label and timestamp of tick
// i+Length-1.
type SequenceSet struct {
	Length       int
	FeatureCount int
	Names        []string
	Timestamps   []time.Time
	Labels       []int8
	Data         [][]float64
}

// BuildSequences slices the table into length-L historical windows.
// Slices spanning a time gap (rows dropped earlier for missing flux or
// insufficient history) would carry undefined values, so they are
// discarded rather than imputed: every kept slice covers L strictly
// consecutive grid ticks.
func BuildSequences(t *Table, length int, step time.Duration) *SequenceSet {
	set := &SequenceSet{
		Length:       length,
		FeatureCount: len(t.Names),
		Names:        t.Names,
	}
	if length <= 0 || len(t.Rows) < length {
		return set
	}

	for i := 0; i+length <= len(t.Rows); i++ {
		last := t.Rows[i+length-1]
		if !t.Rows[i].Timestamp.Add(time.Duration(length-1) * step).Equal(last.Timestamp) {
			continue
		}

		flat := make([]float64, 0, length*set.FeatureCount)
		for j := i; j < i+length; j++ {
			flat = append(flat, t.Rows[j].Features...)
		}
		set.Timestamps = append(set.Timestamps, last.Timestamp)
		set.Labels = append(set.Labels, last.Label)
		set.Data = append(set.Data, flat)
	}
	return set
}
