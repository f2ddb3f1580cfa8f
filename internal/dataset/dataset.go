// Package dataset builds the supervised feature/label table from the
// normalized flux series and the deduplicated flare events. The pipeline
// is a strict single-pass batch transform: align events onto the grid,
// compute look-ahead labels, compute look-back features, then join the two
// by timestamp.
package dataset

import (
	"fmt"
	"time"

	"github.com/flarelab/flarecast/internal/flare"
	"github.com/flarelab/flarecast/internal/flux"
)

// Config holds the per-run dataset parameters. Built once in main and
// passed by value; never mutated downstream.
//
// Horizon (look-ahead, labels) and Windows (look-back, features) are
// deliberately separate fields. They must never share a value object: the
// two point in opposite directions in time.
type Config struct {
	GridStep       time.Duration
	Horizon        time.Duration   // label look-ahead
	Windows        []time.Duration // feature look-back windows
	SequenceLength int             // 0 disables sequence output
}

// DefaultConfig returns the standard 1-minute-grid parameters: 60-minute
// prediction horizon and 15/30/60/180-minute feature windows.
func DefaultConfig() Config {
	return Config{
		GridStep: time.Minute,
		Horizon:  60 * time.Minute,
		Windows: []time.Duration{
			15 * time.Minute,
			30 * time.Minute,
			60 * time.Minute,
			180 * time.Minute,
		},
	}
}

// Validate checks that all durations are positive multiples of the grid
// step.
func (c Config) Validate() error {
	if c.GridStep <= 0 {
		return fmt.Errorf("dataset: grid step must be positive, got %v", c.GridStep)
	}
	if c.Horizon <= 0 || c.Horizon%c.GridStep != 0 {
		return fmt.Errorf("dataset: horizon %v must be a positive multiple of step %v", c.Horizon, c.GridStep)
	}
	if len(c.Windows) == 0 {
		return fmt.Errorf("dataset: at least one feature window required")
	}
	for _, w := range c.Windows {
		if w <= 0 || w%c.GridStep != 0 {
			return fmt.Errorf("dataset: window %v must be a positive multiple of step %v", w, c.GridStep)
		}
	}
	if c.SequenceLength < 0 {
		return fmt.Errorf("dataset: sequence length must not be negative")
	}
	return nil
}

// Row is one labeled sample of the final table. Features are parallel to
// Table.Names.
type Row struct {
	Timestamp time.Time
	Features  []float64
	Label     int8
}

// Table is the canonical feature/label table, keyed by timestamp.
type Table struct {
	Names []string // ordered feature names
	Rows  []Row
}

// Build runs the full core transform: event alignment, labeling, feature
// computation, and the timestamp join. The labelers and the feature engine
// only read their inputs; they merge by grid index at the end.
func Build(series []flux.Sample, events []flare.Event, cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, flux.ErrNoFluxData
	}

	intensity := AlignEvents(events, series[0].Timestamp, len(series), cfg.GridStep)
	labels := Labels(intensity, cfg.GridStep, cfg.Horizon)

	table, gridIdx := Features(series, cfg)
	for k, i := range gridIdx {
		table.Rows[k].Label = labels[i]
	}
	return table, nil
}
