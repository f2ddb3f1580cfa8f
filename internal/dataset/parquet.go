// Package dataset provides dataset construction utilities.
// This file handles the canonical dataset and sequence parquet outputs.
package dataset

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// TableRow is the parquet schema of the canonical dataset: the default
// 15/30/60/180-minute window set. Tables built with a different window
// configuration cannot be written to this schema.
type TableRow struct {
	TimestampMs int64   `parquet:"timestamp_ms"`
	FluxLog     float64 `parquet:"flux_log"`

	RollMean15m float64 `parquet:"roll_mean_15m"`
	RollStd15m  float64 `parquet:"roll_std_15m"`
	RollMin15m  float64 `parquet:"roll_min_15m"`
	RollMax15m  float64 `parquet:"roll_max_15m"`
	Delta15m    float64 `parquet:"delta_15m"`

	RollMean30m float64 `parquet:"roll_mean_30m"`
	RollStd30m  float64 `parquet:"roll_std_30m"`
	RollMin30m  float64 `parquet:"roll_min_30m"`
	RollMax30m  float64 `parquet:"roll_max_30m"`
	Delta30m    float64 `parquet:"delta_30m"`

	RollMean60m float64 `parquet:"roll_mean_60m"`
	RollStd60m  float64 `parquet:"roll_std_60m"`
	RollMin60m  float64 `parquet:"roll_min_60m"`
	RollMax60m  float64 `parquet:"roll_max_60m"`
	Delta60m    float64 `parquet:"delta_60m"`

	RollMean180m float64 `parquet:"roll_mean_180m"`
	RollStd180m  float64 `parquet:"roll_std_180m"`
	RollMin180m  float64 `parquet:"roll_min_180m"`
	RollMax180m  float64 `parquet:"roll_max_180m"`
	Delta180m    float64 `parquet:"delta_180m"`

	Hour      int32 `parquet:"hour"`
	DayOfYear int32 `parquet:"day_of_year"`
	Label     int32 `parquet:"label"`
}

// canonicalNames is the feature order TableRow expects.
var canonicalNames = featureNames(DefaultConfig())

// canonicalFeatureCount excludes timestamp and label.
var canonicalFeatureCount = len(canonicalNames)

// WriteTable writes the canonical dataset parquet file. The table's
// feature names must match the canonical schema exactly.
func WriteTable(path string, t *Table) error {
	if err := checkCanonical(t.Names); err != nil {
		return err
	}

	rows := make([]TableRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		f := r.Features
		rows = append(rows, TableRow{
			TimestampMs: r.Timestamp.UnixMilli(),
			FluxLog:     f[0],

			RollMean15m: f[1], RollStd15m: f[2], RollMin15m: f[3], RollMax15m: f[4], Delta15m: f[5],
			RollMean30m: f[6], RollStd30m: f[7], RollMin30m: f[8], RollMax30m: f[9], Delta30m: f[10],
			RollMean60m: f[11], RollStd60m: f[12], RollMin60m: f[13], RollMax60m: f[14], Delta60m: f[15],
			RollMean180m: f[16], RollStd180m: f[17], RollMin180m: f[18], RollMax180m: f[19], Delta180m: f[20],

			Hour:      int32(f[21]),
			DayOfYear: int32(f[22]),
			Label:     int32(r.Label),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := parquet.NewGenericWriter[TableRow](f)
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close %s: %w", path, err)
	}
	return f.Close()
}

// ReadTable loads a canonical dataset parquet file.
func ReadTable(path string) (*Table, error) {
	rows, err := ReadTableRows(path)
	if err != nil {
		return nil, err
	}

	t := &Table{Names: append([]string(nil), canonicalNames...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, Row{
			Timestamp: time.UnixMilli(r.TimestampMs).UTC(),
			Features: []float64{
				r.FluxLog,
				r.RollMean15m, r.RollStd15m, r.RollMin15m, r.RollMax15m, r.Delta15m,
				r.RollMean30m, r.RollStd30m, r.RollMin30m, r.RollMax30m, r.Delta30m,
				r.RollMean60m, r.RollStd60m, r.RollMin60m, r.RollMax60m, r.Delta60m,
				r.RollMean180m, r.RollStd180m, r.RollMin180m, r.RollMax180m, r.Delta180m,
				float64(r.Hour), float64(r.DayOfYear),
			},
			Label: int8(r.Label),
		})
	}
	return t, nil
}

// ReadTableRows loads the raw parquet rows, for consumers that want the
// flat schema (ClickHouse loaders).
func ReadTableRows(path string) ([]TableRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parquet open %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[TableRow](pf)
	defer reader.Close()

	var rows []TableRow
	buf := make([]TableRow, 4096)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if n == 0 || err != nil {
			break
		}
	}
	return rows, nil
}

// SequenceRow is the parquet schema for the sequence tensor output:
// one flattened Length x FeatureCount block per sample.
type SequenceRow struct {
	TimestampMs int64     `parquet:"timestamp_ms"`
	Label       int32     `parquet:"label"`
	Length      int32     `parquet:"length"`
	Width       int32     `parquet:"width"`
	Features    []float64 `parquet:"features"`
}

// WriteSequences writes the sequence tensor parquet file.
func WriteSequences(path string, set *SequenceSet) error {
	rows := make([]SequenceRow, 0, len(set.Data))
	for k, flat := range set.Data {
		rows = append(rows, SequenceRow{
			TimestampMs: set.Timestamps[k].UnixMilli(),
			Label:       int32(set.Labels[k]),
			Length:      int32(set.Length),
			Width:       int32(set.FeatureCount),
			Features:    flat,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := parquet.NewGenericWriter[SequenceRow](f)
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close %s: %w", path, err)
	}
	return f.Close()
}

func checkCanonical(names []string) error {
	if len(names) != canonicalFeatureCount {
		return fmt.Errorf("dataset: table has %d features, canonical schema has %d", len(names), canonicalFeatureCount)
	}
	for i, n := range names {
		if n != canonicalNames[i] {
			return fmt.Errorf("dataset: feature %d is %q, canonical schema expects %q", i, n, canonicalNames[i])
		}
	}
	return nil
}
