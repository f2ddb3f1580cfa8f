// Package flux provides flux series processing utilities.
// This file handles the partial and normalized flux parquet artifacts.
package flux

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// RawRow is the parquet schema for a worker's partial artifact.
type RawRow struct {
	TimestampMs int64   `parquet:"timestamp_ms"`
	Flux        float64 `parquet:"flux"`
}

// SampleRow is the parquet schema for the normalized flux artifact.
// Missing ticks are kept so downstream stages see the full grid.
type SampleRow struct {
	TimestampMs int64   `parquet:"timestamp_ms"`
	Flux        float64 `parquet:"flux"`
	FluxLog     float64 `parquet:"flux_log"`
	Missing     bool    `parquet:"missing"`
}

// WritePart writes one worker's raw samples to a partial artifact.
func WritePart(path string, samples []RawSample) error {
	rows := make([]RawRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, RawRow{TimestampMs: s.Timestamp.UnixMilli(), Flux: s.Value})
	}
	return writeRows(path, rows)
}

// ReadPart loads a partial artifact back into raw samples.
func ReadPart(path string) ([]RawSample, error) {
	rows, err := readRows[RawRow](path)
	if err != nil {
		return nil, err
	}
	samples := make([]RawSample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, RawSample{Timestamp: time.UnixMilli(r.TimestampMs).UTC(), Value: r.Flux})
	}
	return samples, nil
}

// WriteSeries writes the normalized series, missing ticks included.
func WriteSeries(path string, series []Sample) error {
	rows := make([]SampleRow, 0, len(series))
	for _, s := range series {
		rows = append(rows, SampleRow{
			TimestampMs: s.Timestamp.UnixMilli(),
			Flux:        s.Value,
			FluxLog:     s.ValueLog,
			Missing:     s.Missing,
		})
	}
	return writeRows(path, rows)
}

// ReadSeries loads the normalized series.
func ReadSeries(path string) ([]Sample, error) {
	rows, err := readRows[SampleRow](path)
	if err != nil {
		return nil, err
	}
	series := make([]Sample, 0, len(rows))
	for _, r := range rows {
		series = append(series, Sample{
			Timestamp: time.UnixMilli(r.TimestampMs).UTC(),
			Value:     r.Flux,
			ValueLog:  r.FluxLog,
			Missing:   r.Missing,
		})
	}
	return series, nil
}

func writeRows[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := parquet.NewGenericWriter[T](f)
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

func readRows[T any](path string) ([]T, error) {
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

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	var rows []T
	buf := make([]T, 4096)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if n == 0 || err != nil {
			break
		}
	}
	return rows, nil
}
