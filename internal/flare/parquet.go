// Package flare provides flare catalogue parsing utilities.
// This file handles the interim events parquet artifact.
package flare

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// EventRow is the parquet schema for the interim events artifact.
type EventRow struct {
	TimestampMs int64   `parquet:"timestamp_ms"`
	Class       string  `parquet:"class"`
	Magnitude   float64 `parquet:"magnitude"`
	Rank        int32   `parquet:"rank"`
	Source      string  `parquet:"source"`
}

// WriteEvents writes deduplicated events to a parquet file.
// Output is deterministic for identical input: rows are written in slice
// order with no run metadata.
func WriteEvents(path string, events []Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := parquet.NewGenericWriter[EventRow](f)
	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, EventRow{
			TimestampMs: ev.Timestamp.UnixMilli(),
			Class:       ev.Class,
			Magnitude:   ev.Magnitude,
			Rank:        int32(ev.Rank()),
			Source:      ev.Source.String(),
		})
	}
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

// ReadEvents loads an events parquet file back into Event structs.
func ReadEvents(path string) ([]Event, error) {
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

	reader := parquet.NewGenericReader[EventRow](pf)
	defer reader.Close()

	var events []Event
	buf := make([]EventRow, 1024)
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			row := buf[i]
			if row.Class == "" {
				continue
			}
			events = append(events, Event{
				Timestamp: time.UnixMilli(row.TimestampMs).UTC(),
				Class:     row.Class,
				Letter:    row.Class[0],
				Magnitude: row.Magnitude,
				Source:    sourceFromString(row.Source),
			})
		}
		if n == 0 || err != nil {
			break
		}
	}
	return events, nil
}

func sourceFromString(s string) Source {
	switch s {
	case "noaa_report":
		return SourceNOAAReport
	case "hek":
		return SourceHEK
	default:
		return SourceUnknown
	}
}
