// Package flare provides flare catalogue parsing utilities.
// This file contains the structured (HEK CSV export) parser.
package flare

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// HEK export column names. The export carries many more columns; only these
// two are required, addressed by name with no positional guessing.
const (
	hekPeakTimeColumn = "event_peaktime"
	hekClassColumn    = "fl_goescls"
)

// hekTimeLayouts are the peak-time formats seen across HEK exports.
var hekTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseHEK reads a header-bearing HEK CSV export and returns its events.
// A missing required column fails the whole source with ErrSchemaMismatch.
// Individual rows with an unparseable time or class are dropped with a
// throttled diagnostic.
func ParseHEK(r io.Reader, sourceName string) ([]Event, SourceReport, error) {
	report := SourceReport{Path: sourceName, Variant: "structured"}

	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, report, fmt.Errorf("read %s header: %w", sourceName, err)
	}

	peakIdx, classIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case hekPeakTimeColumn:
			peakIdx = i
		case hekClassColumn:
			classIdx = i
		}
	}
	if peakIdx < 0 || classIdx < 0 {
		return nil, report, fmt.Errorf("%w: %s needs %q and %q", ErrSchemaMismatch, sourceName, hekPeakTimeColumn, hekClassColumn)
	}

	var events []Event
	errorCount := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Stats.Failed++
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("[%s] CSV read error (row %d): %v", sourceName, report.Stats.LinesRead, err)
			}
			continue
		}
		report.Stats.LinesRead++

		if len(row) <= peakIdx || len(row) <= classIdx {
			report.Stats.Failed++
			continue
		}

		ev, ok := parseHEKRow(row[peakIdx], row[classIdx])
		if !ok {
			report.Stats.Failed++
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("[%s] Parse error (row %d): bad peak time or class", sourceName, report.Stats.LinesRead)
			}
			continue
		}
		events = append(events, ev)
		report.Stats.Parsed++
	}
	if errorCount > MaxErrorsToLog {
		log.Printf("[%s] ... and %d more parse errors (suppressed)", sourceName, errorCount-MaxErrorsToLog)
	}

	report.Events = len(events)
	if len(events) == 0 {
		return nil, report, fmt.Errorf("%w: %s", ErrEmptySource, sourceName)
	}
	return events, report, nil
}

// parseHEKRow converts one peak-time/class-code pair into an Event.
func parseHEKRow(peak, class string) (Event, bool) {
	peak = strings.TrimSpace(peak)
	class = strings.ToUpper(strings.TrimSpace(class))
	if peak == "" || class == "" || !IsClassLetter(class[0]) {
		return Event{}, false
	}

	var ts time.Time
	var err error
	for _, layout := range hekTimeLayouts {
		ts, err = time.Parse(layout, peak)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Event{}, false
	}

	_, magnitude, ok := findClass(class)
	if !ok {
		// Class letter alone is still a valid record ("M" with no number).
		magnitude = 0
	}
	return Event{
		Timestamp: ts.UTC(),
		Class:     class,
		Letter:    class[0],
		Magnitude: magnitude,
		Source:    SourceHEK,
	}, true
}
