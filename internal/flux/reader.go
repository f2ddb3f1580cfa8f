// Package flux provides flux series processing utilities.
// This file contains the raw source file readers and format detection.
package flux

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/pgzip"
)

// MaxErrorsToLog caps per-file parse diagnostics.
const MaxErrorsToLog = 10

// xrsbEnergy is the long-wavelength GOES XRS channel used for flare
// classification. JSON feeds carry both channels; only this one is kept.
const xrsbEnergy = "0.1-0.8nm"

// GOESRecord mirrors one element of the SWPC GOES X-ray flux JSON feed.
type GOESRecord struct {
	TimeTag string  `json:"time_tag"`
	Flux    float64 `json:"flux"`
	Energy  string  `json:"energy"`
}

// DetectFormat determines the source file format from its name and, for
// ambiguous extensions, a peek at the content.
func DetectFormat(path string) string {
	base := strings.ToLower(filepath.Base(path))
	name := strings.TrimSuffix(base, ".gz")

	switch {
	case strings.HasSuffix(name, ".csv"):
		return "csv"
	case strings.HasSuffix(name, ".json"):
		return "goes_json"
	case strings.HasSuffix(name, ".txt"):
		// SWPC serves JSON under .txt names; check the first byte.
		data, err := os.ReadFile(path)
		if err == nil {
			for _, b := range data {
				if b == ' ' || b == '\n' || b == '\r' || b == '\t' {
					continue
				}
				if b == '[' {
					return "goes_json"
				}
				break
			}
		}
		return "unknown"
	default:
		return "unknown"
	}
}

// ReadFile reads all samples from one flux source file. Gzip-compressed
// files are decompressed in parallel. Malformed rows are dropped with a
// throttled diagnostic. A file with zero usable samples returns an error
// wrapping ErrEmptySource.
func ReadFile(path string) ([]RawSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := pgzip.NewReaderN(f, 256*1024, runtime.NumCPU())
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	name := filepath.Base(path)
	var samples []RawSample
	switch DetectFormat(path) {
	case "csv":
		samples, err = readCSV(r, name)
	case "goes_json":
		data, rerr := io.ReadAll(r)
		if rerr != nil {
			return nil, fmt.Errorf("read %s: %w", path, rerr)
		}
		samples, err = readGOESJSON(data, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, name)
	}
	return samples, nil
}

// fluxTimeLayouts are the timestamp formats seen across flux exports.
var fluxTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseFluxTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range fluxTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// readCSV reads a timestamp,flux table. A header row is recognized by its
// unparseable first cell; named columns override the positional default.
func readCSV(r io.Reader, name string) ([]RawSample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	tsIdx, fluxIdx := 0, 1
	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var rows [][]string
	if _, ok := parseFluxTime(first[0]); ok {
		rows = append(rows, first)
	} else {
		for i, col := range first {
			switch strings.ToLower(strings.TrimSpace(col)) {
			case "timestamp", "time", "time_tag":
				tsIdx = i
			case "flux", "xrsb", "value":
				fluxIdx = i
			}
		}
	}

	var samples []RawSample
	errorCount := 0
	rowNum := 0
	for {
		var row []string
		if len(rows) > 0 {
			row, rows = rows[0], rows[1:]
		} else {
			row, err = cr.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
		}
		rowNum++

		if len(row) <= tsIdx || len(row) <= fluxIdx {
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("[%s] Parse error (row %d): too few columns", name, rowNum)
			}
			continue
		}
		ts, ok := parseFluxTime(row[tsIdx])
		if !ok {
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("[%s] Parse error (row %d): bad timestamp %q", name, rowNum, row[tsIdx])
			}
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[fluxIdx]), 64)
		if err != nil {
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("[%s] Parse error (row %d): bad flux %q", name, rowNum, row[fluxIdx])
			}
			continue
		}
		samples = append(samples, RawSample{Timestamp: ts, Value: v})
	}
	if errorCount > MaxErrorsToLog {
		log.Printf("[%s] ... and %d more parse errors (suppressed)", name, errorCount-MaxErrorsToLog)
	}
	return samples, nil
}

// readGOESJSON reads the SWPC GOES X-ray flux JSON feed, keeping only the
// long-wavelength channel.
func readGOESJSON(data []byte, name string) ([]RawSample, error) {
	var records []GOESRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("json %s: %w", name, err)
	}

	var samples []RawSample
	errorCount := 0
	for i, rec := range records {
		if rec.Energy != "" && rec.Energy != xrsbEnergy {
			continue
		}
		ts, ok := parseFluxTime(rec.TimeTag)
		if !ok {
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("[%s] Parse error (record %d): bad time_tag %q", name, i, rec.TimeTag)
			}
			continue
		}
		samples = append(samples, RawSample{Timestamp: ts, Value: rec.Flux})
	}
	if errorCount > MaxErrorsToLog {
		log.Printf("[%s] ... and %d more parse errors (suppressed)", name, errorCount-MaxErrorsToLog)
	}
	return samples, nil
}
