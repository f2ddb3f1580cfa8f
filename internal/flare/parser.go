// Package flare provides flare catalogue parsing utilities.
// This file contains the NOAA yearly report parsers (fixed-width and
// tokenized) and the per-source fallback chain.
package flare

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// =============================================================================
// Report Format Constants
// =============================================================================

const (
	// RecordCode is the NOAA data code that opens every GOES XRS event line.
	RecordCode = "31777"

	// Fixed byte offsets within a report line (after whitespace
	// normalization). The year is not on the line; it comes from the
	// filename.
	offYearLo  = 5  // two-digit year, redundant with the filename
	offYearHi  = 7
	offDayLo   = 7  // day of year, 001-366
	offDayHi   = 10
	offStartLo = 13 // start time HHMM
	offStartHi = 17
	offPeakLo  = 18 // peak time HHMM
	offPeakHi  = 22

	// classColumn is where the classification token search begins.
	classColumn = 27

	// MinLineLen is the shortest line that can hold all fixed fields.
	MinLineLen = 27

	// MaxErrorsToLog caps per-source parse diagnostics.
	MaxErrorsToLog = 10
)

// classPattern matches a GOES classification token, tolerating internal
// spaces ("B 1.0") as found in older report years.
var classPattern = regexp.MustCompile(`[ABCMX]\s*\d+\.?\d*`)

// classToken matches a whole whitespace-delimited classification token.
var classToken = regexp.MustCompile(`^[ABCMX]\d+\.?\d*$`)

// yearPattern extracts the report year from a filename such as
// "goes-xrs-report_2016.txt".
var yearPattern = regexp.MustCompile(`\d{4}`)

// =============================================================================
// Parse Statistics
// =============================================================================

// ParseStats holds counters for one catalogue source.
type ParseStats struct {
	LinesRead int64 // total lines read
	Parsed    int64 // lines that produced an event
	Failed    int64 // event lines that failed validation
	Skipped   int64 // blank lines, headers, other data codes
}

// SourceReport records how a single catalogue source parsed, including
// which strategy produced its events. Never silently prefer one variant:
// the winning strategy is reported per source for diagnostics.
type SourceReport struct {
	Path    string
	Variant string // "fixed-width", "tokenized", "structured" or "none"
	Events  int
	Stats   ParseStats
}

// =============================================================================
// Record Parsers
// =============================================================================

// RecordParser is the per-line parsing capability. TryParse returns the
// parsed event and true, or the zero Event and false when the line does not
// yield a valid record under this strategy.
type RecordParser interface {
	Name() string
	TryParse(line string) (Event, bool)
}

// FixedWidthParser slices report lines at fixed byte offsets.
// Year is taken from the source filename.
type FixedWidthParser struct {
	Year int
}

// Name returns the strategy name.
func (p FixedWidthParser) Name() string { return "fixed-width" }

// TryParse parses one fixed-width report line. A record is accepted only
// if the day-of-year, peak time and classification token all validate;
// anything else is rejected without side effects.
func (p FixedWidthParser) TryParse(line string) (Event, bool) {
	line = NormalizeWhitespace(line)
	if !strings.HasPrefix(strings.TrimSpace(line), RecordCode) || len(line) < MinLineLen {
		return Event{}, false
	}

	yy := strings.TrimSpace(line[offYearLo:offYearHi])
	ddd := strings.TrimSpace(line[offDayLo:offDayHi])
	if !allDigits(yy) || !allDigits(ddd) {
		return Event{}, false
	}

	doy, _ := strconv.Atoi(ddd)
	date, ok := dateFromYearDay(p.Year, doy)
	if !ok {
		return Event{}, false
	}

	hour, minute, ok := parseHHMM(line[offPeakLo:offPeakHi])
	if !ok {
		return Event{}, false
	}

	class, magnitude, ok := findClass(line[classColumn:])
	if !ok {
		return Event{}, false
	}

	ts := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
	return Event{
		Timestamp: ts,
		Class:     class,
		Letter:    class[0],
		Magnitude: magnitude,
		Source:    SourceNOAAReport,
	}, true
}

// TokenizedParser splits report lines on whitespace instead of slicing at
// offsets. It handles years whose exports drifted out of column alignment.
// Expected token layout: code, yy, ddd, start, peak, trailing fields with
// the classification somewhere among them.
type TokenizedParser struct {
	Year int
}

// Name returns the strategy name.
func (p TokenizedParser) Name() string { return "tokenized" }

// TryParse parses one whitespace-tokenized report line.
func (p TokenizedParser) TryParse(line string) (Event, bool) {
	fields := strings.Fields(NormalizeWhitespace(line))
	if len(fields) < 6 || fields[0] != RecordCode {
		return Event{}, false
	}
	if !allDigits(fields[1]) || !allDigits(fields[2]) {
		return Event{}, false
	}

	doy, _ := strconv.Atoi(fields[2])
	date, ok := dateFromYearDay(p.Year, doy)
	if !ok {
		return Event{}, false
	}

	// Peak time sits at a fixed relative position: code yy ddd start peak.
	hour, minute, ok := parseHHMM(fields[4])
	if !ok {
		return Event{}, false
	}

	// Scan trailing tokens for the first classification token.
	for _, tok := range fields[5:] {
		if !classToken.MatchString(tok) {
			continue
		}
		magnitude, _ := strconv.ParseFloat(tok[1:], 64)
		ts := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
		return Event{
			Timestamp: ts,
			Class:     tok,
			Letter:    tok[0],
			Magnitude: magnitude,
			Source:    SourceNOAAReport,
		}, true
	}
	return Event{}, false
}

// =============================================================================
// Source Parsing with Fallback Chain
// =============================================================================

// ParseReportLines parses a NOAA yearly report, trying the positional
// parser first and falling back to the tokenized parser per line.
// Malformed record lines are dropped with a throttled diagnostic, never
// fatal. A source with zero parseable records returns an empty list and an
// error wrapping ErrEmptySource so the caller can exclude it.
func ParseReportLines(r io.Reader, year int, sourceName string) ([]Event, SourceReport, error) {
	parsers := []RecordParser{
		FixedWidthParser{Year: year},
		TokenizedParser{Year: year},
	}
	variantHits := make(map[string]int, len(parsers))

	report := SourceReport{Path: sourceName}
	var events []Event
	errorCount := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		report.Stats.LinesRead++

		trimmed := strings.TrimSpace(NormalizeWhitespace(line))
		if trimmed == "" || !strings.HasPrefix(trimmed, RecordCode) {
			report.Stats.Skipped++
			continue
		}

		parsed := false
		for _, p := range parsers {
			if ev, ok := p.TryParse(line); ok {
				events = append(events, ev)
				variantHits[p.Name()]++
				report.Stats.Parsed++
				parsed = true
				break
			}
		}
		if !parsed {
			report.Stats.Failed++
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("[%s] Parse error (line %d): no strategy matched", sourceName, report.Stats.LinesRead)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, report, fmt.Errorf("read %s: %w", sourceName, err)
	}
	if errorCount > MaxErrorsToLog {
		log.Printf("[%s] ... and %d more parse errors (suppressed)", sourceName, errorCount-MaxErrorsToLog)
	}

	report.Events = len(events)
	report.Variant = winningVariant(variantHits)
	if len(events) == 0 {
		return nil, report, fmt.Errorf("%w: %s", ErrEmptySource, sourceName)
	}
	return events, report, nil
}

// ParseReportFile opens a report file (plain or gzip), derives the year
// from its name, and parses it with the fallback chain.
func ParseReportFile(path string) ([]Event, SourceReport, error) {
	year, err := YearFromFilename(path)
	if err != nil {
		return nil, SourceReport{Path: path, Variant: "none"}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, SourceReport{Path: path, Variant: "none"}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, SourceReport{Path: path, Variant: "none"}, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	return ParseReportLines(r, year, filepath.Base(path))
}

// SkipReportFile reports whether a catalogue filename is one of the
// known-duplicate report variants that must not be parsed.
func SkipReportFile(name string) bool {
	lower := strings.ToLower(filepath.Base(name))
	for _, s := range []string{"input-ytd", "seldads", "modified"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// YearFromFilename extracts the 4-digit report year from a filename.
func YearFromFilename(path string) (int, error) {
	m := yearPattern.FindString(filepath.Base(path))
	if m == "" {
		return 0, fmt.Errorf("%w: %s", ErrNoYearInFilename, filepath.Base(path))
	}
	return strconv.Atoi(m)
}

// =============================================================================
// Field Helpers
// =============================================================================

// NormalizeWhitespace replaces non-breaking spaces and tabs with plain
// spaces so fixed offsets line up. Older NOAA exports contain raw 0xA0
// bytes as well as UTF-8 NBSP sequences.
func NormalizeWhitespace(line string) string {
	line = strings.ReplaceAll(line, "\u00a0", " ")
	line = strings.ReplaceAll(line, "\xa0", " ")
	return strings.ReplaceAll(line, "\t", " ")
}

// dateFromYearDay resolves a 1-based day of year against a calendar year.
// Day 366 is rejected on non-leap years.
func dateFromYearDay(year, doy int) (time.Time, bool) {
	if doy < 1 || doy > 366 {
		return time.Time{}, false
	}
	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
	if date.Year() != year {
		return time.Time{}, false
	}
	return date, true
}

// parseHHMM extracts a valid hour and minute from a 4-digit HHMM token.
// Non-digit bytes are stripped first; a token that does not reduce to
// exactly four digits is invalid.
func parseHHMM(s string) (hour, minute int, ok bool) {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) != 4 {
		return 0, 0, false
	}
	hour = int(digits[0]-'0')*10 + int(digits[1]-'0')
	minute = int(digits[2]-'0')*10 + int(digits[3]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// findClass searches the remainder of a line for a classification token,
// strips internal spaces, and splits it into class and magnitude.
func findClass(s string) (class string, magnitude float64, ok bool) {
	m := classPattern.FindString(s)
	if m == "" {
		return "", 0, false
	}
	m = strings.ReplaceAll(m, " ", "")
	m = strings.TrimSpace(m)
	if m == "" || !IsClassLetter(m[0]) {
		return "", 0, false
	}
	if len(m) > 1 {
		magnitude, _ = strconv.ParseFloat(m[1:], 64)
	}
	return m, magnitude, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func winningVariant(hits map[string]int) string {
	best, bestCount := "none", 0
	for _, name := range []string{"fixed-width", "tokenized"} {
		if hits[name] > bestCount {
			best, bestCount = name, hits[name]
		}
	}
	return best
}
