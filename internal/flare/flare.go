// Package flare parses heterogeneous solar flare catalogues into canonical
// flare events and collapses duplicate reports of the same physical event.
//
// Two catalogue families are supported:
//   - NOAA GOES XRS yearly reports (fixed-width text, one event per line)
//   - HEK exports (CSV with named columns)
//
// All parsing converges on the Event struct below. Events are never mutated
// after construction; downstream stages only read them.
package flare

import (
	"time"
)

// SchemaVersion is the current flare event schema version.
const SchemaVersion = 1

// Source identifies which catalogue family an event was parsed from.
type Source uint8

const (
	SourceUnknown Source = iota
	SourceNOAAReport
	SourceHEK
)

// String returns the source name used in diagnostics and parquet output.
func (s Source) String() string {
	switch s {
	case SourceNOAAReport:
		return "noaa_report"
	case SourceHEK:
		return "hek"
	default:
		return "unknown"
	}
}

// Event represents a single flare report with a resolved peak time and
// GOES classification. Class keeps the full token ("X2.1"), Letter its
// leading class letter. Magnitude is 0 when the token carried no number.
type Event struct {
	Timestamp time.Time // peak time, UTC
	Class     string    // full classification token, e.g. "X2.1"
	Letter    byte      // 'A', 'B', 'C', 'M' or 'X'
	Magnitude float64   // numeric part of the token, 0 if absent
	Source    Source
}

// Rank returns the Event's intensity rank.
func (e Event) Rank() int {
	return Rank(e.Letter)
}

// Rank maps a GOES class letter to an ordinal intensity:
// X=4, M=3, C=2, B=1, A=1. Any other byte ranks 0.
// A and B share a rank; both are background-level activity.
func Rank(letter byte) int {
	switch letter {
	case 'X':
		return 4
	case 'M':
		return 3
	case 'C':
		return 2
	case 'B', 'A':
		return 1
	default:
		return 0
	}
}

// MaxRank is the highest intensity rank (X class).
const MaxRank = 4

// IsClassLetter reports whether b is a valid GOES class letter.
func IsClassLetter(b byte) bool {
	switch b {
	case 'A', 'B', 'C', 'M', 'X':
		return true
	default:
		return false
	}
}
