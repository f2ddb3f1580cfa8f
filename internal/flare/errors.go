package flare

import "errors"

// Sentinel errors for catalogue-level failures. Record-level failures are
// never surfaced as errors; malformed records are counted and dropped.
var (
	// ErrNoCatalogueData means every configured catalogue source yielded
	// zero parseable events. Fatal for the run.
	ErrNoCatalogueData = errors.New("flare: no catalogue data")

	// ErrEmptySource means a single source yielded zero parseable events.
	// The source is excluded; the run continues if others succeed.
	ErrEmptySource = errors.New("flare: source contains no parseable records")

	// ErrSchemaMismatch means a structured source is missing a required
	// column. Fatal for that source only.
	ErrSchemaMismatch = errors.New("flare: required column missing")

	// ErrNoYearInFilename means a report filename carries no 4-digit year,
	// so fixed-width records cannot be dated.
	ErrNoYearInFilename = errors.New("flare: no year in report filename")
)
