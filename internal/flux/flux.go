// Package flux normalizes irregular X-ray flux measurements onto a uniform
// time grid. Raw samples from many source files are merged in deterministic
// order, resampled by mean aggregation, interpolated across short gaps only,
// and log-stabilized.
package flux

import "time"

// SchemaVersion is the current flux sample schema version.
const SchemaVersion = 1

// RawSample is a single measurement as read from a source file, before any
// grid alignment.
type RawSample struct {
	Timestamp time.Time
	Value     float64
}

// Sample is one tick of the normalized series. The grid is contiguous and
// strictly increasing; ticks inside gaps longer than the interpolation bound
// carry Missing=true and undefined Value/ValueLog.
type Sample struct {
	Timestamp time.Time
	Value     float64 // raw flux, W/m^2
	ValueLog  float64 // log10(max(Value, epsilon))
	Missing   bool
}
