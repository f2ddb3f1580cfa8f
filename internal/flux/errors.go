package flux

import "errors"

var (
	// ErrNoFluxData means every configured flux source yielded zero
	// samples. Fatal for the run.
	ErrNoFluxData = errors.New("flux: no flux data")

	// ErrEmptySource means one source file yielded zero samples. The
	// source is excluded; the run continues if others succeed.
	ErrEmptySource = errors.New("flux: source contains no samples")

	// ErrUnknownFormat means a source file matched no supported format.
	ErrUnknownFormat = errors.New("flux: unknown source format")
)
