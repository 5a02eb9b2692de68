package store

import "errors"

// Sentinel errors for snapshot loading.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDataUnavailable indicates a source data file is missing. This is
	// fatal to the session: no computation proceeds without both datasets.
	ErrDataUnavailable = errors.New("source data unavailable")

	// ErrMalformedData indicates a source file exists but its content is
	// structurally invalid (bad JSON, or a violated collection invariant
	// such as duplicate message ids). Also fatal to the session.
	ErrMalformedData = errors.New("source data malformed")
)
