package pipeline

import "errors"

// Sentinel kinds for pipeline errors.
var (
	// ErrTimeout marks a session that exceeded its wall-clock budget. The
	// run drains in-flight work, then the session is failed with this.
	ErrTimeout = errors.New("session processing budget exceeded")

	// ErrValidation marks malformed session input. The affected item is
	// skipped; only a fully unusable input fails the run.
	ErrValidation = errors.New("invalid session input")
)
