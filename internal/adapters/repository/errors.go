package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("session not found")

	// ErrTerminal is returned when a caller attempts a status transition
	// out of a completed or failed session.
	ErrTerminal = errors.New("session is in a terminal state")

	// ErrIntegrity marks constraint violations: duplicate combination
	// positions, strikes linked twice, orphaned references. These indicate
	// a logic defect and are never silently repaired.
	ErrIntegrity = errors.New("integrity violation")
)
