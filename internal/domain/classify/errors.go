package classify

import "errors"

// Sentinel kinds for provider errors. Callers branch with errors.Is.
var (
	// ErrTransient marks timeouts and rate limiting: retried with backoff,
	// then recorded as a failed classification without failing the session.
	ErrTransient = errors.New("transient provider error")

	// ErrFatal marks authentication failures, quota exhaustion and
	// malformed responses: the whole session aborts.
	ErrFatal = errors.New("fatal provider error")
)

// Transient reports whether err belongs to the retryable class.
func Transient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Fatal reports whether err must abort the session.
func Fatal(err error) bool {
	return errors.Is(err, ErrFatal)
}
