package pose

import "errors"

// Sentinel kinds for pose-source errors.
var (
	ErrEmptySequence = errors.New("pose sequence is empty")
)
