package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted is returned when a request arrives before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrQueueFull signals intake backpressure; the session stays pending
	// and can be resubmitted.
	ErrQueueFull = errors.New("job queue is full")

	// ErrAlreadyQueued means the session is already claimed by a queued
	// or running job.
	ErrAlreadyQueued = errors.New("session already queued")
)
