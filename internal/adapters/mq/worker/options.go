// Package worker runs queued analysis jobs on a fixed pool.
package worker

import (
	"github.com/fightsight/engine/pkg/logger"
)

// Option applies a configuration option to the SessionWorker.
type Option func(*SessionWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *SessionWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *SessionWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
