package pipeline

import (
	"time"

	"github.com/fightsight/engine/internal/domain/pose"
	"github.com/fightsight/engine/pkg/logger"
)

// OrchestratorOption applies a configuration option to the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithConcurrency caps the number of in-flight classification calls per
// session.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMaxAttempts bounds how often a transiently failing call is tried.
func WithMaxAttempts(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithInitialBackoff sets the first retry delay.
func WithInitialBackoff(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.initialBackoff = d
		}
	}
}

// WithCallGrace bounds a single classification call. In-flight calls keep
// this much time to drain after the session budget expires.
func WithCallGrace(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.callGrace = d
		}
	}
}

// WithOrchestratorLogger sets a custom logger for the orchestrator.
func WithOrchestratorLogger(l logger.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// RunnerOption applies a configuration option to the Runner.
type RunnerOption func(*Runner)

// WithBudget sets the maximum wall-clock time one session may spend in
// processing. Zero disables the budget.
func WithBudget(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.budget = d
	}
}

// WithSourceFactory substitutes how pose data is opened from a job's path.
// Mainly for tests.
func WithSourceFactory(f func(path string) pose.Source) RunnerOption {
	return func(r *Runner) {
		if f != nil {
			r.newSource = f
		}
	}
}

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(l logger.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
