package service

import (
	"time"

	"github.com/fightsight/engine/internal/adapters/repository"
	"github.com/fightsight/engine/internal/domain/classify"
	"github.com/fightsight/engine/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a pre-opened store instead of opening SQLite at the
// configured path.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDBPath sets where the SQLite database lives.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithClassifier injects the classification collaborator.
func WithClassifier(c classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithReportGenerator injects the report-generation collaborator.
func WithReportGenerator(r classify.ReportGenerator) Option {
	return func(s *Service) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithProviderEndpoints configures the HTTP provider clients built at
// Start when no collaborators are injected.
func WithProviderEndpoints(classifierURL, reporterURL, apiKey string) Option {
	return func(s *Service) {
		s.classifierURL = classifierURL
		s.reporterURL = reporterURL
		s.providerKey = apiKey
	}
}

// WithWorkerCount sets the number of concurrent session pipelines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithClaimSize bounds how many sessions may be claimed at once.
func WithClaimSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.claimSize = size
		}
	}
}

// WithClassifyConcurrency caps in-flight classification calls per session.
func WithClassifyConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.classifyConcurrency = n
		}
	}
}

// WithClassifyMaxAttempts bounds retries of transient classifier errors.
func WithClassifyMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.classifyMaxAttempts = n
		}
	}
}

// WithClassifyRateLimit sets the shared outbound calls-per-second limit
// across all sessions. Zero disables the limiter.
func WithClassifyRateLimit(rps float64) Option {
	return func(s *Service) {
		if rps >= 0 {
			s.classifyRateLimit = rps
		}
	}
}

// WithSessionBudget sets the wall-clock limit for one session's run.
func WithSessionBudget(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionBudget = d
		}
	}
}

// WithDetectionTuning overrides the detector's velocity threshold and
// refractory period. Zero values keep the defaults.
func WithDetectionTuning(velocityThreshold, refractoryPeriod float64) Option {
	return func(s *Service) {
		s.velocityThreshold = velocityThreshold
		s.refractoryPeriod = refractoryPeriod
	}
}

// WithCombinationWindow overrides the combination clustering window in
// seconds.
func WithCombinationWindow(seconds float64) Option {
	return func(s *Service) {
		s.combinationWindow = seconds
	}
}

// WithCounterWindow overrides the initiation look-back window in seconds.
func WithCounterWindow(seconds float64) Option {
	return func(s *Service) {
		s.counterWindow = seconds
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
