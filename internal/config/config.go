// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment sources on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file location.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of concurrent session pipelines.
	WorkerCount int `koanf:"worker_count"`

	// ClaimSize bounds how many sessions may be queued or processing at once.
	ClaimSize int `koanf:"claim_size"`

	// ClassifyConcurrency caps in-flight classifier calls per session.
	ClassifyConcurrency int `koanf:"classify_concurrency"`

	// ClassifyMaxAttempts bounds attempts per candidate on transient errors.
	ClassifyMaxAttempts int `koanf:"classify_max_attempts"`

	// ClassifyRateLimit is the shared outbound calls-per-second limit across
	// all sessions. Zero disables the limiter.
	ClassifyRateLimit float64 `koanf:"classify_rate_limit"`

	// SessionBudgetSeconds is the wall-clock limit for one session's run.
	SessionBudgetSeconds int `koanf:"session_budget_seconds"`

	// VelocityThreshold and RefractoryPeriod tune strike detection.
	// Zero keeps the detector defaults.
	VelocityThreshold float64 `koanf:"velocity_threshold"`
	RefractoryPeriod  float64 `koanf:"refractory_period"`

	// CombinationWindow is the clustering window for combinations, in
	// seconds. CounterWindow is the initiation look-back window. Zero keeps
	// the component defaults.
	CombinationWindow float64 `koanf:"combination_window"`
	CounterWindow     float64 `koanf:"counter_window"`

	// ClassifierURL and ReporterURL point at the vision provider endpoints.
	ClassifierURL string `koanf:"classifier_url"`
	ReporterURL   string `koanf:"reporter_url"`

	// ProviderAPIKey authenticates provider calls. Usually set via
	// FIGHTSIGHT_PROVIDER_API_KEY rather than a file.
	ProviderAPIKey string `koanf:"provider_api_key"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		DBPath:               "fightsight.db",
		QueueSize:            1024,
		WorkerCount:          runtime.NumCPU(),
		ClaimSize:            4096,
		ClassifyConcurrency:  10,
		ClassifyMaxAttempts:  3,
		ClassifyRateLimit:    20,
		SessionBudgetSeconds: 600,
	}
}
