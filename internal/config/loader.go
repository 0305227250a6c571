package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FIGHTSIGHT_CONFIG is set
//  3. env (prefix FIGHTSIGHT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FIGHTSIGHT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: FIGHTSIGHT_ADDR, FIGHTSIGHT_QUEUE_SIZE, ...
	// Map env keys like FIGHTSIGHT_QUEUE_SIZE -> queue_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FIGHTSIGHT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fightsight_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.ClaimSize <= 0:
		return fmt.Errorf("%w: claim_size must be positive", ErrInvalidConfig)
	case c.ClassifyConcurrency <= 0:
		return fmt.Errorf("%w: classify_concurrency must be positive", ErrInvalidConfig)
	case c.ClassifyMaxAttempts <= 0:
		return fmt.Errorf("%w: classify_max_attempts must be positive", ErrInvalidConfig)
	case c.ClassifyRateLimit < 0:
		return fmt.Errorf("%w: classify_rate_limit must not be negative", ErrInvalidConfig)
	case c.SessionBudgetSeconds <= 0:
		return fmt.Errorf("%w: session_budget_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
