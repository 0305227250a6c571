package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/fightsight/engine/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "fightsight.db")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.ClassifyRateLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FIGHTSIGHT_ADDR", ":9090")
			_ = os.Setenv("FIGHTSIGHT_DB_PATH", "/var/lib/fightsight/engine.db")
			_ = os.Setenv("FIGHTSIGHT_QUEUE_SIZE", "256")
			_ = os.Setenv("FIGHTSIGHT_WORKER_COUNT", "6")
			_ = os.Setenv("FIGHTSIGHT_CLASSIFY_RATE_LIMIT", "5.5")
			_ = os.Setenv("FIGHTSIGHT_PROVIDER_API_KEY", "secret")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/fightsight/engine.db")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 6)
				convey.So(cfg.ClassifyRateLimit, convey.ShouldEqual, 5.5)
				convey.So(cfg.ProviderAPIKey, convey.ShouldEqual, "secret")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":7070"
db_path: "sessions.db"
queue_size: 128
worker_count: 3
classify_concurrency: 4
classify_max_attempts: 5
session_budget_seconds: 120
velocity_threshold: 1.8
combination_window: 1.5
classifier_url: "https://vision.example.com"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FIGHTSIGHT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DBPath, convey.ShouldEqual, "sessions.db")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.ClassifyConcurrency, convey.ShouldEqual, 4)
				convey.So(cfg.ClassifyMaxAttempts, convey.ShouldEqual, 5)
				convey.So(cfg.SessionBudgetSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.VelocityThreshold, convey.ShouldEqual, 1.8)
				convey.So(cfg.CombinationWindow, convey.ShouldEqual, 1.5)
				convey.So(cfg.ClassifierURL, convey.ShouldEqual, "https://vision.example.com")
			})

			convey.Convey("Then missing fields keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ClaimSize, convey.ShouldEqual, 4096)
				convey.So(cfg.ClassifyRateLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":7070"
queue_size: 128
worker_count: 3
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FIGHTSIGHT_CONFIG", tmpFile)
			_ = os.Setenv("FIGHTSIGHT_ADDR", ":9090")
			_ = os.Setenv("FIGHTSIGHT_WORKER_COUNT", "12")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 12)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FIGHTSIGHT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("FIGHTSIGHT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty addr", func() {
			_ = os.Setenv("FIGHTSIGHT_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive worker count", func() {
			_ = os.Setenv("FIGHTSIGHT_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative rate limit", func() {
			_ = os.Setenv("FIGHTSIGHT_CLASSIFY_RATE_LIMIT", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a zero rate limit", func() {
			_ = os.Setenv("FIGHTSIGHT_CLASSIFY_RATE_LIMIT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the limiter is disabled rather than rejected", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.ClassifyRateLimit, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FIGHTSIGHT_QUEUE_SIZE", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FIGHTSIGHT_CONFIG",
		"FIGHTSIGHT_ADDR",
		"FIGHTSIGHT_DB_PATH",
		"FIGHTSIGHT_QUEUE_SIZE",
		"FIGHTSIGHT_WORKER_COUNT",
		"FIGHTSIGHT_CLAIM_SIZE",
		"FIGHTSIGHT_CLASSIFY_CONCURRENCY",
		"FIGHTSIGHT_CLASSIFY_MAX_ATTEMPTS",
		"FIGHTSIGHT_CLASSIFY_RATE_LIMIT",
		"FIGHTSIGHT_SESSION_BUDGET_SECONDS",
		"FIGHTSIGHT_PROVIDER_API_KEY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fightsight-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
