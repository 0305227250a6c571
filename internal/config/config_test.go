package config_test

import (
	"runtime"
	"testing"

	"github.com/fightsight/engine/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "fightsight.db")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ClaimSize, convey.ShouldEqual, 4096)
			convey.So(cfg.ClassifyConcurrency, convey.ShouldEqual, 10)
			convey.So(cfg.ClassifyMaxAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.ClassifyRateLimit, convey.ShouldEqual, 20)
			convey.So(cfg.SessionBudgetSeconds, convey.ShouldEqual, 600)
		})

		convey.Convey("Then tuning overrides default to component values", func() {
			convey.So(cfg.VelocityThreshold, convey.ShouldEqual, 0)
			convey.So(cfg.RefractoryPeriod, convey.ShouldEqual, 0)
			convey.So(cfg.CombinationWindow, convey.ShouldEqual, 0)
			convey.So(cfg.CounterWindow, convey.ShouldEqual, 0)
		})
	})
}
