package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func gatherNames(reg *prometheus.Registry) map[string]bool {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	return names
}

func TestManagerRegistration(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(reg))

		Convey("When the registry is gathered", func() {
			m.sessionsSubmitted.Inc()
			m.stageDuration.WithLabelValues("detect").Observe(0.5)
			names := gatherNames(reg)

			Convey("Then the engine metric families are registered", func() {
				So(names["fightsight_engine_sessions_submitted_total"], ShouldBeTrue)
				So(names["fightsight_engine_stage_duration_seconds"], ShouldBeTrue)
			})
		})
	})

	Convey("Given a manager with a custom namespace", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(reg),
			WithNamespace("custom"),
			WithSubsystem("pipeline"),
		)

		Convey("When a counter is incremented and gathered", func() {
			m.sessionsCompleted.Inc()
			names := gatherNames(reg)

			Convey("Then metric names carry the configured prefix", func() {
				So(names["custom_pipeline_sessions_completed_total"], ShouldBeTrue)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the package-level helpers", t, func() {
		Convey("When the full helper surface is exercised", func() {
			RecordSessionSubmitted()
			RecordSessionStarted()
			RecordSessionCompleted()
			RecordSessionFailed()
			RecordSessionProcessed()
			RecordSessionDuration(12.5)
			UpdateTotalSessions(3)

			RecordStageDuration("detect", 0.2)
			RecordStageDuration("enrich", 0.1)
			RecordCandidatesDetected(8)
			RecordCombinationsDetected(2)

			RecordClassificationCall()
			RecordClassificationRetry()
			RecordClassificationError()
			UpdateClassificationInFlight(1)
			UpdateClassificationInFlight(-1)
			RecordClassificationLatency(1.3)
			RecordProviderCost(0.004)
			RecordProviderCost(0)

			UpdateQueueCapacity(1024)
			UpdateQueueSize(7)
			UpdateQueueUtilization(7.0 / 1024.0)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			RecordQueueEnqueueError()
			RecordQueueEnqueueLatency(0.001)

			UpdateWorkerActiveCount(4)
			RecordWorkerError()
			RecordWorkerProcessingLatency(42)

			RecordHTTPRequest("/sessions", "POST", "202")
			RecordHTTPRequestDuration("/sessions", "POST", "202", 18)
			RecordErrorByComponent("queue", "enqueue_error")
			RecordErrorByEndpoint("/sessions", "POST", "rate_limit")
			RecordErrorByType("rate_limit", "medium")
			RecordErrorLatency("http", "rate_limit", 3)

			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.0003)

			Convey("Then the shared registry serves them all", func() {
				names := gatherNames(GetRegistry())
				So(names["fightsight_engine_sessions_submitted_total"], ShouldBeTrue)
				So(names["fightsight_engine_classification_calls_total"], ShouldBeTrue)
				So(names["fightsight_engine_provider_cost_dollars_total"], ShouldBeTrue)
				So(names["fightsight_engine_queue_size"], ShouldBeTrue)
				So(names["fightsight_engine_worker_active_count"], ShouldBeTrue)
				So(names["fightsight_engine_http_requests_total"], ShouldBeTrue)
				So(names["fightsight_engine_errors_by_component_total"], ShouldBeTrue)
				So(names["fightsight_engine_system_goroutines"], ShouldBeTrue)
			})
		})
	})
}
