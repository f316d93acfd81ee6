package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "linepulse")
				So(manager.subsystem, ShouldEqual, "analytics")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When passing empty option values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "linepulse")
				So(manager.subsystem, ShouldEqual, "analytics")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording cache outcomes", func() {
			before := testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("file"))
			RecordCacheHit("file")
			RecordCacheHit("file")
			RecordCacheMiss("file")

			Convey("Then the labelled counters should move", func() {
				So(testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("file")), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.cacheMisses.WithLabelValues("file")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording ingestion and sync metrics", func() {
			So(func() {
				RecordEventsRead("A", 10)
				RecordEventSkipped("bad_timestamp")
				RecordSessionsReconstructed("A", 4)
				RecordReconstructLatency(1.5)
				RecordCacheWrite("file")
				RecordCacheWriteError("file")
				RecordCacheCorrupt("file")
				UpdateSessionCacheItems(3)
				RecordSyncPass("manual")
				RecordSyncFile("success")
				RecordSyncPassDuration(12, 1_700_000_000)
				UpdateTrackedFiles(7)
				RecordAnalysis("B", 3.2)
				UpdateWorkersScored(5)
				RecordHTTPRequest("analysis", "GET", "200")
				RecordHTTPRequestDuration("analysis", "GET", "200", 1)
				RecordErrorByEndpoint("analysis", "GET", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			Convey("Then gauges should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.trackedFiles), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.syncLastUnix), ShouldEqual, 1_700_000_000)
				So(testutil.ToFloat64(globalManager.workersScored), ShouldEqual, 5)
			})
		})

		Convey("When gathering the custom registry", func() {
			RecordSyncPass("interval")
			families, err := GetRegistry().Gather()

			Convey("Then linepulse metrics should be exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				found := false
				for _, f := range families {
					if f.GetName() == "linepulse_analytics_sync_passes_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.syncFiles.WithLabelValues("failed"))
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordSyncFile("failed")
				}
			}()
		}
		wg.Wait()

		Convey("Then no increments should be lost", func() {
			So(testutil.ToFloat64(globalManager.syncFiles.WithLabelValues("failed")), ShouldEqual, before+1000)
		})
	})
}
