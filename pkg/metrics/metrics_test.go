package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every collector is registered", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "obesiscope")
				So(manager.subsystem, ShouldEqual, "console")
				manager.predictionsSubmitted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("ns"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithMetricsEnabled(false),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "ns")
				So(manager.subsystem, ShouldEqual, "sub")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 3})
				So(manager.enabled, ShouldBeFalse)
			})
		})

		Convey("When empty option values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "obesiscope")
				So(manager.subsystem, ShouldEqual, "console")
				So(manager.histogramBuckets, ShouldResemble, latencyBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When prediction outcomes are recorded", func() {
			before := testutil.ToFloat64(globalManager.predictionsSubmitted)
			RecordPredictionSubmitted()
			RecordPredictionSucceeded("Normal_Weight")
			RecordValidationFailure("age")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.predictionsSubmitted), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.predictionsByLabel.WithLabelValues("Normal_Weight")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.validationFailures.WithLabelValues("age")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When dashboard gauges are updated", func() {
			UpdateChartsLive(4)
			UpdateTotalPredictions(120)
			RecordRefreshCycle("success", 20*time.Millisecond)
			RecordChartRendered("ageChart")

			Convey("Then the gauges reflect the last value", func() {
				So(testutil.ToFloat64(globalManager.chartsLive), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.totalPredictions), ShouldEqual, 120)
				So(testutil.ToFloat64(globalManager.lastRefreshUnix), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(globalManager.chartsRendered.WithLabelValues("ageChart")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When backend and HTTP traffic is recorded", func() {
			So(func() {
				RecordBackendRequest("/predict", "200", 15*time.Millisecond)
				RecordBackendError("/predict", "server")
				RecordHTTPRequest("predict", "POST", "200")
				RecordHTTPRequestDuration("predict", "POST", "200", 3)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
