package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func family(reg *prometheus.Registry, name string) *dto.MetricFamily {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			m := NewManager()

			Convey("Then it owns a fresh registry", func() {
				So(m, ShouldNotBeNil)
				So(m.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When creating two managers", func() {
			a := NewManager()
			b := NewManager()

			Convey("Then their registries do not collide", func() {
				So(a.Registry(), ShouldNotEqual, b.Registry())
			})
		})

		Convey("When creating with custom options", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithRegistry(reg),
			)
			m.AddTracksFetched(3)

			Convey("Then metric names use the namespace and subsystem", func() {
				So(m.Registry(), ShouldEqual, reg)
				f := family(reg, "test_unit_tracks_fetched_total")
				So(f, ShouldNotBeNil)
				So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 3)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		m := NewManager()

		Convey("When a stage fails", func() {
			m.ObserveStage(StageTrain, time.Now(), errors.New("boom"))
			m.ObserveStage(StageTrain, time.Now(), nil)

			Convey("Then duration and error are both recorded", func() {
				d := family(m.Registry(), "mec_pipeline_stage_duration_seconds")
				So(d, ShouldNotBeNil)
				So(d.GetMetric()[0].GetHistogram().GetSampleCount(), ShouldEqual, 2)
				e := family(m.Registry(), "mec_pipeline_stage_errors_total")
				So(e.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
			})
		})

		Convey("When a training run completes", func() {
			m.RecordTraining(0.42, 0.9)

			Convey("Then the gauges hold the latest values", func() {
				So(family(m.Registry(), "mec_pipeline_model_loss").GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 0.42)
				So(family(m.Registry(), "mec_pipeline_model_validation_accuracy").GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 0.9)
			})
		})

		Convey("When predictions are recorded", func() {
			m.RecordPrediction("Happy")
			m.RecordPrediction("Happy")
			m.RecordPrediction("Sad")

			Convey("Then they are counted per mood", func() {
				So(len(family(m.Registry(), "mec_pipeline_predictions_total").GetMetric()), ShouldEqual, 2)
			})
		})

		Convey("When the handler is scraped", func() {
			m.AddRecommendations(10)
			m.RecordHTTPRequest("/api/moods", http.MethodGet, http.StatusOK, time.Millisecond)
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then it exposes the recorded series", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := rec.Body.String()
				So(strings.Contains(body, "mec_pipeline_recommendations_total 10"), ShouldBeTrue)
				So(strings.Contains(body, `mec_http_requests_total{code="200",method="GET",route="/api/moods"} 1`), ShouldBeTrue)
			})
		})
	})
}

func TestNilManager(t *testing.T) {
	Convey("Given a nil manager", t, func() {
		var m *Manager

		Convey("Recording should not panic", func() {
			So(func() {
				m.ObserveStage(StageFetch, time.Now(), nil)
				m.AddTracksFetched(1)
				m.AddVideos(1, 1)
				m.RecordTraining(1, 1)
				m.RecordPrediction("Calm")
				m.AddRecommendations(1)
				m.RecordHTTPRequest("/", http.MethodGet, 200, 0)
			}, ShouldNotPanic)
		})
	})
}
