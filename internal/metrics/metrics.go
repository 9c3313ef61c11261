package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stage names used as label values.
const (
	StageFetch     = "fetch"
	StageAnalyze   = "analyze"
	StageTrain     = "train"
	StageRecommend = "recommend"
)

// Manager owns a registry and every collector registered on it.
// A nil *Manager is valid and records nothing.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec

	tracksFetched  prometheus.Counter
	videosAnalyzed prometheus.Counter
	videoFailures  prometheus.Counter

	trainings          prometheus.Counter
	trainLoss          prometheus.Gauge
	validationAccuracy prometheus.Gauge
	predictions        *prometheus.CounterVec
	recommendations    prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a Manager with its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "mec",
		subsystem: "pipeline",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages",
		Buckets:   m.buckets,
	}, []string{"stage"})

	m.stageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_errors_total",
		Help:      "Pipeline stages that ended in error",
	}, []string{"stage"})

	m.tracksFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracks_fetched_total",
		Help:      "Tracks fetched from the catalogue",
	})

	m.videosAnalyzed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "videos_analyzed_total",
		Help:      "Videos whose annotations were collected",
	})

	m.videoFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "video_failures_total",
		Help:      "Videos whose analysis failed and were skipped",
	})

	m.trainings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_trainings_total",
		Help:      "Completed classifier training runs",
	})

	m.trainLoss = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_loss",
		Help:      "Final training loss of the last run",
	})

	m.validationAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_validation_accuracy",
		Help:      "Validation accuracy of the last run",
	})

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Tracks labelled by the classifier, by mood",
	}, []string{"mood"})

	m.recommendations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_total",
		Help:      "Recommendations emitted",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   m.buckets,
	}, []string{"route", "method"})
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage records a stage duration and, when err is non-nil, an error.
func (m *Manager) ObserveStage(stage string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

// AddTracksFetched counts catalogue tracks.
func (m *Manager) AddTracksFetched(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tracksFetched.Add(float64(n))
}

// AddVideos counts analysed and failed videos.
func (m *Manager) AddVideos(analyzed, failed int) {
	if m == nil {
		return
	}
	if analyzed > 0 {
		m.videosAnalyzed.Add(float64(analyzed))
	}
	if failed > 0 {
		m.videoFailures.Add(float64(failed))
	}
}

// RecordTraining stores the outcome of a training run.
func (m *Manager) RecordTraining(loss, validationAccuracy float64) {
	if m == nil {
		return
	}
	m.trainings.Inc()
	m.trainLoss.Set(loss)
	m.validationAccuracy.Set(validationAccuracy)
}

// RecordPrediction counts one predicted mood.
func (m *Manager) RecordPrediction(mood string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(mood).Inc()
}

// AddRecommendations counts emitted recommendations.
func (m *Manager) AddRecommendations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recommendations.Add(float64(n))
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
