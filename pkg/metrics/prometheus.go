package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal     *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	stageLatency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalquest_signals_generated_total",
				Help: "Total number of trading signals generated",
			},
			[]string{"symbol", "type"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalquest_model_cache_lookups_total",
				Help: "Model cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalquest_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		trainingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalquest_model_training_duration_seconds",
				Help:    "Duration of model training runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalquest_pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordSignal records a generated signal by symbol and type.
func (r *Recorder) RecordSignal(symbol, signalType string) {
	r.signalsTotal.WithLabelValues(symbol, signalType).Inc()
}

// RecordCacheLookup records a model cache lookup outcome.
func (r *Recorder) RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheLookups.WithLabelValues(outcome).Inc()
}

// RecordTrainingDuration records one training run's duration in seconds.
func (r *Recorder) RecordTrainingDuration(seconds float64) {
	r.trainingDuration.Observe(seconds)
}

// RecordStageLatency records a pipeline stage duration in seconds.
func (r *Recorder) RecordStageLatency(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
