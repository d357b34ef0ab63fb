package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycleDuration prometheus.Histogram
	observations  *prometheus.CounterVec
	noData        *prometheus.CounterVec
	stressScore   *prometheus.GaugeVec
	alertsTotal   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stresswatch_cycle_duration_seconds",
				Help:    "Duration of full evaluation cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		observations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresswatch_observations_total",
				Help: "Total number of normalized observations produced",
			},
			[]string{"indicator"},
		),
		noData: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresswatch_no_data_cycles_total",
				Help: "Cycles an indicator resolved without data",
			},
			[]string{"indicator"},
		),
		stressScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stresswatch_stress_score",
				Help: "Last stress score per indicator (0 calm, 100 stressed)",
			},
			[]string{"indicator"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresswatch_alerts_total",
				Help: "Alert evaluations that met the stress threshold",
			},
			[]string{"outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stresswatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stresswatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records a completed evaluation cycle.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cycleDuration.Observe(seconds)
}

// RecordObservation counts one normalized observation for an indicator.
func (r *Recorder) RecordObservation(indicator string) {
	r.observations.WithLabelValues(indicator).Inc()
}

// RecordNoData counts a cycle where an indicator had nothing to report.
func (r *Recorder) RecordNoData(indicator string) {
	r.noData.WithLabelValues(indicator).Inc()
}

// RecordScore publishes the latest stress score for an indicator.
func (r *Recorder) RecordScore(indicator string, score float64) {
	r.stressScore.WithLabelValues(indicator).Set(score)
}

// RecordAlert counts an alert evaluation past the threshold; emitted
// distinguishes fresh alerts from deduplicated ones.
func (r *Recorder) RecordAlert(emitted bool) {
	outcome := "suppressed"
	if emitted {
		outcome = "emitted"
	}
	r.alertsTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
