package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal     prometheus.Counter
	tokenErrors    *prometheus.CounterVec
	lastConfidence *prometheus.GaugeVec
	decisions      *prometheus.CounterVec
	scanDuration   prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokenpulse_scans_total",
			Help: "Total number of completed batch scans",
		}),
		tokenErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenpulse_token_errors_total",
				Help: "Per-token pipeline failures by kind",
			},
			[]string{"kind"},
		),
		lastConfidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tokenpulse_confidence",
				Help: "Latest confidence score per token",
			},
			[]string{"token"},
		),
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokenpulse_decisions_total",
				Help: "Decisions emitted, by category",
			},
			[]string{"decision"},
		),
		scanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokenpulse_scan_duration_seconds",
			Help:    "Duration of a full batch scan in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordScan records one completed scan and its duration.
func (r *Recorder) RecordScan(seconds float64) {
	r.scansTotal.Inc()
	r.scanDuration.Observe(seconds)
}

// RecordTokenError records a per-token failure by kind.
func (r *Recorder) RecordTokenError(kind string) {
	r.tokenErrors.WithLabelValues(kind).Inc()
}

// RecordConfidence records the latest confidence for a token.
func (r *Recorder) RecordConfidence(token string, confidence float64) {
	r.lastConfidence.WithLabelValues(token).Set(confidence)
}

// RecordDecision counts one emitted decision.
func (r *Recorder) RecordDecision(decision string) {
	r.decisions.WithLabelValues(decision).Inc()
}
