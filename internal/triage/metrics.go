package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	TriagesTotal       *prometheus.CounterVec
	TriageDuration     prometheus.Histogram
	QualityTotal       *prometheus.CounterVec
	ValidationFailures prometheus.Counter
	MLLatency          prometheus.Histogram
	MLErrorsTotal      prometheus.Counter
	MLDisagreements    prometheus.Counter
	JustifyDuration    *prometheus.HistogramVec
	FeedbackTotal      *prometheus.CounterVec
	ModelReloadsTotal  *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelle_triages_total",
			Help: "Total triage predictions by final gravity level.",
		}, []string{"gravity"}),
		TriageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinelle_triage_duration_seconds",
			Help:    "End to end duration of triage calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~20s
		}),
		QualityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelle_prediction_quality_total",
			Help: "Total predictions by quality grade.",
		}, []string{"quality"}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinelle_validation_failures_total",
			Help: "Total triage requests rejected for out-of-range vitals.",
		}),
		MLLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinelle_ml_inference_seconds",
			Help:    "Duration of ML inference in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms .. ~0.5s
		}),
		MLErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinelle_ml_errors_total",
			Help: "Total triage calls where the ML path was degraded.",
		}),
		MLDisagreements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sentinelle_ml_disagreements_total",
			Help: "Total predictions where ML and the FRENCH grid diverged.",
		}),
		JustifyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sentinelle_justification_seconds",
			Help:    "Duration of justification generation in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms .. ~16s
		}, []string{"source"}),
		FeedbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelle_feedback_total",
			Help: "Total feedback submissions by kind.",
		}, []string{"kind"}),
		ModelReloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinelle_model_reloads_total",
			Help: "Total model artifact reloads by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.TriagesTotal,
		m.TriageDuration,
		m.QualityTotal,
		m.ValidationFailures,
		m.MLLatency,
		m.MLErrorsTotal,
		m.MLDisagreements,
		m.JustifyDuration,
		m.FeedbackTotal,
		m.ModelReloadsTotal,
	)

	return m
}
