package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecastLatency *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	modelCalls      *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New registers the forecast collectors on reg. Pass prometheus.DefaultRegisterer
// to expose them on /metrics, or a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		forecastLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_forecast_duration_seconds",
				Help:    "End-to-end forecast latency by horizon",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"horizon"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Forecast failures by error kind",
			},
			[]string{"kind"},
		),
		modelCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_model_calls_total",
				Help: "Model inference calls by outcome",
			},
			[]string{"outcome"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_cache_lookups_total",
				Help: "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordForecast records a served forecast.
func (r *Recorder) RecordForecast(horizon string, seconds float64) {
	r.forecastLatency.WithLabelValues(horizon).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordModelCall counts one inference call; outcome is ok, error or breaker_open.
func (r *Recorder) RecordModelCall(outcome string) {
	r.modelCalls.WithLabelValues(outcome).Inc()
}

// RecordCache counts a cache lookup; result is hit, miss or error.
func (r *Recorder) RecordCache(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordForecast(string, float64) {}
func (Noop) RecordError(string)             {}
func (Noop) RecordModelCall(string)         {}
func (Noop) RecordCache(string)             {}
