package lambert

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the solve outcomes. A nil *Metrics records nothing.
type Metrics struct {
	solves   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lambert_solves_total",
				Help: "Total number of Lambert solves by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lambert_solve_duration_seconds",
				Help:    "Lambert solve duration in seconds.",
				Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
			},
		),
	}
	reg.MustRegister(m.solves, m.duration)
	return m
}

// Observe records the outcome and duration of one solve.
func (m *Metrics) Observe(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(outcome(err)).Inc()
	m.duration.Observe(d.Seconds())
}

// outcome maps a Solve error to its metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoSolution):
		return "no_solution"
	case errors.Is(err, ErrNoMinimumTime):
		return "no_minimum_time"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

// MetricsHandler returns the Prometheus metrics HTTP handler for the given gatherer.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
