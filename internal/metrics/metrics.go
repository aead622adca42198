// Package metrics exposes Prometheus instrumentation for the estimator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CalculationsTotal counts estimate calculations by outcome.
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estimator_calculations_total",
		Help: "Number of estimate calculations, labeled by outcome.",
	}, []string{"outcome"})

	// CalculationDuration tracks how long one engine invocation takes.
	CalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "estimator_calculation_duration_seconds",
		Help:    "Duration of estimate engine invocations.",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequestsTotal counts HTTP requests by method, path pattern, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estimator_http_requests_total",
		Help: "Number of HTTP requests handled.",
	}, []string{"method", "path", "status"})
)

// ObserveCalculation records one engine invocation.
func ObserveCalculation(start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CalculationsTotal.WithLabelValues(outcome).Inc()
	CalculationDuration.Observe(time.Since(start).Seconds())
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
