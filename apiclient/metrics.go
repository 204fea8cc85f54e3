package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_console_api_requests_total",
		Help: "Outbound admin API requests by method and outcome",
	}, []string{"method", "outcome"})

	requestDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admin_console_api_request_duration_ms",
		Help:    "Latency of outbound admin API requests in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"method"})
)

func observe(method string, err error, start time.Time) {
	outcome := "ok"
	if reqErr, ok := AsRequestError(err); ok {
		outcome = reqErr.Kind.String()
	} else if err != nil {
		outcome = "canceled"
	}
	requestsTotal.WithLabelValues(method, outcome).Inc()
	requestDurationMs.WithLabelValues(method).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
