package client

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apijr_client",
			Name:      "requests_total",
			Help:      "Completed request cycles by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apijr_client",
			Name:      "request_duration_seconds",
			Help:      "Wall time of a request cycle from build to classification.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// observe records one finished cycle. outcome is "success" or the failure Kind.
func observe(method Method, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			outcome = e.Kind.String()
		} else {
			outcome = "unknown"
		}
	}
	requestsTotal.WithLabelValues(string(method), outcome).Inc()
	if elapsed > 0 {
		requestDuration.WithLabelValues(string(method)).Observe(elapsed.Seconds())
	}
}
