package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vpa_client"

// requestsTotal counts API calls.
// Labels:
//   - method: HTTP method
//   - route: request path with numeric ids collapsed to ":id"
//   - code: HTTP status code, or "error" for transport failures
var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of API requests issued by the client.",
	},
	[]string{"method", "route", "code"},
)

// requestDuration measures round-trip time of API calls that got a response.
var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Round-trip duration of API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
