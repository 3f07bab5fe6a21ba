// Package metrics defines the custom Prometheus metrics of the development
// API. It is the single source of truth for metric names, labels and help
// strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vpa_devapi"

// ── Reservation metrics ───────────────────────────────────────────────────────

// ReservationsTotal counts spots reserved.
var ReservationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_total",
		Help:      "Total number of spots reserved.",
	},
)

// ReleasesTotal counts reservations finalized by an administrator.
var ReleasesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "releases_total",
		Help:      "Total number of reservations released.",
	},
)

// ── Export metrics ────────────────────────────────────────────────────────────

// ExportsTotal counts finished CSV exports.
// Label:
//   - result: "ready" or "failed"
var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of CSV exports processed, by result.",
	},
	[]string{"result"},
)

// ExportQueueDepth tracks the jobs waiting in each export worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ExportQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "export_queue_depth",
		Help:      "Current number of export jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ExportDuration measures how long writing one export takes.
var ExportDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of a CSV export from dequeue to file written.",
		Buckets:   prometheus.DefBuckets,
	},
)
