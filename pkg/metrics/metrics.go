// Package metrics defines and registers the custom Prometheus metrics of the
// terminal. It is the single source of truth for metric names, labels and
// help strings. Metrics register with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "terminal"

// ── Reader metrics ────────────────────────────────────────────────────────────

// ScansTotal counts chip identifiers handed to consumers.
// Label:
//   - reader: "serial", "keyboard" or "browser"
var ScansTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Total number of chip scans emitted by the reader.",
	},
	[]string{"reader"},
)

// ScansSuppressedTotal counts repeated identifiers swallowed by the debouncer.
var ScansSuppressedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_suppressed_total",
		Help:      "Total number of duplicate scans suppressed by debounce.",
	},
	[]string{"reader"},
)

// ScansDiscardedTotal counts scans nobody picked up in time.
// Label:
//   - reason: "overflow" (queue full) or "stale" (older than the max scan age)
var ScansDiscardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_discarded_total",
		Help:      "Total number of scans discarded before being consumed.",
	},
	[]string{"reason"},
)

// FramesDroppedTotal counts frames the decoder rejected.
// Label:
//   - reason: "short", "checksum", "layout", "oversize", "empty"
var FramesDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_dropped_total",
		Help:      "Total number of malformed reader frames dropped.",
	},
	[]string{"reason"},
)

// ReaderUp is 1 while the reader loop is running.
var ReaderUp = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reader_up",
		Help:      "Whether the reader read loop is running (1) or stopped (0).",
	},
	[]string{"reader"},
)

// ── HR platform metrics ───────────────────────────────────────────────────────

// TokenRenewalsTotal counts authentication exchanges with the HR platform.
// Label:
//   - result: "ok" or "error"
var TokenRenewalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_renewals_total",
		Help:      "Total number of HR platform authentication calls.",
	},
	[]string{"result"},
)

// BookingsTotal counts booking attempts by action and outcome.
var BookingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_total",
		Help:      "Total number of booking attempts, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// BookingDuration measures the remote booking call.
var BookingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "booking_duration_seconds",
		Help:      "Duration of the HR platform booking call.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"action"},
)

// ChipLookupsTotal counts chip resolutions.
// Labels:
//   - source: "local", "remote" or "cache"
//   - result: "found", "not_found", "inactive", "error"
var ChipLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chip_lookups_total",
		Help:      "Total number of chip identifier lookups.",
	},
	[]string{"source", "result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth is the number of log entries waiting per worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of booking log entries pending per audit worker.",
	},
	[]string{"worker_id"},
)

// AuditWritesTotal counts booking log persistence results.
var AuditWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_writes_total",
		Help:      "Total number of booking log writes, by result.",
	},
	[]string{"result"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts API requests by route template and status code.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests served by the terminal API.",
	},
	[]string{"method", "route", "code"},
)

// HTTPRequestDuration measures API latency. The scan long-poll dominates the
// upper buckets.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the terminal API.",
		Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 15, 30, 60},
	},
	[]string{"method", "route"},
)
