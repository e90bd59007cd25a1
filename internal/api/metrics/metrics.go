// Package metrics defines and registers all custom Prometheus metrics of the
// tracking service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are created with promauto and registered with the default
// Prometheus registry at package initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// ── Lookup metrics ────────────────────────────────────────────────────────────

// LookupsTotal counts tracking lookups.
// Labels:
//   - carrier: resolved carrier code (e.g. "ppl", "auto")
//   - outcome: "created", "updated" or "error"
var LookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookups_total",
		Help:      "Total number of tracking lookups, by carrier and outcome.",
	},
	[]string{"carrier", "outcome"},
)

// CarrierDetectionsTotal counts detector results.
// Label:
//   - carrier: detected carrier code, or "none"
var CarrierDetectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "carrier_detections_total",
		Help:      "Total number of carrier detections, by detected carrier.",
	},
	[]string{"carrier"},
)

// ── Provider metrics ──────────────────────────────────────────────────────────

// ProviderRequestDuration measures calls to the external tracking provider.
// Labels:
//   - provider: provider name (e.g. "trackingmore")
//   - operation: "create" or "get"
//   - code: HTTP status code, or "error" for transport failures
var ProviderRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of tracking provider HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider", "operation", "code"},
)

// ProviderConflictsTotal counts "already tracked" responses that triggered
// the fetch-existing fallback.
var ProviderConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_conflicts_total",
		Help:      "Total number of provider conflict responses resolved by a follow-up fetch.",
	},
	[]string{"provider"},
)

// ── Enrichment metrics ────────────────────────────────────────────────────────

// SummariesTotal counts AI summary attempts.
// Label:
//   - result: "ok", "unparsed" or "error"
var SummariesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summaries_total",
		Help:      "Total number of AI summary attempts, by result.",
	},
	[]string{"result"},
)

// ── Refresh worker metrics ────────────────────────────────────────────────────

// RefreshQueueDepth tracks the current number of refresh requests waiting in
// each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RefreshQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "refresh_queue_depth",
		Help:      "Current number of refresh requests pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// RefreshesTotal counts background refreshes.
// Label:
//   - result: "ok", "error" or "dropped"
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refreshes_total",
		Help:      "Total number of background shipment refreshes, by result.",
	},
	[]string{"result"},
)

// ── Edge metrics ──────────────────────────────────────────────────────────────

// RateLimitedTotal counts requests rejected by the rate limiter.
// Label:
//   - scope: "public" or "api"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"scope"},
)

// StatusChangesPublishedTotal counts status-change messages sent to the broker.
// Label:
//   - result: "ok" or "error"
var StatusChangesPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_changes_published_total",
		Help:      "Total number of shipment status-change messages published.",
	},
	[]string{"result"},
)
