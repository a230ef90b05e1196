// Package metrics defines and registers all custom Prometheus metrics for the
// identity and order services. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics route of each service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commerce"

// ── Authentication metrics ───────────────────────────────────────────────────

// AuthVerificationsTotal counts bearer-token checks at the auth middleware.
// Labels:
//   - mode: "local" (identity service) or "remote" (order service)
//   - outcome: "authenticated", "missing_credentials", "unauthenticated",
//     "upstream_unavailable" or "error"
var AuthVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_verifications_total",
		Help:      "Total number of bearer token verifications, by mode and outcome.",
	},
	[]string{"mode", "outcome"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersRegisteredTotal counts created accounts.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)

// PeerVerifyDuration measures the order service's call to the identity service.
// Label:
//   - outcome: "authenticated", "unauthenticated" or "upstream_unavailable"
var PeerVerifyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "peer_verify_duration_seconds",
		Help:      "Duration of identity service token verification calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// IdentityCacheTotal counts identity cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var IdentityCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_cache_total",
		Help:      "Total number of identity cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// ── Order metrics ────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly created orders.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// OrderStatusTransitionsTotal counts applied status changes.
// Labels:
//   - from, to: order statuses
var OrderStatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Total number of order status transitions, by source and target status.",
	},
	[]string{"from", "to"},
)

// OrderEventsQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var OrderEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "order_events_queue_depth",
		Help:      "Current number of order audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// OrderEventsErrorsTotal counts audit events that could not be persisted or queued.
// Label:
//   - reason: "insert_failed" or "dropped"
var OrderEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_events_errors_total",
		Help:      "Total number of order audit events that failed.",
	},
	[]string{"reason"},
)

// ── HTTP metrics ─────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route: matched route pattern (e.g. /orders/:id)
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
