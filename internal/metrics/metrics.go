package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pathfinder"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Chat metrics
var (
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Total number of assistant replies delivered, by source",
		},
		[]string{"source"}, // "live", "cache", "error"
	)

	ChatCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_cache_lookups_total",
			Help:      "Total number of response cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	QuotaBlocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_blocks_total",
			Help:      "Total number of submissions blocked by an exhausted quota",
		},
	)

	PaywallOpensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paywall_opens_total",
			Help:      "Total number of paywall opens, by trigger reason",
		},
		[]string{"reason"},
	)

	PlanRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_refreshes_total",
			Help:      "Total number of subscription snapshot refreshes",
		},
		[]string{"status"}, // "ok", "error"
	)
)

// Billing metrics
var (
	CheckoutSessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_created_total",
			Help:      "Total number of Stripe checkout sessions created",
		},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Total number of Stripe webhook events processed",
		},
		[]string{"type"},
	)
)

// Maintenance metrics
var (
	MaintenanceRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_runs_total",
			Help:      "Total number of maintenance task runs",
		},
		[]string{"task", "status"},
	)

	SessionsCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_cleaned_total",
			Help:      "Total number of expired database sessions removed",
		},
	)

	ChatSessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_sessions_evicted_total",
			Help:      "Total number of idle chat sessions evicted",
		},
	)
)
