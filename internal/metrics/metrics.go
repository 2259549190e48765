package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradequest_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradequest_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Settlement Metrics
var (
	TradesSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_trades_settled_total",
			Help: "Trades settled, by position and outcome",
		},
		[]string{"position", "outcome"},
	)

	AchievementsUnlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_achievements_unlocked_total",
			Help: "Achievements unlocked, by achievement id",
		},
		[]string{"achievement"},
	)
)

// Contest Metrics
var (
	ContestsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradequest_contests_created_total",
			Help: "Contests created",
		},
	)

	ContestRoundsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradequest_contest_rounds_resolved_total",
			Help: "Contest rounds resolved",
		},
	)

	CASRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_cas_retries_total",
			Help: "Optimistic commit retries, by operation",
		},
		[]string{"operation"},
	)

	CASConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_cas_conflicts_total",
			Help: "Operations that exhausted their optimistic retry budget",
		},
		[]string{"operation"},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_events_published_total",
			Help: "Events published to the in-process bus",
		},
		[]string{"type"},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_event_handler_errors_total",
			Help: "Event handler failures, by event type",
		},
		[]string{"type"},
	)
)

// Market Data Metrics
var (
	CandleFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradequest_candle_fetches_total",
			Help: "Candle series served, by source",
		},
		[]string{"source"},
	)
)
