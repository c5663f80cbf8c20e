// Package metrics provides Prometheus metrics for NetPulse.
// It tracks event ingestion, alert evaluation, notification delivery and
// index sync throughput.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "netpulse"
)

// Event metrics track the ingestion pipeline.
var (
	// EventsReceivedTotal counts events received by the API.
	EventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Total number of events received by the ingest API",
		},
		[]string{"kind"}, // kind: metric, log
	)

	// EventsPublishedTotal counts events successfully published to the queue.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of events published to the message queue",
		},
		[]string{"kind"},
	)

	// EventsProcessedTotal counts events processed by the pipeline.
	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Total number of events processed",
		},
		[]string{"kind", "result"}, // result: ok, malformed, error
	)

	// EventProcessingLatency measures time to process a single event.
	EventProcessingLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_processing_latency_seconds",
			Help:      "Time to process a single event in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Alert metrics track the alert lifecycle.
var (
	// AlertsRaisedTotal counts alerts raised, labeled by severity.
	AlertsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Total number of alerts raised",
		},
		[]string{"severity"},
	)

	// AlertsSuppressedTotal counts trigger matches suppressed before insert.
	AlertsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Total number of alert triggers suppressed",
		},
		[]string{"reason"}, // reason: cooldown, duplicate
	)

	// AlertsResolvedTotal counts alerts resolved, labeled by actor kind.
	AlertsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_resolved_total",
			Help:      "Total number of alerts resolved",
		},
		[]string{"actor"}, // actor: user, system
	)
)

// Notification metrics track the delivery pipeline.
var (
	// NotificationsSentTotal counts delivery attempts per channel type.
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notification deliveries attempted",
		},
		[]string{"channel_type", "status"}, // status: success, failure
	)

	// NotificationLatency measures time from alert raise to delivery.
	NotificationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_latency_seconds",
			Help:      "Time from alert raise to notification delivery in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

// Sync metrics track the index sync daemon.
var (
	// SyncedRecords counts rows successfully written to the search index.
	SyncedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synced_records_total",
			Help:      "Total number of rows synced to the search index",
		},
		[]string{"source"},
	)

	// SyncFailures counts documents rejected by the search index.
	SyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_failures_total",
			Help:      "Total number of documents rejected by the search index",
		},
		[]string{"source"},
	)

	// SyncSweepLatency measures the duration of one sync sweep per source.
	SyncSweepLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_sweep_latency_seconds",
			Help:      "Duration of one sync sweep in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)
)

// Queue metrics track message queue health.
var (
	// QueuePublishLatency measures time to publish a message to the queue.
	QueuePublishLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_publish_latency_seconds",
			Help:      "Time to publish a message to the queue in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)
)
