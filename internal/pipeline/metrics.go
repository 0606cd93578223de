package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// routedVariant - метка для событий, у которых вариант не выбран.
const routedVariant = "none"

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifier_events_total",
		Help: "Processed order change events by variant and outcome (sent, noop, error).",
	}, []string{"variant", "outcome"})

	notificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifier_notifications_total",
		Help: "Individual notification sends by variant and result.",
	}, []string{"variant", "result"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifier_failures_total",
		Help: "Pipeline failures by variant and error kind.",
	}, []string{"variant", "kind"})

	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_notifier_pipeline_duration_seconds",
		Help:    "End-to-end processing time of one event.",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})
)
