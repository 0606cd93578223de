package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "order_notifier_fcm_send_duration_seconds",
	Help:    "Duration of single FCM sends.",
	Buckets: prometheus.DefBuckets,
}, []string{"sender", "ok"})
