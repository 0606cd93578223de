package credential

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenExchangeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_notifier_token_exchange_duration_seconds",
		Help:    "Duration of service credential exchanges, by result.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	tokenCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifier_token_cache_lookups_total",
		Help: "Access token cache lookups, by result (hit, miss, error).",
	}, []string{"result"})
)

func observeTokenExchange(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	tokenExchangeDuration.WithLabelValues(result).Observe(d.Seconds())
}
