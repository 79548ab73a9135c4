package gateway

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "portal_gateway_request_duration_seconds",
	Help:    "Latency of calls to the ScholarHub API by operation and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"op", "status"})

func observe(op string, status int, d time.Duration) {
	requestDuration.WithLabelValues(op, statusLabel(status)).Observe(d.Seconds())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
