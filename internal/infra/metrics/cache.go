package metrics

import "github.com/prometheus/client_golang/prometheus"

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "billing_cache_requests_total",
		Help: "Cache lookups partitioned by entity and result (hit/miss).",
	},
	[]string{"entity", "result"},
)

func init() {
	register(cacheRequestsTotal)
}

// IncCacheRequest records a cache lookup outcome for an entity type.
func IncCacheRequest(entity, result string) {
	cacheRequestsTotal.WithLabelValues(norm(entity), norm(result)).Inc()
}
