package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Cache lookups per entity by result (hit/miss/bypass).",
	},
	[]string{"entity", "result"},
)

func init() { register(cacheRequestsTotal) }

func IncCacheRequest(entity, result string) {
	cacheRequestsTotal.WithLabelValues(norm(entity), norm(result)).Inc()
}
