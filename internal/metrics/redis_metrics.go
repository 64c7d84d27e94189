package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	redisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_requests_total",
			Help: "Total number of Redis requests.",
		},
		[]string{"operation"}, // get, set, delete
	)
	redisErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of Redis errors.",
		},
		[]string{"operation"},
	)
	redisRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_request_duration_seconds",
			Help:    "Redis request duration in seconds.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"operation"},
	)

	// попадания по типу ответа: messages_page, message_details
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_lookups_total",
			Help: "Response cache lookups by kind and result (hit|miss).",
		},
		[]string{"kind", "result"},
	)
	cacheInvalidated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_invalidated_keys_total",
			Help: "Keys dropped when the message pool generation changed.",
		},
	)
	redisCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "redis_cache_size_bytes",
			Help: "Redis used_memory as reported by INFO memory.",
		},
	)
)

var redisRegisterOnce sync.Once

func registerRedisMetrics() {
	redisRegisterOnce.Do(func() {
		prometheus.MustRegister(
			redisRequestsTotal,
			redisErrorsTotal,
			redisRequestDuration,
			cacheLookups,
			cacheInvalidated,
			redisCacheSize,
		)
	})
}

func IncRedisRequest(op string) { redisRequestsTotal.WithLabelValues(op).Inc() }
func IncRedisError(op string)   { redisErrorsTotal.WithLabelValues(op).Inc() }

func ObserveRedisDuration(op string, d time.Duration) {
	redisRequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

func IncCacheHit(kind string)  { cacheLookups.WithLabelValues(kind, "hit").Inc() }
func IncCacheMiss(kind string) { cacheLookups.WithLabelValues(kind, "miss").Inc() }

func AddCacheInvalidated(n int) { cacheInvalidated.Add(float64(max0(n))) }

func SetRedisCacheSizeBytes(n int64) {
	if n < 0 {
		n = 0
	}
	redisCacheSize.Set(float64(n))
}
