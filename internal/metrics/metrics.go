package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Stats
	statsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_stats_generated_total",
			Help: "Number of stats payloads built, by period.",
		},
		[]string{"period", "view"}, // view: payload|charts
	)
	statsTimeseriesPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "admin_stats_timeseries_points",
			Help:    "Number of days in generated timeseries.",
			Buckets: []float64{1, 3, 7, 14, 30, 60, 90},
		},
	)

	// Messages
	messageListRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_message_list_requests_total",
			Help: "Message log page requests, by source and whether a next page exists.",
		},
		[]string{"source", "has_next"},
	)
	messageListMatched = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "admin_message_list_matched",
			Help:    "Number of records matching the filters (total before pagination).",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
		},
	)
	messageDetailsLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_message_details_lookups_total",
			Help: "Message details lookups, by result.",
		},
		[]string{"source", "result"}, // found|not_found|error
	)
	messagePoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "admin_message_pool_size",
			Help: "Number of records in the in-memory message pool.",
		},
	)

	// Service latency (включая искусственную задержку мока)
	serviceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_service_call_duration_seconds",
			Help:    "Service call duration in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.15, 0.2, 0.3, 0.5, 1, 2},
		},
		[]string{"operation"},
	)

	// DB
	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "PostgreSQL query duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
	dbErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total number of PostgreSQL errors.",
		},
		[]string{"query"},
	)
	messageLogStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "message_log_status_count",
			Help: "Current count of message_log rows by status.",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			statsGenerated,
			statsTimeseriesPoints,

			messageListRequests,
			messageListMatched,
			messageDetailsLookups,
			messagePoolSize,

			serviceDuration,

			dbQueryDuration,
			dbErrors,
			messageLogStatus,
		)
		registerRedisMetrics()
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// --- HTTP ---
func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// --- Stats ---
func IncStatsGenerated(period, view string) { statsGenerated.WithLabelValues(period, view).Inc() }
func ObserveTimeseriesPoints(n int)         { statsTimeseriesPoints.Observe(float64(max0(n))) }

// --- Messages ---
func ObserveMessageList(source string, matched int, hasNext bool) {
	next := "false"
	if hasNext {
		next = "true"
	}
	messageListRequests.WithLabelValues(source, next).Inc()
	messageListMatched.Observe(float64(max0(matched)))
}

func IncMessageDetails(source, result string) {
	messageDetailsLookups.WithLabelValues(source, result).Inc()
}

func SetMessagePoolSize(n int) { messagePoolSize.Set(float64(max0(n))) }

func ObserveServiceCall(operation string, d time.Duration) {
	serviceDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// --- DB ---
func ObserveDBQuery(query string, d time.Duration) {
	dbQueryDuration.WithLabelValues(query).Observe(d.Seconds())
}
func IncDBError(query string) { dbErrors.WithLabelValues(query).Inc() }

func SetMessageLogStatusCount(status string, count int64) {
	if count < 0 {
		count = 0
	}
	messageLogStatus.WithLabelValues(status).Set(float64(count))
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
