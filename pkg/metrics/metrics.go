// Package metrics exposes the Prometheus collectors shared by the HTTP layer,
// the database logger and the marketplace services.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coursemarket"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	dbQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "db_query_duration_seconds",
		Help:      "Database statement latency by operation and table.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation", "table"})

	enrollments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Successful enrollments, split by whether a discount was applied.",
	}, []string{"discounted"})

	discountRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discount_redemptions_total",
		Help:      "Discount code outcomes at enrollment time.",
	}, []string{"outcome"})

	reviewWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_writes_total",
		Help:      "Review create, update and delete operations.",
	}, []string{"action"})

	lessonCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lesson_completions_total",
		Help:      "Lessons newly marked as completed.",
	})

	dbReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "db_reconnects_total",
		Help:      "Successful database reconnections after connection loss.",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification dispatch results by type.",
	}, []string{"type", "result"})
)

// Middleware records request counts and latencies keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordDBQuery observes a single statement duration.
func RecordDBQuery(operation, table string, elapsed time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}

// RecordDBReconnect counts a recovered database connection.
func RecordDBReconnect() {
	dbReconnects.Inc()
}

// ObserveRealtimeConnections exports the live socket count as a gauge. Call once.
func ObserveRealtimeConnections(count func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Sockets currently attached to the realtime server.",
	}, func() float64 { return float64(count()) })
}

// RecordEnrollment counts a completed enrollment.
func RecordEnrollment(discounted bool) {
	enrollments.WithLabelValues(strconv.FormatBool(discounted)).Inc()
}

// RecordDiscountOutcome counts applied, rejected or exhausted codes.
func RecordDiscountOutcome(outcome string) {
	discountRedemptions.WithLabelValues(outcome).Inc()
}

// RecordReview counts a review write.
func RecordReview(action string) {
	reviewWrites.WithLabelValues(action).Inc()
}

// RecordLessonCompletion counts a first-time lesson completion.
func RecordLessonCompletion() {
	lessonCompletions.Inc()
}

// RecordNotification counts a dispatch attempt; result is "created" or "dropped".
func RecordNotification(notificationType, result string) {
	notifications.WithLabelValues(notificationType, result).Inc()
}
