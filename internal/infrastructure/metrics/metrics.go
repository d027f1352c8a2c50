// Package metrics 汇总服务的 prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// 推送结果
const (
	PushDelivered = "delivered"
	PushOffline   = "offline"
	PushFailed    = "failed"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests processed by the chat server.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_active_connections",
			Help: "Number of registered websocket connections on this instance.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	pushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_push_total",
			Help: "Realtime push attempts by event type and result.",
		},
		[]string{"event", "result"},
	)
	friendshipIntegrityErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_friendship_integrity_errors_total",
			Help: "Friend acceptances that left a partially written friendship.",
		},
		[]string{"stage"},
	)
	friendshipRepairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_friendship_repairs_total",
			Help: "Rows repaired by the friendship reconciler.",
		},
		[]string{"kind"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		pushTotal,
		friendshipIntegrityErrors,
		friendshipRepairsTotal,
		amqpPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware 记录请求数与耗时，按路由模板聚合
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncPush(event, result string) {
	pushTotal.WithLabelValues(event, result).Inc()
}

func IncFriendshipIntegrityError(stage string) {
	friendshipIntegrityErrors.WithLabelValues(stage).Inc()
}

func AddFriendshipRepairs(kind string, n int) {
	friendshipRepairsTotal.WithLabelValues(kind).Add(float64(n))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
