package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FallbackReads counts reads served from the local snapshot because the
	// remote store failed.
	FallbackReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "fallback_reads_total",
		Help:      "Reads answered from the local fallback store after a remote failure.",
	}, []string{"entity"})

	RemoteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "remote_errors_total",
		Help:      "Remote store operations that failed.",
	}, []string{"operation"})

	OrdersQueuedLocally = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_queued_locally_total",
		Help:      "Orders written to the local queue instead of the remote store.",
	})

	OrdersFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_flushed_total",
		Help:      "Locally queued orders delivered to the remote store.",
	})

	AssistantRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "assistant_retries_total",
		Help:      "Assistant turns retried on a fresh conversation.",
	})

	AssistantApologies = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "assistant_apologies_total",
		Help:      "Assistant turns that ended with the apology message.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Middleware records request counts and latency per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
