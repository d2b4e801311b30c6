package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// AIRequests 按功能统计 AI 调用结果：ok / fallback / offline
	AIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Generative AI calls by feature and outcome",
		},
		[]string{"feature", "outcome"},
	)

	AIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Latency of generative AI calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
		[]string{"feature"},
	)

	EvaluationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evaluation_queue_depth",
			Help: "Submissions waiting for background evaluation",
		},
	)

	EvaluationsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_completed_total",
			Help: "Background evaluations by result",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AIRequests)
		prometheus.MustRegister(AIDuration)
		prometheus.MustRegister(EvaluationQueueDepth)
		prometheus.MustRegister(EvaluationsCompleted)
	})
}

// ObserveAI 记录一次 AI 调用
func ObserveAI(feature, outcome string, start time.Time) {
	AIRequests.WithLabelValues(feature, outcome).Inc()
	AIDuration.WithLabelValues(feature).Observe(time.Since(start).Seconds())
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
