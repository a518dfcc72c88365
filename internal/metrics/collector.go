// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器.
// 实现 dispatch.Recorder 与 image.Observer.
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRequestSize     *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Agent 调用指标
	agentCallsTotal   *prometheus.CounterVec
	agentCallDuration *prometheus.HistogramVec

	// 批次指标
	batchesTotal     prometheus.Counter
	batchAgents      prometheus.Histogram
	batchFailures    prometheus.Counter
	batchDuration    prometheus.Histogram
	rateLimitedTotal prometheus.Counter

	// 图像归一化指标
	normalizeTotal    *prometheus.CounterVec
	normalizeDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 180},
		},
		[]string{"method", "path"},
	)

	c.httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// Agent 调用指标
	c.agentCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_calls_total",
			Help:      "Total number of provider calls made on behalf of an agent",
		},
		[]string{"model", "status"}, // status: success, error, timeout, panic
	)

	c.agentCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_call_duration_seconds",
			Help:      "Provider call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)

	// 批次指标
	c.batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Total number of fan-out batches dispatched",
	})

	c.batchAgents = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_agents",
		Help:      "Number of agents per batch",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
	})

	c.batchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_agent_failures_total",
		Help:      "Total number of failed agent outcomes inside batches",
	})

	c.batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Batch wall time in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	c.rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter",
	})

	// 图像归一化指标
	c.normalizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_normalize_total",
			Help:      "Total number of image transcodes",
		},
		[]string{"mode", "status"},
	)

	c.normalizeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_normalize_duration_seconds",
			Help:      "Image transcode duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"mode"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordRateLimited 记录一次限流拒绝
func (c *Collector) RecordRateLimited() {
	c.rateLimitedTotal.Inc()
}

// =============================================================================
// 🎭 分发指标记录
// =============================================================================

// RecordAgentCall 记录一次 Agent 调用
func (c *Collector) RecordAgentCall(model, status string, duration time.Duration) {
	c.agentCallsTotal.WithLabelValues(model, status).Inc()
	c.agentCallDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordBatch 记录一个批次
func (c *Collector) RecordBatch(agents, failures int, duration time.Duration) {
	c.batchesTotal.Inc()
	c.batchAgents.Observe(float64(agents))
	c.batchFailures.Add(float64(failures))
	c.batchDuration.Observe(duration.Seconds())
}

// =============================================================================
// 🖼️ 图像指标记录
// =============================================================================

// ObserveNormalize 记录一次转码
func (c *Collector) ObserveNormalize(mode string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.normalizeTotal.WithLabelValues(mode, status).Inc()
	c.normalizeDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
