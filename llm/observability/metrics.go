package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/BaSui01/framelens/llm/dispatch"

// Agent 调用状态
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
	StatusPanic   = "panic"
)

// Metrics 分发可观测性收集器
type Metrics struct {
	tracer trace.Tracer
	meter  metric.Meter
	// 计数
	agentTotal metric.Int64Counter
	errorTotal metric.Int64Counter
	batchTotal metric.Int64Counter
	// 直方图
	agentDuration metric.Float64Histogram
	batchSize     metric.Int64Histogram
	// 活跃调用
	activeAgents metric.Int64UpDownCounter
}

// NewMetrics 使用全局 TracerProvider / MeterProvider 创建收集器
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithProviders(otel.GetTracerProvider(), otel.GetMeterProvider())
}

// NewMetricsWithProviders 使用指定 Provider 创建收集器
func NewMetricsWithProviders(tp trace.TracerProvider, mp metric.MeterProvider) (*Metrics, error) {
	m := &Metrics{
		tracer: tp.Tracer(instrumentationName),
		meter:  mp.Meter(instrumentationName),
	}

	var err error

	m.agentTotal, err = m.meter.Int64Counter("dispatch.agent.total",
		metric.WithDescription("Total number of agent calls"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}

	m.errorTotal, err = m.meter.Int64Counter("dispatch.agent.error.total",
		metric.WithDescription("Total number of failed agent calls"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	m.batchTotal, err = m.meter.Int64Counter("dispatch.batch.total",
		metric.WithDescription("Total number of batch dispatches"),
		metric.WithUnit("{batch}"))
	if err != nil {
		return nil, err
	}

	m.agentDuration, err = m.meter.Float64Histogram("dispatch.agent.duration",
		metric.WithDescription("Agent call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120))
	if err != nil {
		return nil, err
	}

	m.batchSize, err = m.meter.Int64Histogram("dispatch.batch.size",
		metric.WithDescription("Number of agents per batch"),
		metric.WithUnit("{agent}"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 16, 32, 64))
	if err != nil {
		return nil, err
	}

	m.activeAgents, err = m.meter.Int64UpDownCounter("dispatch.agent.active",
		metric.WithDescription("Number of in-flight agent calls"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// StartBatch 开始批量分发追踪
func (m *Metrics) StartBatch(ctx context.Context, batchID string, agents int) (context.Context, trace.Span) {
	ctx, span := m.tracer.Start(ctx, "dispatch.batch",
		trace.WithAttributes(
			attribute.String("dispatch.batch_id", batchID),
			attribute.Int("dispatch.agents", agents),
		))
	m.batchSize.Record(ctx, int64(agents))
	return ctx, span
}

// EndBatch 结束批量分发追踪
func (m *Metrics) EndBatch(ctx context.Context, span trace.Span, failures int, err error) {
	defer span.End()

	status := StatusSuccess
	if err != nil {
		status = StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("dispatch.failures", failures))
	m.batchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// StartAgent 开始单个 Agent 调用追踪
func (m *Metrics) StartAgent(ctx context.Context, agentID, model string) (context.Context, trace.Span) {
	ctx, span := m.tracer.Start(ctx, "dispatch.agent",
		trace.WithAttributes(
			attribute.String("dispatch.agent_id", agentID),
			attribute.String("llm.model", model),
		))
	m.activeAgents.Add(ctx, 1, metric.WithAttributes(attribute.String("model", model)))
	return ctx, span
}

// EndAgent 结束单个 Agent 调用追踪
func (m *Metrics) EndAgent(ctx context.Context, span trace.Span, model, status string, duration time.Duration, errMsg string) {
	defer span.End()

	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("status", status),
	)
	m.activeAgents.Add(ctx, -1, metric.WithAttributes(attribute.String("model", model)))
	m.agentTotal.Add(ctx, 1, attrs)
	m.agentDuration.Record(ctx, duration.Seconds(), attrs)

	if status != StatusSuccess {
		m.errorTotal.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, errMsg)
	}
	span.SetAttributes(attribute.String("dispatch.status", status))
}
