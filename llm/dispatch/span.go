package dispatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/BaSui01/framelens/llm/observability"
)

// spanEnder 屏蔽未启用可观测性时的分支.
type spanEnder interface {
	end(ctx context.Context, failures int, err error)
	endAgent(ctx context.Context, model, status string, d time.Duration, errMsg string)
}

type noopSpan struct{}

func (noopSpan) end(context.Context, int, error) {}
func (noopSpan) endAgent(context.Context, string, string, time.Duration, string) {}

type otelSpan struct {
	obs  *observability.Metrics
	span trace.Span
}

func (s otelSpan) end(ctx context.Context, failures int, err error) {
	s.obs.EndBatch(ctx, s.span, failures, err)
}

func (s otelSpan) endAgent(ctx context.Context, model, status string, d time.Duration, errMsg string) {
	s.obs.EndAgent(ctx, s.span, model, status, d, errMsg)
}

func (d *Dispatcher) startBatch(ctx context.Context, batchID string, agents int) (context.Context, spanEnder) {
	ctx, span := d.obs.StartBatch(ctx, batchID, agents)
	return ctx, otelSpan{obs: d.obs, span: span}
}

func (d *Dispatcher) startAgent(ctx context.Context, agentID, model string) (context.Context, spanEnder) {
	ctx, span := d.obs.StartAgent(ctx, agentID, model)
	return ctx, otelSpan{obs: d.obs, span: span}
}
