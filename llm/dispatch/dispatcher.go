package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/framelens/llm"
	"github.com/BaSui01/framelens/llm/conversation"
	"github.com/BaSui01/framelens/llm/image"
	"github.com/BaSui01/framelens/llm/observability"
	"github.com/BaSui01/framelens/types"
)

// internalErrorMessage 是错误没有可展示消息时的兜底文案.
const internalErrorMessage = "Internal server error"

// Recorder 接收分发结果，可为 nil.
type Recorder interface {
	RecordAgentCall(model, status string, duration time.Duration)
	RecordBatch(agents, failures int, duration time.Duration)
}

// Reply 是单图分发的结果.
type Reply struct {
	Text  string
	Image *types.ImageAsset
}

// Dispatcher 并发调用 Provider 并汇总结果.
// 不保存跨调用状态，可被多个请求并发使用.
type Dispatcher struct {
	provider   llm.Provider
	normalizer *image.Normalizer
	cfg        Config
	recorder   Recorder
	obs        *observability.Metrics
	logger     *zap.Logger
}

// Option 配置 Dispatcher.
type Option func(*Dispatcher)

// WithRecorder 设置结果记录器.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithObservability 设置 OpenTelemetry 收集器，未设置时不创建 span.
func WithObservability(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.obs = m }
}

// New 创建 Dispatcher.
func New(provider llm.Provider, normalizer *image.Normalizer, cfg Config, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = image.NewNormalizer(image.DefaultConfig(), logger)
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = llm.DefaultModel
	}
	if cfg.AgentTimeout < 0 {
		cfg.AgentTimeout = 0
	}
	d := &Dispatcher{
		provider:   provider,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "dispatcher")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// =============================================================================
// 🚀 批量分发
// =============================================================================

// DispatchBatch 将同一帧并发分发给 specs 中的每个 Agent.
// 批次级错误（格式、解码、参数）直接返回；Agent 级错误写入对应结果.
func (d *Dispatcher) DispatchBatch(ctx context.Context, frame []byte, specs []types.AgentSpec) (types.BatchResult, error) {
	if err := validateBatch(frame, specs); err != nil {
		return nil, err
	}

	start := time.Now()
	batchID := uuid.NewString()
	ctx = types.WithBatchID(ctx, batchID)
	logger := d.logger.With(zap.String("batch_id", batchID), zap.Int("agents", len(specs)))
	if reqID, ok := types.RequestID(ctx); ok {
		logger = logger.With(zap.String("request_id", reqID))
	}

	span := spanEnder(noopSpan{})
	if d.obs != nil {
		ctx, span = d.startBatch(ctx, batchID, len(specs))
	}

	asset, err := d.normalizer.Normalize(ctx, frame, image.Preserve)
	if err != nil {
		span.end(ctx, 0, err)
		logger.Warn("frame normalization failed", zap.Error(err))
		return nil, err
	}

	results := make(types.BatchResult, len(specs))
	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			results[i] = d.runAgent(ctx, asset, spec)
			return nil
		})
	}
	_ = g.Wait()

	failures := results.Failures()
	span.end(ctx, failures, nil)
	if d.recorder != nil {
		d.recorder.RecordBatch(len(specs), failures, time.Since(start))
	}
	logger.Info("batch dispatched",
		zap.Int("failures", failures),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// validateBatch 在任何 Provider 调用之前完成批次级校验.
func validateBatch(frame []byte, specs []types.AgentSpec) error {
	info, err := image.Sniff(frame)
	if err != nil {
		return err
	}
	if !image.IsFrameFormat(info.Format) {
		return types.NewValidationError(image.InvalidImageFormatMessage)
	}
	if len(specs) == 0 {
		return types.NewValidationError("agentPrompts must be a non-empty array")
	}

	seen := make(map[string]int, len(specs))
	for i, spec := range specs {
		if spec.AgentID == "" {
			return types.NewValidationError(fmt.Sprintf("agentPrompts[%d].agentId is required", i))
		}
		if j, dup := seen[spec.AgentID]; dup {
			return types.NewValidationError(fmt.Sprintf("agentPrompts[%d].agentId %q duplicates agentPrompts[%d]", i, spec.AgentID, j))
		}
		seen[spec.AgentID] = i
		if err := conversation.ValidateHistory(spec.MessageHistory); err != nil {
			return types.NewValidationError(fmt.Sprintf("agentPrompts[%d].%s", i, types.ErrorMessage(err)))
		}
	}
	return nil
}

// runAgent 执行单个 Agent，任何错误或 panic 都转换为该 Agent 的失败结果.
func (d *Dispatcher) runAgent(ctx context.Context, frame *types.ImageAsset, spec types.AgentSpec) (outcome types.AgentOutcome) {
	model := d.model(spec.Model)
	start := time.Now()
	status := observability.StatusSuccess
	ctx = types.WithModel(types.WithAgentID(ctx, spec.AgentID), model)

	agentSpan := spanEnder(noopSpan{})
	if d.obs != nil {
		ctx, agentSpan = d.startAgent(ctx, spec.AgentID, model)
	}

	defer func() {
		if r := recover(); r != nil {
			status = observability.StatusPanic
			d.logger.Error("agent panicked",
				zap.String("agent_id", spec.AgentID),
				zap.Any("panic", r),
			)
			outcome = types.AgentOutcome{
				AgentID:  spec.AgentID,
				Response: types.Failed(fmt.Sprintf("agent panicked: %v", r)),
			}
		}
		elapsed := time.Since(start)
		agentSpan.endAgent(ctx, model, status, elapsed, outcome.Response.Error)
		if d.recorder != nil {
			d.recorder.RecordAgentCall(model, status, elapsed)
		}
	}()

	req := &llm.Request{
		SystemPrompt: spec.SystemPrompt,
		Conversation: conversation.Build(spec.MessageHistory, frame),
		Model:        model,
	}
	reply, err := d.invoke(ctx, req)
	if err != nil {
		status = statusOf(err)
		d.logger.Warn("agent failed",
			zap.String("agent_id", spec.AgentID),
			zap.String("model", model),
			zap.String("status", status),
			zap.Error(err),
		)
		return types.AgentOutcome{AgentID: spec.AgentID, Response: types.Failed(failureMessage(err))}
	}
	return types.AgentOutcome{AgentID: spec.AgentID, Response: types.Succeeded(reply.Text, reply.Image)}
}

// =============================================================================
// 🖼️ 单图与文本分发
// =============================================================================

// DispatchImage 以 prompt 同时作为系统提示词和唯一用户轮次分析一帧.
func (d *Dispatcher) DispatchImage(ctx context.Context, frame []byte, prompt, model string) (*Reply, error) {
	if prompt == "" || len(frame) == 0 {
		return nil, types.NewValidationError("Both prompt and imageData (base64) are required.")
	}
	info, err := image.Sniff(frame)
	if err != nil {
		return nil, err
	}
	if !image.IsFrameFormat(info.Format) {
		return nil, types.NewValidationError(image.InvalidImageFormatMessage)
	}

	asset, err := d.normalizer.Normalize(ctx, frame, image.Compact)
	if err != nil {
		return nil, err
	}

	req := &llm.Request{
		SystemPrompt: prompt,
		Conversation: conversation.Build([]types.ConversationTurn{types.UserTurn(prompt)}, asset),
		Model:        d.model(model),
	}
	return d.invoke(ctx, req)
}

// DispatchText 发送不含图像的对话并返回文本.
func (d *Dispatcher) DispatchText(ctx context.Context, systemPrompt string, history []types.ConversationTurn, model string) (string, error) {
	if err := conversation.ValidateHistory(history); err != nil {
		return "", err
	}
	req := &llm.Request{
		SystemPrompt: systemPrompt,
		Conversation: conversation.Build(history, nil),
		Model:        d.model(model),
	}
	reply, err := d.invoke(ctx, req)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// DispatchPrompt 归一化 Prompt 后调用 DispatchText.
func (d *Dispatcher) DispatchPrompt(ctx context.Context, p conversation.Prompt, model string) (string, error) {
	system, history, err := conversation.Normalize(p)
	if err != nil {
		return "", err
	}
	return d.DispatchText(ctx, system, history, model)
}

// invoke 在 Agent 超时内调用 Provider，并将返回的图像以 Compact 模式归一化.
func (d *Dispatcher) invoke(ctx context.Context, req *llm.Request) (*Reply, error) {
	callCtx := ctx
	if d.cfg.AgentTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.cfg.AgentTimeout)
		defer cancel()
	}

	resp, err := d.provider.Invoke(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, types.NewTimeoutError(fmt.Sprintf("agent timed out after %s", d.cfg.AgentTimeout)).WithCause(err)
		}
		return nil, err
	}
	if resp == nil {
		return nil, types.NewProviderError(d.provider.Name(), "provider returned no response", nil)
	}

	reply := &Reply{Text: resp.Text}
	if len(resp.Image) > 0 {
		asset, err := d.normalizer.Normalize(callCtx, resp.Image, image.Compact)
		if err != nil {
			return nil, err
		}
		reply.Image = asset
	}
	return reply, nil
}

func (d *Dispatcher) model(m string) string {
	if m == "" {
		return d.cfg.DefaultModel
	}
	return m
}

func statusOf(err error) string {
	if types.Is(err, types.ErrTimeout) {
		return observability.StatusTimeout
	}
	return observability.StatusError
}

func failureMessage(err error) string {
	if msg := types.ErrorMessage(err); msg != "" {
		return msg
	}
	return internalErrorMessage
}
