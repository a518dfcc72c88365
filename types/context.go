package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keyBatchID   contextKey = "batch_id"
	keyAgentID   contextKey = "agent_id"
	keyModel     contextKey = "model"
)

// WithRequestID adds the HTTP request ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID extracts the HTTP request ID from context.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}

// WithBatchID adds the dispatch batch ID to context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, keyBatchID, batchID)
}

// BatchID extracts the dispatch batch ID from context.
func BatchID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyBatchID).(string)
	return v, ok && v != ""
}

// WithAgentID adds the agent ID to context.
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, keyAgentID, agentID)
}

// AgentID extracts the agent ID from context.
func AgentID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyAgentID).(string)
	return v, ok && v != ""
}

// WithModel adds the resolved model name to context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, keyModel, model)
}

// Model extracts the resolved model name from context.
func Model(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyModel).(string)
	return v, ok && v != ""
}
