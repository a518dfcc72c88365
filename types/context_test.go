package types

import (
	"context"
	"testing"
)

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, ok := RequestID(ctx); ok {
		t.Fatalf("expected no request id on empty context")
	}

	ctx = WithRequestID(ctx, "req-1")
	if got, ok := RequestID(ctx); !ok || got != "req-1" {
		t.Fatalf("RequestID mismatch: %v %v", got, ok)
	}

	ctx = WithBatchID(ctx, "batch")
	if got, ok := BatchID(ctx); !ok || got != "batch" {
		t.Fatalf("BatchID mismatch: %v %v", got, ok)
	}

	ctx = WithAgentID(ctx, "A")
	if got, ok := AgentID(ctx); !ok || got != "A" {
		t.Fatalf("AgentID mismatch: %v %v", got, ok)
	}

	ctx = WithModel(ctx, "gemini-1.5-flash")
	if got, ok := Model(ctx); !ok || got != "gemini-1.5-flash" {
		t.Fatalf("Model mismatch: %v %v", got, ok)
	}

	ctx = WithAgentID(ctx, "")
	if _, ok := AgentID(ctx); ok {
		t.Fatalf("expected empty agent id to report missing")
	}
}
