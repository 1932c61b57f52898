package domain

import (
	"context"
	"testing"
)

func TestUsage_Context(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddEmbeddingTokens(7)
	UsageFromContext(ctx).AddGenerationTokens(12)

	if u.EmbeddingTokens != 7 || !u.Embedded {
		t.Errorf("embedding usage = %+v", u)
	}
	if u.GenerationTokens != 12 {
		t.Errorf("generation tokens = %d", u.GenerationTokens)
	}
}

func TestUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatalf("expected nil, got %+v", u)
	}
	u.AddEmbeddingTokens(1)
	u.AddGenerationTokens(1)
}

func TestUsage_CacheHitMarksEmbedded(t *testing.T) {
	_, u := NewContextWithUsage(context.Background())
	u.AddEmbeddingTokens(0)
	if !u.Embedded {
		t.Error("Embedded should be true after a zero-token call")
	}
}
