package domain

import "context"

type usageKey struct{}

// Usage collects provider token usage for a single request.
// The handler puts a pointer into the context, services add to it, and the handler
// reports the totals in response headers.
type Usage struct {
	EmbeddingTokens  int
	GenerationTokens int
	// Embedded is true if embedding was called, even when served from cache.
	Embedded bool
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the collector or nil.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records embedding tokens. Safe on a nil receiver.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.Embedded = true
	}
}

// AddGenerationTokens records completion tokens. Safe on a nil receiver.
func (u *Usage) AddGenerationTokens(n int) {
	if u != nil {
		u.GenerationTokens += n
	}
}
