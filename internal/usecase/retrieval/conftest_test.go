package retrieval

import (
	"context"
	"strings"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
)

// topicEmbedder maps text onto two axes: machine learning and cooking.
type topicEmbedder struct {
	err   error
	calls int
}

func (e *topicEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	t := strings.ToLower(text)
	var v [2]float32
	if strings.Contains(t, "learning") || strings.Contains(t, "neural") {
		v[0] = 1
	}
	if strings.Contains(t, "cook") || strings.Contains(t, "recipe") {
		v[1] = 1
	}
	return domain.EmbeddingResult{Embedding: v[:], TotalTokens: 1}, nil
}

type mockSearcher struct {
	searchFn func(ctx context.Context, q []float32, topK int, threshold float64) ([]result.Result, error)
}

func (m *mockSearcher) Search(ctx context.Context, q []float32, topK int, threshold float64) ([]result.Result, error) {
	return m.searchFn(ctx, q, topK, threshold)
}
