package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/db"
	"github.com/kailas-cloud/docrag/internal/db/memory"
	"github.com/kailas-cloud/docrag/internal/domain"
)

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	batchCalls int
	embedCalls int
	batchTexts [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchTexts = append(m.batchTexts, texts)
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = []float32{float32(len(t))}
	}
	return domain.BatchEmbeddingResult{
		Embeddings:  embeddings,
		TotalTokens: len(texts),
	}, nil
}

// failingStore returns errors for every operation.
type failingStore struct {
	getErr error
	setErr error
	sets   int
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return nil, db.ErrKeyNotFound
}

func (f *failingStore) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return f.setErr
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *memory.Store) {
	t.Helper()
	ms := memory.NewStore()
	return New(inner, ms, "test-model", nil, zap.NewNop()), ms
}
