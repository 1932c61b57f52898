package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/chunk"
	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
	"github.com/kailas-cloud/docrag/internal/repository/vector"
)

func seeded(t *testing.T, emb *topicEmbedder) *vector.Store {
	t.Helper()
	store := vector.New()
	texts := map[string]string{
		"ml":   "Machine learning trains neural networks on data.",
		"cook": "Cooking pasta: a simple recipe for dinner.",
	}
	var chunks []chunk.Chunk
	for doc, text := range texts {
		res, _ := emb.Embed(context.Background(), text)
		chunks = append(chunks, chunk.Chunk{
			ID: chunk.ID(doc, 0), DocumentID: doc, Source: doc + ".txt",
			Text: text, Vector: res.Embedding, CharStart: 0, CharEnd: len(text),
		})
	}
	if err := store.Upsert(context.Background(), chunks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	return store
}

func TestRetrieve_OnlyRelevantDocument(t *testing.T) {
	emb := &topicEmbedder{}
	svc := New(emb, seeded(t, emb), zap.NewNop())

	got, err := svc.Retrieve(context.Background(), "What is machine learning?", mode.Chat)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got.Degraded {
		t.Error("unexpected degraded retrieval")
	}
	if len(got.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(got.Results))
	}
	if got.Results[0].Chunk.DocumentID != "ml" || got.Results[0].Score < mode.DefaultThreshold {
		t.Errorf("result = %+v", got.Results[0])
	}
}

func TestRetrieve_ModeWithoutRetrieval(t *testing.T) {
	emb := &topicEmbedder{}
	svc := New(emb, seeded(t, emb), zap.NewNop())
	emb.calls = 0

	got, err := svc.Retrieve(context.Background(), "summarize learning", mode.Summarize)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got.Results) != 0 || emb.calls != 0 {
		t.Errorf("results=%d embed calls=%d", len(got.Results), emb.calls)
	}
}

func TestRetrieve_UnknownMode(t *testing.T) {
	svc := New(&topicEmbedder{}, vector.New(), zap.NewNop())
	if _, err := svc.Retrieve(context.Background(), "q", mode.Mode("poetry")); !errors.Is(err, domain.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestRetrieve_EmptyStore(t *testing.T) {
	svc := New(&topicEmbedder{}, vector.New(), zap.NewNop())
	got, err := svc.Retrieve(context.Background(), "neural nets", mode.Chat)
	if err != nil || len(got.Results) != 0 || got.Degraded {
		t.Fatalf("got=%+v err=%v", got, err)
	}
}

func TestRetrieve_Degrade(t *testing.T) {
	storeErr := &mockSearcher{searchFn: func(context.Context, []float32, int, float64) ([]result.Result, error) {
		return nil, domain.ErrVectorStore
	}}
	tests := []struct {
		name  string
		emb   *topicEmbedder
		store Searcher
	}{
		{"embedder fails", &topicEmbedder{err: domain.ErrEmbeddingFailed}, vector.New()},
		{"store fails", &topicEmbedder{}, storeErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.emb, tt.store, zap.NewNop())
			got, err := svc.Retrieve(context.Background(), "learning", mode.Coding)
			if err != nil {
				t.Fatalf("degraded retrieval returned error: %v", err)
			}
			if !got.Degraded || len(got.Results) != 0 {
				t.Errorf("got %+v", got)
			}

			strict := New(tt.emb, tt.store, zap.NewNop()).WithDegradeOnError(false)
			if _, err := strict.Retrieve(context.Background(), "learning", mode.Coding); err == nil {
				t.Error("expected error with degrade disabled")
			}
		})
	}
}

func TestRetrieve_PassesModeBounds(t *testing.T) {
	var gotK int
	var gotThreshold float64
	s := &mockSearcher{searchFn: func(_ context.Context, _ []float32, k int, th float64) ([]result.Result, error) {
		gotK, gotThreshold = k, th
		return nil, nil
	}}
	svc := New(&topicEmbedder{}, s, zap.NewNop())
	if _, err := svc.Retrieve(context.Background(), "learning", mode.DeepResearch); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	cfg, _ := mode.Lookup(mode.DeepResearch)
	if gotK != cfg.TopK || gotThreshold != cfg.Threshold {
		t.Errorf("topK=%d threshold=%v, want %d %v", gotK, gotThreshold, cfg.TopK, cfg.Threshold)
	}
}

func TestSearch_Validation(t *testing.T) {
	emb := &topicEmbedder{}
	svc := New(emb, seeded(t, emb), zap.NewNop())
	tests := []struct {
		name      string
		query     string
		topK      int
		threshold float64
	}{
		{"blank query", "  ", 3, 0.5},
		{"zero topK", "q", 0, 0.5},
		{"topK too large", "q", MaxTopK + 1, 0.5},
		{"negative threshold", "q", 3, -0.1},
		{"threshold above one", "q", 3, 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.query, tt.topK, tt.threshold)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSearch_ReturnsErrors(t *testing.T) {
	svc := New(&topicEmbedder{err: domain.ErrEmbeddingFailed}, vector.New(), zap.NewNop())
	_, err := svc.Search(context.Background(), "learning", 3, 0)
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestSearch_LowThresholdReturnsBoth(t *testing.T) {
	emb := &topicEmbedder{}
	svc := New(emb, seeded(t, emb), zap.NewNop())
	res, err := svc.Search(context.Background(), "learning to cook", 5, 0.1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d results", len(res))
	}
	if res[0].Chunk.DocumentID != "cook" {
		t.Errorf("tie should order by document id, got %s first", res[0].Chunk.DocumentID)
	}
}
