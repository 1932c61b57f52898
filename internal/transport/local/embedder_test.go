package local

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/docrag/internal/domain"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(64)
	a, err := e.Embed(context.Background(), "machine learning models")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, _ := NewEmbedder(64).Embed(context.Background(), "machine learning models")
	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestEmbed_Normalized(t *testing.T) {
	res, _ := NewEmbedder(0).Embed(context.Background(), "neural networks learn representations")
	if len(res.Embedding) != DefaultDimensions {
		t.Fatalf("dimensions = %d", len(res.Embedding))
	}
	var sum float64
	for _, v := range res.Embedding {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("squared norm = %f", sum)
	}
}

func TestEmbed_RelatedTextCloser(t *testing.T) {
	e := NewEmbedder(512)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "machine learning")
	ai, _ := e.Embed(ctx, "machine learning trains models from data")
	cook, _ := e.Embed(ctx, "simmer the tomato sauce with basil and garlic")

	if cosine(q.Embedding, ai.Embedding) <= cosine(q.Embedding, cook.Embedding) {
		t.Errorf("related text should score higher")
	}
}

func TestEmbed_BlankRejected(t *testing.T) {
	_, err := NewEmbedder(8).Embed(context.Background(), " ")
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestEmbed_StopwordsOnlyIsZeroVector(t *testing.T) {
	res, err := NewEmbedder(8).Embed(context.Background(), "the and of")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for _, v := range res.Embedding {
		if v != 0 {
			t.Fatalf("expected zero vector, got %v", res.Embedding)
		}
	}
}

func TestBatchEmbed_OrderPreserved(t *testing.T) {
	e := NewEmbedder(32)
	ctx := context.Background()
	texts := []string{"alpha beta", "gamma delta", "epsilon"}

	batch, err := e.BatchEmbed(ctx, texts)
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	for i, text := range texts {
		single, _ := e.Embed(ctx, text)
		for j := range single.Embedding {
			if batch.Embeddings[i][j] != single.Embedding[j] {
				t.Fatalf("batch[%d] differs from single embed", i)
			}
		}
	}
	if batch.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d", batch.TotalTokens)
	}
}
