package retrieval

import (
	"context"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
)

// Embedder vectorizes queries.
type Embedder interface {
	domain.Embedder
}

// Searcher runs nearest-neighbour search over indexed chunks.
type Searcher interface {
	Search(ctx context.Context, query []float32, topK int, threshold float64) ([]result.Result, error)
}
