package document

import (
	"context"

	"github.com/kailas-cloud/docrag/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docrag/internal/domain/document"
)

// Repository defines the storage contract for document metadata.
type Repository interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

// VectorStore removes and counts indexed chunks.
type VectorStore interface {
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
	Count(ctx context.Context) (chunk.Stats, error)
}

// Locker serializes writes per document.
type Locker interface {
	Lock(key string) (unlock func())
}
