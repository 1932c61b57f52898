package ingest

import (
	"context"

	"github.com/kailas-cloud/docrag/internal/chunker"
	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docrag/internal/domain/document"
	"github.com/kailas-cloud/docrag/internal/domain/format"
	"github.com/kailas-cloud/docrag/internal/domain/job"
)

// Extractor turns a stored upload into text.
type Extractor interface {
	Resolve(filename string) (format.Format, error)
	Extract(ctx context.Context, path string, declared format.Format) (string, error)
}

// Chunker splits extracted text into overlapping segments.
type Chunker interface {
	Chunk(text string) []chunker.Segment
}

// Embedder vectorizes chunk texts in order.
type Embedder interface {
	domain.BatchEmbedder
}

// VectorStore indexes chunks.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []chunk.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
}

// JobTracker records ingestion progress.
type JobTracker interface {
	Create(ctx context.Context, j job.Job) error
	Get(ctx context.Context, id string) (job.Job, error)
	Update(ctx context.Context, id string, p job.Patch) (job.Job, error)
	List(ctx context.Context) ([]job.Job, error)
}

// Catalog stores document metadata.
type Catalog interface {
	Put(ctx context.Context, doc domdoc.Document) (created bool, err error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	SetChunkCount(ctx context.Context, id string, n int) error
	SetLastJob(ctx context.Context, id, jobID string) error
}

// Locker serializes writes per document.
type Locker interface {
	Lock(key string) (unlock func())
}
