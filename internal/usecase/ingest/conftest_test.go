package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/chunker"
	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/extract"
	"github.com/kailas-cloud/docrag/internal/lock"
	docrepo "github.com/kailas-cloud/docrag/internal/repository/document"
	jobrepo "github.com/kailas-cloud/docrag/internal/repository/job"
	"github.com/kailas-cloud/docrag/internal/repository/vector"
	"github.com/kailas-cloud/docrag/internal/transport/local"
)

// failingEmbedder fails every call.
type failingEmbedder struct {
	calls atomic.Int32
}

func (f *failingEmbedder) BatchEmbed(_ context.Context, _ []string) (domain.BatchEmbeddingResult, error) {
	f.calls.Add(1)
	return domain.BatchEmbeddingResult{}, fmt.Errorf("provider down: %w", domain.ErrEmbeddingFailed)
}

// shortEmbedder returns one vector fewer than requested.
type shortEmbedder struct{}

func (shortEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := make([][]float32, len(texts)-1)
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

type fixture struct {
	svc     *Service
	vectors *vector.Store
	jobs    *jobrepo.Tracker
	docs    *docrepo.Repo
	dir     string
}

func newFixture(t *testing.T, emb Embedder) *fixture {
	t.Helper()
	if emb == nil {
		emb = local.NewEmbedder(64)
	}
	ch, err := chunker.New(chunker.DefaultSize, chunker.DefaultOverlap)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	f := &fixture{
		vectors: vector.New(),
		jobs:    jobrepo.New(),
		docs:    docrepo.New(),
		dir:     t.TempDir(),
	}
	var seq atomic.Int64
	f.svc = New(
		extract.NewRegistry(extract.Config{}), ch, emb, f.vectors,
		f.jobs, f.docs, lock.NewKeyed(), f.dir, zap.NewNop(),
	).WithIDGenerator(func() string {
		return fmt.Sprintf("id-%d", seq.Add(1))
	})
	t.Cleanup(func() { _ = f.svc.Shutdown(context.Background()) })
	return f
}

func (f *fixture) submit(t *testing.T, name, body string) string {
	t.Helper()
	j, err := f.svc.Submit(context.Background(), Upload{
		Filename: name, Size: int64(len(body)), Body: strings.NewReader(body),
	})
	if err != nil {
		t.Fatalf("Submit(%s): %v", name, err)
	}
	return j.ID
}

func uploadFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, filepath.Join(dir, e.Name()))
	}
	return names
}

// text1200 is 1200 runes with no leading or trailing whitespace.
func text1200() string {
	words := strings.Repeat("lorem ipsum ", 100)
	return strings.TrimSpace(words) + "x"
}
