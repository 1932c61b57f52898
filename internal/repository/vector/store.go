// Package vector is the in-process vector store: brute-force cosine search over
// chunk embeddings, guarded by a read-write mutex.
package vector

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/chunk"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
)

type entry struct {
	chunk chunk.Chunk
	norm  float64
}

// Store holds chunks keyed by id. Entries are fully built before they are
// published under the write lock, so readers never see a partial chunk.
type Store struct {
	mu      sync.RWMutex
	dims    int
	entries map[string]*entry
	byDoc   map[string]map[string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		byDoc:   make(map[string]map[string]struct{}),
	}
}

// Upsert inserts or overwrites chunks by id. The batch is applied atomically:
// either every chunk is stored or none is.
func (s *Store) Upsert(ctx context.Context, chunks []chunk.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	dims := len(chunks[0].Vector)
	built := make([]*entry, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("chunk %d: %v: %w", i, err, domain.ErrVectorStore)
		}
		if len(c.Vector) != dims {
			return fmt.Errorf("chunk %s has %d dimensions, batch has %d: %w",
				c.ID, len(c.Vector), dims, domain.ErrVectorDimMismatch)
		}
		built[i] = &entry{chunk: c.Clone(), norm: norm(c.Vector)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims != 0 && s.dims != dims {
		return fmt.Errorf("store has %d dimensions, got %d: %w", s.dims, dims, domain.ErrVectorDimMismatch)
	}
	s.dims = dims

	for _, e := range built {
		id := e.chunk.ID
		if old, ok := s.entries[id]; ok && old.chunk.DocumentID != e.chunk.DocumentID {
			s.unindex(old.chunk.DocumentID, id)
		}
		s.entries[id] = e
		ids, ok := s.byDoc[e.chunk.DocumentID]
		if !ok {
			ids = make(map[string]struct{})
			s.byDoc[e.chunk.DocumentID] = ids
		}
		ids[id] = struct{}{}
	}
	return nil
}

// Search returns at most topK chunks with score >= threshold, ordered by descending
// score then ascending document id and ordinal. Scores are cosine similarity clamped
// to [0,1]. Returned chunks carry no vector.
func (s *Store) Search(ctx context.Context, query []float32, topK int, threshold float64) ([]result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []result.Result{}, nil
	}

	qn := norm(query)

	s.mu.RLock()
	if len(s.entries) == 0 {
		s.mu.RUnlock()
		return []result.Result{}, nil
	}
	if len(query) != s.dims {
		dims := s.dims
		s.mu.RUnlock()
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w", len(query), dims, domain.ErrVectorDimMismatch)
	}

	hits := make([]result.Result, 0, min(topK*2, len(s.entries)))
	for _, e := range s.entries {
		score := cosine(query, qn, e.chunk.Vector, e.norm)
		if score < threshold {
			continue
		}
		c := e.chunk
		c.Vector = nil
		hits = append(hits, result.New(c, score))
	}
	s.mu.RUnlock()

	result.Sort(hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteByDocument removes every chunk of a document and returns how many were removed.
// Deleting an unknown document is a no-op.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byDoc[documentID]
	for id := range ids {
		delete(s.entries, id)
	}
	delete(s.byDoc, documentID)
	if len(s.entries) == 0 {
		s.dims = 0
	}
	return len(ids), nil
}

// Count returns the number of chunks and distinct documents.
func (s *Store) Count(ctx context.Context) (chunk.Stats, error) {
	if err := ctx.Err(); err != nil {
		return chunk.Stats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chunk.Stats{TotalChunks: len(s.entries), UniqueDocuments: len(s.byDoc)}, nil
}

// CountByDocument returns the number of chunks stored for a document.
func (s *Store) CountByDocument(ctx context.Context, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byDoc[documentID]), nil
}

// Dimensions returns the vector length fixed by the first insert, or 0 when empty.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// Ping reports the store as available.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) unindex(documentID, id string) {
	ids := s.byDoc[documentID]
	delete(ids, id)
	if len(ids) == 0 {
		delete(s.byDoc, documentID)
	}
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	sim := dot / (an * bn)
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}
