// Package document is the in-memory document catalog.
package document

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/docrag/internal/domain"
	domdoc "github.com/kailas-cloud/docrag/internal/domain/document"
)

// Repo implements usecase/document.Repository and usecase/ingest.Catalog.
type Repo struct {
	mu   sync.RWMutex
	docs map[string]domdoc.Document
}

// New creates an empty catalog.
func New() *Repo {
	return &Repo{docs: make(map[string]domdoc.Document)}
}

// Put creates or replaces a document. Returns true if created.
func (r *Repo) Put(_ context.Context, doc domdoc.Document) (bool, error) {
	if doc.ID() == "" {
		return false, fmt.Errorf("document id is required: %w", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.docs[doc.ID()]
	r.docs[doc.ID()] = doc
	return !exists, nil
}

// Get returns a document by ID.
func (r *Repo) Get(_ context.Context, id string) (domdoc.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return domdoc.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return doc, nil
}

// List returns every document, most recent upload first.
func (r *Repo) List(_ context.Context) ([]domdoc.Document, error) {
	r.mu.RLock()
	out := make([]domdoc.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		ta, tb := out[a].UploadedAt(), out[b].UploadedAt()
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return out[a].ID() < out[b].ID()
	})
	return out, nil
}

// SetChunkCount records the chunk count of the latest ingestion.
func (r *Repo) SetChunkCount(_ context.Context, id string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	r.docs[id] = doc.WithChunkCount(n)
	return nil
}

// SetLastJob records the most recent ingestion job of a document.
func (r *Repo) SetLastJob(_ context.Context, id, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	r.docs[id] = doc.WithLastJob(jobID)
	return nil
}

// Delete removes a document.
func (r *Repo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	delete(r.docs, id)
	return nil
}
