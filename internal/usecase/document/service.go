// Package document lists and deletes ingested documents.
package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/docrag/internal/domain/document"
	logpkg "github.com/kailas-cloud/docrag/internal/logger"
)

// Listing is the catalog plus index totals.
type Listing struct {
	Documents       []domdoc.Document
	TotalChunks     int
	UniqueDocuments int
}

// Service handles document catalog operations.
type Service struct {
	repo    Repository
	vectors VectorStore
	locks   Locker
	logger  *zap.Logger
}

// New creates a document service.
func New(repo Repository, vectors VectorStore, locks Locker, logger *zap.Logger) *Service {
	return &Service{repo: repo, vectors: vectors, locks: locks, logger: logger}
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns every document with index totals.
func (s *Service) List(ctx context.Context) (Listing, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("list documents: %w", err)
	}
	stats, err := s.vectors.Count(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("count chunks: %w", err)
	}
	return Listing{
		Documents:       docs,
		TotalChunks:     stats.TotalChunks,
		UniqueDocuments: stats.UniqueDocuments,
	}, nil
}

// Delete removes a document, its chunks and its stored upload. It waits for any
// running ingestion of the same document to finish first.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	removed, err := s.vectors.DeleteByDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	log := logpkg.FromContextOr(ctx, s.logger)
	if p := doc.StoredPath(); p != "" {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("remove stored upload", zap.String("document_id", id), zap.Error(err))
		}
	}

	log.Info("document deleted", zap.String("document_id", id), zap.Int("chunks_removed", removed))
	return nil
}
