// Package ingest runs uploaded documents through extraction, chunking, embedding
// and indexing in the background while a job records progress.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kailas-cloud/docrag/internal/domain"
	domdoc "github.com/kailas-cloud/docrag/internal/domain/document"
	"github.com/kailas-cloud/docrag/internal/domain/format"
	"github.com/kailas-cloud/docrag/internal/domain/job"
	"github.com/kailas-cloud/docrag/internal/extract"
	logpkg "github.com/kailas-cloud/docrag/internal/logger"
)

// Defaults.
const (
	DefaultConcurrency = 4
	DefaultMaxBytes    = 50 << 20
)

// Upload is an incoming file.
type Upload struct {
	Filename string
	// Size is the declared length; -1 when unknown. The copy is capped regardless.
	Size int64
	Body io.Reader
}

// Service accepts uploads and runs ingestion jobs.
type Service struct {
	extractor Extractor
	chunker   Chunker
	embedder  Embedder
	vectors   VectorStore
	jobs      JobTracker
	docs      Catalog
	locks     Locker

	sem       *semaphore.Weighted
	uploadDir string
	maxBytes  int64
	sniff     func(path string, f format.Format) error
	newID     func() string
	now       func() time.Time
	logger    *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an ingestion service. Uploads are stored under uploadDir.
func New(
	extractor Extractor, ch Chunker, embedder Embedder, vectors VectorStore,
	jobs JobTracker, docs Catalog, locks Locker, uploadDir string, logger *zap.Logger,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		extractor: extractor,
		chunker:   ch,
		embedder:  embedder,
		vectors:   vectors,
		jobs:      jobs,
		docs:      docs,
		locks:     locks,
		sem:       semaphore.NewWeighted(DefaultConcurrency),
		uploadDir: uploadDir,
		maxBytes:  DefaultMaxBytes,
		sniff:     extract.Sniff,
		newID:     uuid.NewString,
		now:       time.Now,
		logger:    logger,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// WithConcurrency sets how many jobs run at once.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.sem = semaphore.NewWeighted(int64(n))
	}
	return s
}

// WithMaxBytes sets the upload size ceiling.
func (s *Service) WithMaxBytes(n int64) *Service {
	if n > 0 {
		s.maxBytes = n
	}
	return s
}

// WithSniffer replaces the content check run before extraction. nil disables it.
func (s *Service) WithSniffer(fn func(path string, f format.Format) error) *Service {
	s.sniff = fn
	return s
}

// WithIDGenerator overrides document and job id generation.
func (s *Service) WithIDGenerator(fn func() string) *Service {
	s.newID = fn
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// MaxBytes returns the upload ceiling.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Submit validates and stores an upload, creates its job and starts ingestion.
// Unsupported extensions and oversized payloads are rejected before any job exists.
func (s *Service) Submit(ctx context.Context, up Upload) (job.Job, error) {
	name := sanitizeFilename(up.Filename)
	if name == "" {
		return job.Job{}, fmt.Errorf("filename is required: %w", domain.ErrInvalidInput)
	}
	f, err := s.extractor.Resolve(name)
	if err != nil {
		return job.Job{}, fmt.Errorf("resolve %s: %w", name, err)
	}
	if up.Size > s.maxBytes {
		return job.Job{}, fmt.Errorf("%s is %d bytes, limit %d: %w", name, up.Size, s.maxBytes, domain.ErrPayloadTooLarge)
	}

	docID := s.newID()
	path, size, err := s.store(docID, name, up.Body)
	if err != nil {
		return job.Job{}, err
	}

	doc, err := domdoc.New(docID, name, f, size, s.now(), path)
	if err != nil {
		_ = os.Remove(path)
		return job.Job{}, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	if _, err := s.docs.Put(ctx, doc); err != nil {
		_ = os.Remove(path)
		return job.Job{}, fmt.Errorf("put document: %w", err)
	}

	j, err := s.enqueue(ctx, doc)
	if err != nil {
		return job.Job{}, err
	}
	logpkg.FromContextOr(ctx, s.logger).Info("upload accepted",
		zap.String("job_id", j.ID),
		zap.String("document_id", docID),
		zap.String("filename", name),
		zap.String("format", string(f)),
		zap.Int64("size_bytes", size),
	)
	return j, nil
}

// Reingest re-runs ingestion over a document's stored upload. Chunk ids are
// deterministic, so the index ends with exactly one copy of each chunk.
func (s *Service) Reingest(ctx context.Context, documentID string) (job.Job, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return job.Job{}, fmt.Errorf("get document: %w", err)
	}
	return s.enqueue(ctx, doc)
}

// Status returns a job snapshot.
func (s *Service) Status(ctx context.Context, jobID string) (job.Job, error) {
	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return job.Job{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// Jobs returns every tracked job.
func (s *Service) Jobs(ctx context.Context) ([]job.Job, error) {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Wait blocks until every started job has finished.
func (s *Service) Wait() { s.wg.Wait() }

// Shutdown cancels running jobs and waits for them, or returns when ctx is done.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) enqueue(ctx context.Context, doc domdoc.Document) (job.Job, error) {
	j := job.New(s.newID(), doc.ID(), doc.Filename(), s.now())
	if err := s.jobs.Create(ctx, j); err != nil {
		return job.Job{}, fmt.Errorf("create job: %w", err)
	}
	if err := s.docs.SetLastJob(ctx, doc.ID(), j.ID); err != nil {
		return job.Job{}, fmt.Errorf("link job: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.baseCtx, j.ID, doc)
	}()
	return j, nil
}

func (s *Service) store(docID, name string, body io.Reader) (string, int64, error) {
	if body == nil {
		return "", 0, fmt.Errorf("empty upload: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, docID+"_"+name)
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(out, io.LimitReader(body, s.maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	if n > s.maxBytes {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("%s exceeds %d bytes: %w", name, s.maxBytes, domain.ErrPayloadTooLarge)
	}
	return path, n, nil
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
