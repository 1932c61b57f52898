package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docrag/internal/domain/document"
	"github.com/kailas-cloud/docrag/internal/domain/job"
	"github.com/kailas-cloud/docrag/internal/extract"
	"github.com/kailas-cloud/docrag/internal/metrics"
)

var errNoChunks = errors.New("no chunks produced")

// run walks a job through the stages. Any failure removes whatever the job
// indexed for the document and marks the job failed.
func (s *Service) run(ctx context.Context, jobID string, doc domdoc.Document) {
	log := s.logger.With(zap.String("job_id", jobID), zap.String("document_id", doc.ID()))

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.fail(context.WithoutCancel(ctx), log, jobID, doc, job.Queued, err)
		return
	}
	defer s.sem.Release(1)

	unlock := s.locks.Lock(doc.ID())
	defer unlock()

	metrics.IngestionInFlight.Inc()
	defer metrics.IngestionInFlight.Dec()

	start := time.Now()
	n, stage, err := s.process(ctx, log, jobID, doc)
	if err != nil {
		s.fail(context.WithoutCancel(ctx), log, jobID, doc, stage, err)
		return
	}

	if err := s.docs.SetChunkCount(ctx, doc.ID(), n); err != nil {
		log.Warn("record chunk count", zap.Error(err))
	}
	added := n
	p := job.Advance(job.Completed, fmt.Sprintf("Indexed %d chunks", n))
	p.ChunksAdded = &added
	if _, err := s.jobs.Update(ctx, jobID, p); err != nil {
		log.Error("complete job", zap.Error(err))
		return
	}

	metrics.IngestionJobsTotal.WithLabelValues(string(job.Completed), string(doc.Format())).Inc()
	metrics.ChunksIndexedTotal.Add(float64(n))
	log.Info("ingestion completed",
		zap.Int("chunks", n),
		zap.Duration("duration", time.Since(start)),
	)
}

// process returns the number of chunks indexed, or the stage that failed.
func (s *Service) process(ctx context.Context, log *zap.Logger, jobID string, doc domdoc.Document) (int, job.Status, error) {
	var (
		text     string
		segments []chunkSegment
		vectors  [][]float32
	)

	stages := []struct {
		status  job.Status
		message string
		fn      func() error
	}{
		{job.Extracting, "Extracting text", func() error {
			var err error
			text, err = s.extractText(ctx, jobID, doc)
			return err
		}},
		{job.Chunking, "Splitting text into chunks", func() error {
			for _, seg := range s.chunker.Chunk(text) {
				segments = append(segments, chunkSegment{seg.Text, seg.CharStart, seg.CharEnd})
			}
			if len(segments) == 0 {
				return errNoChunks
			}
			return nil
		}},
		{job.Embedding, "Generating embeddings", func() error {
			var err error
			vectors, err = s.embed(ctx, segments)
			return err
		}},
		{job.Indexing, "Indexing chunks", func() error {
			return s.index(ctx, doc, segments, vectors)
		}},
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return 0, st.status, err
		}
		if _, err := s.jobs.Update(ctx, jobID, job.Advance(st.status, st.message)); err != nil {
			return 0, st.status, fmt.Errorf("update job: %w", err)
		}
		t := time.Now()
		err := st.fn()
		metrics.IngestionStageDuration.WithLabelValues(string(st.status)).Observe(time.Since(t).Seconds())
		if err != nil {
			return 0, st.status, err
		}
		log.Debug("stage done", zap.String("stage", string(st.status)), zap.Duration("duration", time.Since(t)))
	}
	return len(segments), job.Indexing, nil
}

type chunkSegment struct {
	text       string
	start, end int
}

func (s *Service) extractText(ctx context.Context, jobID string, doc domdoc.Document) (string, error) {
	if s.sniff != nil {
		if err := s.sniff(doc.StoredPath(), doc.Format()); err != nil {
			return "", err
		}
	}
	text, err := s.extractor.Extract(ctx, doc.StoredPath(), doc.Format())
	if err != nil {
		return "", err
	}

	words := extract.WordCount(text)
	f := doc.Format()
	msg := fmt.Sprintf("Extracted %d words", words)
	if _, err := s.jobs.Update(ctx, jobID, job.Patch{WordCount: &words, DetectedFormat: &f, Message: &msg}); err != nil {
		return "", fmt.Errorf("update job: %w", err)
	}
	return text, nil
}

func (s *Service) embed(ctx context.Context, segments []chunkSegment) ([][]float32, error) {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.text
	}
	res, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d chunks: %w",
			len(res.Embeddings), len(texts), domain.ErrEmbeddingFailed)
	}
	return res.Embeddings, nil
}

// index replaces the document's chunks. Upsert is atomic, so a failure leaves
// no chunk of this run behind.
func (s *Service) index(ctx context.Context, doc domdoc.Document, segments []chunkSegment, vectors [][]float32) error {
	chunks := make([]chunk.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = chunk.Chunk{
			ID:         chunk.ID(doc.ID(), i),
			DocumentID: doc.ID(),
			Source:     doc.Filename(),
			Ordinal:    i,
			Text:       seg.text,
			Vector:     vectors[i],
			CharStart:  seg.start,
			CharEnd:    seg.end,
		}
	}

	if _, err := s.vectors.DeleteByDocument(ctx, doc.ID()); err != nil {
		return fmt.Errorf("remove previous chunks: %w", err)
	}
	if err := s.vectors.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	return nil
}

func (s *Service) fail(
	ctx context.Context, log *zap.Logger, jobID string, doc domdoc.Document, stage job.Status, cause error,
) {
	if _, err := s.vectors.DeleteByDocument(ctx, doc.ID()); err != nil {
		log.Error("rollback chunks", zap.Error(err))
	}
	if err := s.docs.SetChunkCount(ctx, doc.ID(), 0); err != nil {
		log.Warn("reset chunk count", zap.Error(err))
	}
	if _, err := s.jobs.Update(ctx, jobID, job.Fail(failureMessage(stage, cause))); err != nil {
		log.Error("mark job failed", zap.Error(err))
	}

	metrics.IngestionJobsTotal.WithLabelValues(string(job.Failed), string(doc.Format())).Inc()
	log.Warn("ingestion failed", zap.String("stage", string(stage)), zap.Error(cause))
}

func failureMessage(stage job.Status, err error) string {
	var ee *extract.ExtractionError
	switch {
	case errors.As(err, &ee):
		return fmt.Sprintf("Extraction failed (%s): %s", ee.Format, ee.Reason)
	case errors.Is(err, context.Canceled):
		return "Cancelled during " + string(stage)
	default:
		return fmt.Sprintf("Failed during %s: %v", stage, err)
	}
}
