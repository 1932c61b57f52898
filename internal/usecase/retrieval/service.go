// Package retrieval embeds a query and returns the most similar indexed chunks.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/docrag/internal/logger"
	"github.com/kailas-cloud/docrag/internal/metrics"
)

// MaxTopK bounds explicit searches.
const MaxTopK = 100

// Retrieval is the outcome of a mode-driven retrieval. Degraded is set when the
// embedder or store failed and an empty context was returned instead of an error.
type Retrieval struct {
	Results  []result.Result
	Degraded bool
}

// Service handles semantic retrieval.
type Service struct {
	embed   Embedder
	store   Searcher
	degrade bool
	logger  *zap.Logger
}

// New creates a retrieval service. Failures degrade to empty context by default.
func New(embed Embedder, store Searcher, logger *zap.Logger) *Service {
	return &Service{embed: embed, store: store, degrade: true, logger: logger}
}

// WithDegradeOnError controls whether Retrieve swallows embedding and store failures.
func (s *Service) WithDegradeOnError(v bool) *Service {
	s.degrade = v
	return s
}

// Retrieve returns up to the mode's topK chunks scoring at least its threshold.
// Modes without retrieval and blank queries yield no results.
func (s *Service) Retrieve(ctx context.Context, query string, m mode.Mode) (Retrieval, error) {
	cfg, err := mode.Lookup(m)
	if err != nil {
		return Retrieval{}, err
	}
	if !cfg.UseRetrieval || cfg.TopK <= 0 || strings.TrimSpace(query) == "" {
		return Retrieval{Results: []result.Result{}}, nil
	}

	results, err := s.search(ctx, query, cfg.TopK, cfg.Threshold)
	if err != nil {
		if !s.degrade {
			return Retrieval{}, err
		}
		metrics.RetrievalDegradedTotal.WithLabelValues(string(m), "retrieval").Inc()
		logpkg.FromContextOr(ctx, s.logger).Warn("retrieval degraded to empty context",
			zap.String("mode", string(m)),
			zap.Error(err),
		)
		return Retrieval{Results: []result.Result{}, Degraded: true}, nil
	}

	metrics.RetrievalResults.WithLabelValues(string(m)).Observe(float64(len(results)))
	return Retrieval{Results: results}, nil
}

// Search runs an explicit query with caller-supplied bounds. Errors are returned as is.
func (s *Service) Search(ctx context.Context, query string, topK int, threshold float64) ([]result.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}
	if topK < 1 || topK > MaxTopK {
		return nil, fmt.Errorf("topK must be in [1,%d]: %w", MaxTopK, domain.ErrInvalidInput)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0,1]: %w", domain.ErrInvalidInput)
	}
	return s.search(ctx, query, topK, threshold)
}

func (s *Service) search(ctx context.Context, query string, topK int, threshold float64) ([]result.Result, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.store.Search(ctx, emb.Embedding, topK, threshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return results, nil
}
