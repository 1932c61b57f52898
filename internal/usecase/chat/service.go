// Package chat answers a message in one of the interaction modes: it gathers
// context, assembles the prompt and calls the generation capability.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/domain/conversation"
	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/docrag/internal/logger"
	"github.com/kailas-cloud/docrag/internal/metrics"
	"github.com/kailas-cloud/docrag/internal/usecase/prompt"
)

// Request is one chat turn.
type Request struct {
	Message string
	Mode    mode.Mode
	UseRAG  bool
	History []conversation.Turn
}

// Source describes a chunk used as context.
type Source struct {
	DocumentID string
	Filename   string
	Ordinal    int
	Score      float64
}

// Response is the formatted answer. Degraded is set when retrieval or web
// search failed and the answer was generated without that context.
type Response struct {
	Text          string
	Mode          mode.Mode
	ResponseField string
	UsedRAG       bool
	Degraded      bool
	Sources       []Source
	WebSources    []domain.WebResult
}

// Service orchestrates a chat turn.
type Service struct {
	retriever Retriever
	web       domain.WebSearcher
	assembler Assembler
	generator domain.Generator
	logger    *zap.Logger
}

// New creates a chat service. web may be nil when no search provider is configured.
func New(
	retriever Retriever, web domain.WebSearcher, assembler Assembler, generator domain.Generator, logger *zap.Logger,
) *Service {
	return &Service{
		retriever: retriever,
		web:       web,
		assembler: assembler,
		generator: generator,
		logger:    logger,
	}
}

// Chat answers req. Generation failures are returned wrapping ErrGenerationFailed.
func (s *Service) Chat(ctx context.Context, req Request) (Response, error) {
	cfg, err := mode.Lookup(req.Mode)
	if err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return Response{}, fmt.Errorf("message is required: %w", domain.ErrInvalidInput)
	}

	gathered, err := s.gather(ctx, req, cfg)
	if err != nil {
		return Response{}, err
	}

	pr, err := s.assembler.Assemble(prompt.Input{
		Mode:      req.Mode,
		Message:   req.Message,
		History:   req.History,
		Retrieved: gathered.results,
		Web:       gathered.web,
	})
	if err != nil {
		return Response{}, fmt.Errorf("assemble prompt: %w", err)
	}

	start := time.Now()
	gen, err := s.generator.Generate(ctx, pr.Prompt, pr.Config)
	if err != nil {
		metrics.GenerationDuration.WithLabelValues(string(req.Mode), "error").Observe(time.Since(start).Seconds())
		return Response{}, fmt.Errorf("generate: %w", err)
	}
	metrics.GenerationDuration.WithLabelValues(string(req.Mode), "ok").Observe(time.Since(start).Seconds())
	domain.UsageFromContext(ctx).AddGenerationTokens(gen.PromptTokens + gen.CompletionTokens)

	return Response{
		Text:          prompt.FormatResponse(gen.Text),
		Mode:          req.Mode,
		ResponseField: cfg.ResponseField,
		UsedRAG:       len(gathered.results) > 0,
		Degraded:      gathered.degraded,
		Sources:       sources(gathered.results),
		WebSources:    gathered.web,
	}, nil
}

type gatheredContext struct {
	results  []result.Result
	web      []domain.WebResult
	degraded bool
}

// gather runs retrieval and web search concurrently. Web search failures degrade;
// retrieval failures degrade unless the retriever is configured to return them.
func (s *Service) gather(ctx context.Context, req Request, cfg mode.Config) (gatheredContext, error) {
	var (
		out         gatheredContext
		webDegraded bool
	)
	g, gctx := errgroup.WithContext(ctx)

	if req.UseRAG && cfg.UseRetrieval {
		g.Go(func() error {
			r, err := s.retriever.Retrieve(gctx, req.Message, req.Mode)
			if err != nil {
				return fmt.Errorf("retrieve: %w", err)
			}
			out.results = r.Results
			out.degraded = r.Degraded
			return nil
		})
	}

	if cfg.UseWebSearch && s.web != nil {
		g.Go(func() error {
			res, err := s.web.Search(gctx, req.Message)
			if err != nil {
				metrics.RetrievalDegradedTotal.WithLabelValues(string(req.Mode), "web").Inc()
				logpkg.FromContextOr(gctx, s.logger).Warn("web search degraded to no results",
					zap.String("mode", string(req.Mode)),
					zap.Error(err),
				)
				webDegraded = true
				return nil
			}
			out.web = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return gatheredContext{}, err
	}
	out.degraded = out.degraded || webDegraded
	return out, nil
}

func sources(results []result.Result) []Source {
	out := make([]Source, len(results))
	for i, r := range results {
		out[i] = Source{
			DocumentID: r.Chunk.DocumentID,
			Filename:   r.Chunk.Source,
			Ordinal:    r.Chunk.Ordinal,
			Score:      r.Score,
		}
	}
	return out
}
