package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrag/internal/chunker"
	"github.com/kailas-cloud/docrag/internal/config"
	"github.com/kailas-cloud/docrag/internal/db"
	"github.com/kailas-cloud/docrag/internal/db/memory"
	dbRedis "github.com/kailas-cloud/docrag/internal/db/redis"
	"github.com/kailas-cloud/docrag/internal/domain"
	"github.com/kailas-cloud/docrag/internal/extract"
	"github.com/kailas-cloud/docrag/internal/lock"
	logpkg "github.com/kailas-cloud/docrag/internal/logger"
	"github.com/kailas-cloud/docrag/internal/metrics"
	documentrepo "github.com/kailas-cloud/docrag/internal/repository/document"
	"github.com/kailas-cloud/docrag/internal/repository/embcache"
	jobrepo "github.com/kailas-cloud/docrag/internal/repository/job"
	"github.com/kailas-cloud/docrag/internal/repository/vector"
	chiTransport "github.com/kailas-cloud/docrag/internal/transport/chi"
	"github.com/kailas-cloud/docrag/internal/transport/local"
	openaiTransport "github.com/kailas-cloud/docrag/internal/transport/openai"
	"github.com/kailas-cloud/docrag/internal/transport/websearch"
	chatuc "github.com/kailas-cloud/docrag/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/docrag/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/docrag/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docrag/internal/usecase/health"
	"github.com/kailas-cloud/docrag/internal/usecase/ingest"
	"github.com/kailas-cloud/docrag/internal/usecase/prompt"
	"github.com/kailas-cloud/docrag/internal/usecase/retrieval"
	"github.com/kailas-cloud/docrag/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("generation_model", cfg.Generation.Model),
		zap.String("websearch_provider", cfg.WebSearch.Provider),
	)

	store, err := newCacheStore(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Cache store ready", zap.String("driver", cfg.Cache.Driver))

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	// Embedder chain: provider -> cache -> instrumented -> instruction
	base, dims := buildProvider(cfg, logger)
	var cached domain.Embedder = base
	if cfg.Embedding.Cache.Enabled {
		cached = embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger).
			WithTTL(time.Duration(cfg.Cache.TTLHours) * time.Hour)
	}
	instrumented := embeddinguc.NewInstrumentedEmbedder(
		cached, cfg.Embedding.Provider, cfg.Embedding.Model, dims, logger,
	).WithBatchSize(cfg.Embedding.BatchSize)
	docEmbedder := domain.NewInstructionEmbedder(instrumented, cfg.Embedding.DocumentInstruction)
	queryEmbedder := domain.NewInstructionEmbedder(instrumented, cfg.Embedding.QueryInstruction)

	genProv := cfg.Providers[cfg.Generation.Provider]
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  genProv.APIKey,
		BaseURL: genProv.BaseURL,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	var web domain.WebSearcher
	if cfg.WebSearch.Provider == "tavily" {
		web = websearch.NewClient(&websearch.Config{
			APIKey:            cfg.WebSearch.APIKey,
			BaseURL:           cfg.WebSearch.BaseURL,
			MaxResults:        cfg.WebSearch.MaxResults,
			RequestsPerSecond: cfg.WebSearch.RequestsPerSecond,
			Timeout:           time.Duration(cfg.WebSearch.TimeoutSec) * time.Second,
			Logger:            logger,
		})
	}

	// Repositories
	vectors := vector.New()
	jobs := jobrepo.New()
	docs := documentrepo.New()
	locks := lock.NewKeyed()

	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		logger.Fatal("Invalid chunking configuration", zap.Error(err))
	}
	extractors := extract.NewRegistry(extract.Config{
		OCRCommand:  cfg.Extract.OCRCommand,
		OCRLanguage: cfg.Extract.OCRLanguage,
	})

	// Use case services
	ingestSvc := ingest.New(extractors, ch, docEmbedder, vectors, jobs, docs, locks, cfg.Upload.Dir, logger).
		WithConcurrency(cfg.Ingestion.Concurrency).
		WithMaxBytes(cfg.Upload.MaxBytes)
	retrievalSvc := retrieval.New(queryEmbedder, vectors, logger).
		WithDegradeOnError(*cfg.Retrieval.DegradeOnError)
	chatSvc := chatuc.New(retrievalSvc, web, prompt.NewAssembler(cfg.Retrieval.HistoryTurns), generator, logger)
	docSvc := documentuc.New(docs, vectors, locks, logger)
	healthSvc := healthuc.New(store, vectors).
		WithEmbedding(instrumented).
		WithGeneration(generator)

	server := chiTransport.NewServer(ingestSvc, chatSvc, retrievalSvc, docSvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	// Running jobs are cancelled and recorded as failed.
	if err := ingestSvc.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ingestion did not drain", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newCacheStore picks the key-value store backing the embedding cache.
func newCacheStore(cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewStore(), nil
	case "redis", "valkey":
		// Valkey speaks the Redis protocol; both go through rueidis.
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			Standalone: cfg.Standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q: %w", cfg.Driver, domain.ErrInvalidConfiguration)
	}
}

// buildProvider returns the base embedding provider and its expected dimensions
// (0 when the provider decides).
func buildProvider(cfg config.Config, logger *zap.Logger) (domain.Embedder, int) {
	if cfg.Embedding.Provider == "local" {
		dims := cfg.Embedding.Dimensions
		if dims <= 0 {
			dims = local.DefaultDimensions
		}
		return local.NewEmbedder(dims), dims
	}

	prov := cfg.Providers[cfg.Embedding.Provider]
	return openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     prov.APIKey,
		BaseURL:    prov.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	}), cfg.Embedding.Dimensions
}
