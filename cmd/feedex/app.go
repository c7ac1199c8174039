package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/config"
	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	dbRedis "github.com/kailas-cloud/feedex/internal/db/redis"
	"github.com/kailas-cloud/feedex/internal/metrics"
	criticalrepo "github.com/kailas-cloud/feedex/internal/repository/critical"
	"github.com/kailas-cloud/feedex/internal/repository/embcache"
	feedbackrepo "github.com/kailas-cloud/feedex/internal/repository/feedback"
	"github.com/kailas-cloud/feedex/internal/repository/feedbacksql"
	journalrepo "github.com/kailas-cloud/feedex/internal/repository/journal"
	vectorrepo "github.com/kailas-cloud/feedex/internal/repository/vector"
	chiTransport "github.com/kailas-cloud/feedex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/feedex/internal/transport/openai"
	analysisuc "github.com/kailas-cloud/feedex/internal/usecase/analysis"
	analyticsuc "github.com/kailas-cloud/feedex/internal/usecase/analytics"
	classifyuc "github.com/kailas-cloud/feedex/internal/usecase/classify"
	embeddinguc "github.com/kailas-cloud/feedex/internal/usecase/embedding"
	feedbackuc "github.com/kailas-cloud/feedex/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/feedex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/feedex/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/feedex/internal/usecase/search"
	"github.com/kailas-cloud/feedex/internal/usecase/vectorindex"
)

// feedbackStore is what both structured store drivers provide.
type feedbackStore interface {
	EnsureIndex(ctx context.Context) error
	Create(ctx context.Context, it domfb.Item) (domfb.Item, error)
	Get(ctx context.Context, id int64) (domfb.Item, error)
	List(ctx context.Context, f domfb.Filter) (domfb.Page, error)
	Unprocessed(ctx context.Context, limit int) ([]domfb.Item, error)
	After(ctx context.Context, afterID int64, limit int) ([]domfb.Item, error)
	SaveClassification(ctx context.Context, id int64, r classification.Result) error
	Replace(ctx context.Context, items []domfb.Item) ([]domfb.Item, error)
}

// app is the composition root shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	feedback  *feedbackuc.Service
	classify  *classifyuc.Service
	analysis  *analysisuc.Service
	indexing  *indexinguc.Service
	search    *searchuc.Service
	analytics *analyticsuc.Service
	health    *healthuc.Service

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) services() chiTransport.Services {
	return chiTransport.Services{
		Feedback:  a.feedback,
		Classify:  a.classify,
		Analysis:  a.analysis,
		Indexing:  a.indexing,
		Search:    a.search,
		Analytics: a.analytics,
		Health:    a.health,
	}
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	rdb, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	a.closers = append(a.closers, rdb.Close)

	if err := rdb.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	metrics.Register()

	a.health = healthuc.New(rdb)

	var items feedbackStore
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		sq, err := feedbacksql.Open(cfg.Store.SQLitePath)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = sq.Close() })
		a.health = a.health.WithStore(sq)
		items = sq
	default:
		items = feedbackrepo.New(rdb)
	}

	vectors := vectorrepo.New(rdb, cfg.Embedding.Dimensions, vectorrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := items.EnsureIndex(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure feedback index: %w", err)
	}
	if err := vectors.EnsureIndex(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure vector index: %w", err)
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	docGen := embeddinguc.NewGenerator(
		buildEmbedder(embedder, cfg.Embedding, cfg.Embedding.DocumentInstruction, rdb, logger),
		cfg.Embedding.Dimensions,
	)
	queryGen := embeddinguc.NewGenerator(
		buildEmbedder(embedder, cfg.Embedding, cfg.Embedding.QueryInstruction, rdb, logger),
		cfg.Embedding.Dimensions,
	)

	var completer classifyuc.Completer
	var inference *openaiTransport.Completer
	if cfg.Inference.Enabled {
		inference = openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:  cfg.Inference.APIKey,
			BaseURL: cfg.Inference.BaseURL,
			Model:   cfg.Inference.Model,
			Logger:  logger,
		})
		completer = inference
	}
	a.classify = classifyuc.New(completer, logger).
		WithSampling(cfg.Inference.Temperature, cfg.Inference.MaxTokens)

	index := vectorindex.New(docGen, vectors, cfg.Index.ChunkSize, logger)
	flags := criticalrepo.New(rdb)

	a.analytics = analyticsuc.New(items, rdb, time.Duration(cfg.Cache.AnalyticsTTLSec)*time.Second, logger)
	a.feedback = feedbackuc.New(items, flags, a.analytics, logger)
	a.analysis = analysisuc.New(items, a.classify, index, a.analytics, logger,
		analysisuc.WithBatchSize(cfg.Analysis.BatchSize),
		analysisuc.WithJournal(journalrepo.New(rdb, time.Duration(cfg.Analysis.JournalTTLSec)*time.Second)),
		analysisuc.WithCriticalFlags(flags),
	)
	a.indexing = indexinguc.New(items, index, indexinguc.DefaultPageSize, logger)
	a.search = searchuc.New(queryGen, index, items, logger)

	a.health = a.health.WithEmbedding(embedder)
	if inference != nil {
		a.health = a.health.WithInference(inference)
	}
	return a, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// The instruction is outermost so the cache key includes it.
func buildEmbedder(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	instruction string,
	rdb *dbRedis.Store,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cfg.CacheEnabled {
		embedder = embcache.New(embedder, rdb, cfg.Model,
			time.Duration(cfg.CacheTTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Model, logger)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}
