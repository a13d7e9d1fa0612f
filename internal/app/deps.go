package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"kb-ingest/internal/cache"
	"kb-ingest/internal/config"
	"kb-ingest/internal/embeddings"
	"kb-ingest/internal/llm"
	"kb-ingest/internal/logger"
	"kb-ingest/internal/pipeline"
	"kb-ingest/internal/queue"
	"kb-ingest/internal/store"
)

// Deps bundles common runtime dependencies for services. Services call the
// Build variant matching what they actually need; unused fields stay nil.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Store     store.Store
	Queue     queue.Queue
	Processor *pipeline.Processor
	Embedder  embeddings.Embedder
	LLM       llm.Client
	Cache     cache.Cache
}

// CacheTTL returns the configured query cache TTL.
func (d Deps) CacheTTL() time.Duration {
	return time.Duration(d.Config.CacheTTLSecs) * time.Second
}

// Build loads env, config, store, queue, and the document processor.
// This is the dependency set shared by the gateway, ingest, and batch services.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	proc := pipeline.New(pipeline.Options{
		MaxChunkTokens:   cfg.MaxChunkTokens,
		AllowedFiletypes: cfg.AllowedFiletypes,
		Workers:          cfg.BatchWorkers,
	}, log)
	return Deps{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Queue:     q,
		Processor: proc,
	}, nil
}

// BuildEmbed extends Build with the embedder used by the embed worker.
func BuildEmbed() (Deps, error) {
	deps, err := Build()
	if err != nil {
		return Deps{}, err
	}
	embedder, err := buildEmbedder(deps.Config, deps.Log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	deps.Embedder = embedder
	return deps, nil
}

// BuildQuery assembles the query service's dependencies: store, embedder,
// LLM, and the result cache.
func BuildQuery() (Deps, error) {
	if err := godotenv.Load(); err != nil {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		Store:    st,
		Embedder: embedder,
		LLM:      llmClient,
		Cache:    buildCache(cfg, log),
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

// buildCache falls back to a no-op cache when Redis is unreachable; the
// query service degrades to uncached answers rather than failing startup.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheProvider != "redis" {
		log.Info("query caching disabled")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, running without query cache", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis query cache", "addr", cfg.RedisAddr)
	return c
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
	return client, nil
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
	}
	log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
	return embedder, nil
}
