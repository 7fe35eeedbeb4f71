package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"tixy/internal/cache"
	"tixy/internal/config"
	"tixy/internal/embeddings"
	"tixy/internal/events"
	"tixy/internal/llm"
	"tixy/internal/logger"
	"tixy/internal/notify"
	"tixy/internal/secrets"
	"tixy/internal/vectorstore"
)

// Deps bundles the runtime dependencies for the webhook service. Built
// once at startup; read-only afterwards.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Store     vectorstore.Store
	Embedder  embeddings.Embedder
	Validator llm.Client
	Notifier  notify.Notifier
	Events    events.Publisher
	Cache     cache.Cache
}

// Build loads env, resolves every required credential, provisions the
// vector indexes, and wires the clients. Any failure is fatal: the
// process must not serve traffic with a partial dependency set.
func Build(ctx context.Context) (Deps, error) {
	// A missing .env file is fine outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	provider, err := buildSecrets(cfg)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize secret provider: %w", err)
	}
	openAIKey, err := provider.Get(ctx, cfg.OpenAIKeySecret)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to resolve OpenAI key: %w", err)
	}
	pineconeKey, err := provider.Get(ctx, cfg.PineconeKeySecret)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to resolve Pinecone key: %w", err)
	}
	pineconeRegion, err := provider.Get(ctx, cfg.PineconeEnvSecret)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to resolve Pinecone environment: %w", err)
	}
	manyChatToken, err := provider.Get(ctx, cfg.ManyChatTokenSecret)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to resolve ManyChat token: %w", err)
	}

	store, err := vectorstore.NewPinecone(pineconeKey, cfg.PineconeCloud, pineconeRegion, cfg.EmbeddingDim, cfg.HTTPTimeout)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	for _, index := range []string{cfg.OrganizerIndex, cfg.EventIndex} {
		if err := store.EnsureIndex(ctx, index); err != nil {
			return Deps{}, fmt.Errorf("failed to ensure index %s: %w", index, err)
		}
	}
	log.Info("vector indexes ready", "organizers", cfg.OrganizerIndex, "events", cfg.EventIndex)

	c := buildCache(cfg, log)

	embedder, err := buildEmbedder(cfg, log, openAIKey, c)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	validator, err := buildLLM(cfg, log, openAIKey)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	notifier, err := notify.NewManyChat(manyChatToken, cfg.ManyChatBaseURL, cfg.HTTPTimeout, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize notifier: %w", err)
	}

	publisher, err := buildEvents(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	return Deps{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Embedder:  embedder,
		Validator: validator,
		Notifier:  notifier,
		Events:    publisher,
		Cache:     c,
	}, nil
}

// Close releases held connections; safe to call once at shutdown.
func (d Deps) Close() {
	if d.Events != nil {
		d.Events.Close()
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Log.Warn("cache close failed", "err", err)
		}
	}
}

func buildSecrets(cfg config.Config) (secrets.Provider, error) {
	switch cfg.SecretsProvider {
	case "env":
		return secrets.NewEnvProvider(), nil
	case "awssm":
		return secrets.NewSecretsManagerProvider(cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("invalid SECRETS_PROVIDER: %s (valid options: env, awssm)", cfg.SecretsProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheProvider != "redis" {
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		// Caching is an optimization; fall back rather than refuse to start.
		log.Warn("redis unavailable, embedding cache disabled", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis embedding cache", "addr", cfg.RedisAddr)
	return c
}

func buildEmbedder(cfg config.Config, log *slog.Logger, apiKey string, c cache.Cache) (embeddings.Embedder, error) {
	switch cfg.LLMProvider {
	case "openai":
		embedder, err := embeddings.NewOpenAIEmbedder(apiKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embeddings.NewCachedEmbedder(embedder, c, cfg.EmbeddingModel, log), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

func buildLLM(cfg config.Config, log *slog.Logger, apiKey string) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := llm.NewOpenAIClient(apiKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "none":
		return events.NewNoOpPublisher(), nil
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when EVENTS_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS event publisher")
		return events.NewNATS(nc), nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}
