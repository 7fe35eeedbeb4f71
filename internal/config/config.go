package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds minimal runtime configuration. Extend as needed.
type Config struct {
	// Server
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Secrets
	SecretsProvider string `env:"SECRETS_PROVIDER" envDefault:"env"` // "env" (local development) or "awssm" (AWS Secrets Manager)
	AWSRegion       string `env:"AWS_REGION" envDefault:"us-west-2"`

	// Names of the credentials resolved through the secret provider at startup.
	OpenAIKeySecret     string `env:"OPENAI_KEY_SECRET" envDefault:"OPENAI_ORGANIZER_EVENTS_EMBEDDINGS"`
	PineconeKeySecret   string `env:"PINECONE_KEY_SECRET" envDefault:"PINECONE_API_KEY"`
	PineconeEnvSecret   string `env:"PINECONE_ENV_SECRET" envDefault:"PINECONE_ENV"`
	ManyChatTokenSecret string `env:"MANYCHAT_TOKEN_SECRET" envDefault:"MANYCHAT_API_TOKEN"`

	// Vector store
	OrganizerIndex string        `env:"ORGANIZER_INDEX" envDefault:"tixy-organizers"`
	EventIndex     string        `env:"EVENT_INDEX" envDefault:"tixy-events"`
	PineconeCloud  string        `env:"PINECONE_CLOUD" envDefault:"aws"`
	EmbeddingDim   int           `env:"EMBEDDING_DIM" envDefault:"1536"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	// LLM & Embeddings
	LLMProvider    string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" (uses OpenAI API) or "stub" (for testing)
	LLMModel       string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`

	// ManyChat
	ManyChatBaseURL      string `env:"MANYCHAT_BASE_URL" envDefault:"https://api.manychat.com"`
	RegisteredTemplateID string `env:"REGISTERED_TEMPLATE_ID" envDefault:"content20240917151147_157784"`
	DuplicateTemplateID  string `env:"DUPLICATE_TEMPLATE_ID" envDefault:"content20240917152105_198581"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Domain events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	NATSURL        string `env:"NATS_URL"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
