package embeddings

import (
	"context"
	"log/slog"
	"time"

	"tixy/internal/cache"
)

const defaultCacheTTL = 24 * time.Hour

// CachedEmbedder consults a vector cache before hitting the embedding API.
// Cache failures fall through to the live call; they are never surfaced.
type CachedEmbedder struct {
	next  Embedder
	cache cache.Cache
	model string
	log   *slog.Logger
}

// NewCachedEmbedder wraps next with a cache keyed by model+text.
func NewCachedEmbedder(next Embedder, c cache.Cache, model string, log *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: c, model: model, log: log}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(e.model, text)

	if vec, err := e.cache.GetVector(ctx, key); err != nil {
		e.log.Warn("embedding cache read failed", "err", err)
	} else if vec != nil {
		return vec, nil
	}

	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.cache.SetVector(ctx, key, vec, defaultCacheTTL); err != nil {
		e.log.Warn("embedding cache write failed", "err", err)
	}
	return vec, nil
}
