package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores embedding vectors so repeated inputs skip the embedding API.
type Cache interface {
	// GetVector retrieves a cached vector by key.
	// Returns nil if not found.
	GetVector(ctx context.Context, key string) ([]float32, error)

	// SetVector stores a vector with TTL
	SetVector(ctx context.Context, key string, vec []float32, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// Key derives a stable cache key from the embedding model and input text.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return hex.EncodeToString(sum[:])
}
