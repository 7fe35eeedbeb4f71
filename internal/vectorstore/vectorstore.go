package vectorstore

import "context"

// Record is a single entry in a vector index: caller-chosen id, the
// embedding values, and an arbitrary metadata payload.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// Store defines the vector-index contract; the managed service owns the data.
type Store interface {
	// EnsureIndex verifies the named index exists and creates it if absent.
	// Idempotent and safe to run on every startup.
	EnsureIndex(ctx context.Context, name string) error

	// Fetch returns the record at id, or (nil, nil) when absent. A non-nil
	// error means transport or service failure, never "not found".
	Fetch(ctx context.Context, index, id string) (*Record, error)

	// Upsert inserts or replaces the record at rec.ID.
	Upsert(ctx context.Context, index string, rec Record) error
}
