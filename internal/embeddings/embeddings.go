package embeddings

import "context"

// Dim is the vector dimensionality all indexes are provisioned for.
const Dim = 1536

// Embedder turns free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
