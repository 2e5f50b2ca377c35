package driven

import "context"

// Embedder generates vector embeddings from text.
//
// Determinism across calls is not guaranteed by implementations, but
// stability within a single run is assumed: the aggregator embeds a
// question exactly once and reuses the vector for every fan-out query.
type Embedder interface {
	// Embed generates a fixed-length vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
