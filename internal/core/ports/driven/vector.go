package driven

import (
	"context"

	"github.com/membox-labs/membox-cli/internal/core/domain"
)

// Entry is one write-path unit: id, display text and scalar metadata.
// The store owns embedding of the text.
type Entry struct {
	// ID is the entry identifier within its collection. Upserting an
	// existing ID overwrites the previous entry.
	ID string

	// Text is the formatted display text that gets embedded and stored.
	Text string

	// Metadata holds scalar attributes returned with query hits.
	// Values must be string, number or boolean.
	Metadata map[string]any
}

// VectorStore persists embedded entries in named collections and answers
// similarity queries. Collections are created lazily and durable; the
// store is assumed safe for concurrent per-collection access.
type VectorStore interface {
	// EnsureCollection creates the named collection if it does not
	// exist. Idempotent.
	EnsureCollection(ctx context.Context, name string) error

	// Upsert writes a batch of entries into a collection. Entries with
	// existing IDs are overwritten. Callers must not submit empty
	// batches: zero-length operations are an error in the store contract.
	Upsert(ctx context.Context, collection string, entries []Entry) error

	// Query runs a hybrid top-k similarity search against one
	// collection, combining the dense embedding with the raw query text.
	Query(ctx context.Context, collection string, embedding []float32, text string, k int) ([]domain.Hit, error)

	// ListCollections returns the names of all existing collections.
	// Always a live read of the store's catalog, never cached.
	ListCollections(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
