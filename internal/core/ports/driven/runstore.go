package driven

import (
	"context"
	"time"

	"github.com/membox-labs/membox-cli/internal/core/domain"
)

// IngestRun records one connector ingestion attempt.
type IngestRun struct {
	// ID is the run identifier.
	ID string

	// Source is the connector's source tag.
	Source domain.SourceTag

	// Collection is the target collection name.
	Collection string

	// Items is the number of entries written (0 on failure).
	Items int

	// Error is the failure description, empty on success.
	Error string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// IngestRunStore persists ingestion history for reporting.
type IngestRunStore interface {
	// Record saves a completed run.
	Record(ctx context.Context, run IngestRun) error

	// Recent returns the most recent runs, newest first.
	Recent(ctx context.Context, limit int) ([]IngestRun, error)

	// Close releases resources.
	Close() error
}
