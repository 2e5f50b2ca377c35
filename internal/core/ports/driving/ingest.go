package driving

import (
	"context"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
)

// IngestJob pairs a connector with its target collection and fetch bounds.
type IngestJob struct {
	Connector  driven.Connector
	Collection string
	Params     driven.FetchParams
}

// IngestReport is the per-connector outcome of a batch ingestion.
// A failed connector reports zero items and a non-nil Err; it never
// aborts the other jobs in the batch.
type IngestReport struct {
	Source     domain.SourceTag
	Collection string
	Items      int
	Err        error
}

// Ingestor drives connectors end-to-end and writes their documents into
// vector-store collections.
type Ingestor interface {
	// Ingest runs one connector and upserts its documents into the
	// named collection. Returns the number of entries written; on any
	// failure the count is zero and no partial writes have occurred.
	Ingest(ctx context.Context, c driven.Connector, collection string, params driven.FetchParams) (int, error)

	// IngestAll runs a batch of jobs with per-connector fault isolation.
	IngestAll(ctx context.Context, jobs []IngestJob) []IngestReport
}
