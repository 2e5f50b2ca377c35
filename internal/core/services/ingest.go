package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/core/ports/driving"
	"github.com/membox-labs/membox-cli/internal/formatters"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService drives connectors end-to-end and writes their documents
// into vector-store collections.
type IngestService struct {
	store driven.VectorStore
	runs  driven.IngestRunStore
}

// NewIngestService creates a new ingestion service.
// The run store is optional (can be nil); without it no history is kept.
func NewIngestService(store driven.VectorStore, runs driven.IngestRunStore) *IngestService {
	return &IngestService{
		store: store,
		runs:  runs,
	}
}

// Ingest runs one connector and upserts its documents into the named
// collection. On any failure the count is zero: the collection is
// ensured before any fetch, and the upsert is a single batch, so a
// failed run leaves no partial writes behind.
func (s *IngestService) Ingest(
	ctx context.Context, c driven.Connector, collection string, params driven.FetchParams,
) (int, error) {
	logger.Section("Ingestion: " + collection)

	// Idempotent: repeated calls for an existing collection are no-ops.
	if err := s.store.EnsureCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("ensure collection %s: %w", collection, err)
	}

	docs, err := driven.Run(ctx, c, params)
	if err != nil {
		return 0, err
	}
	logger.Info("Fetched %d documents from %s", len(docs), c.Source())

	entries := make([]driven.Entry, 0, len(docs))
	for i := range docs {
		doc := docs[i]
		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", collection, i)
		}
		entries = append(entries, driven.Entry{
			ID:       id,
			Text:     formatters.ForSource(doc.Source).Display(doc),
			Metadata: doc.ScalarMetadata(),
		})
	}

	// Zero-length batch operations are an error in the store contract.
	if len(entries) == 0 {
		logger.Info("No documents to store for %s", collection)
		return 0, nil
	}

	if err := s.store.Upsert(ctx, collection, entries); err != nil {
		return 0, fmt.Errorf("upsert %d entries into %s: %w", len(entries), collection, err)
	}

	logger.Info("Indexed %d entries from %s into %q", len(entries), c.Source(), collection)
	return len(entries), nil
}

// IngestAll runs a batch of jobs with per-connector fault isolation:
// a failing connector is reported with zero items and the remaining
// jobs still run. Each run is recorded in the history store.
func (s *IngestService) IngestAll(ctx context.Context, jobs []driving.IngestJob) []driving.IngestReport {
	reports := make([]driving.IngestReport, 0, len(jobs))

	for _, job := range jobs {
		started := time.Now()
		count, err := s.Ingest(ctx, job.Connector, job.Collection, job.Params)
		if err != nil {
			logger.Warn("Ingestion of %s failed: %v", job.Connector.Source(), err)
		}

		reports = append(reports, driving.IngestReport{
			Source:     job.Connector.Source(),
			Collection: job.Collection,
			Items:      count,
			Err:        err,
		})

		s.record(ctx, driven.IngestRun{
			ID:         uuid.NewString(),
			Source:     job.Connector.Source(),
			Collection: job.Collection,
			Items:      count,
			Error:      errString(err),
			StartedAt:  started,
			FinishedAt: time.Now(),
		})
	}

	return reports
}

func (s *IngestService) record(ctx context.Context, run driven.IngestRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Record(ctx, run); err != nil {
		// History is best-effort; never fail an ingest over it.
		logger.Warn("Recording ingest run failed: %v", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
