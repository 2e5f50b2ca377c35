package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/core/ports/driving"
	"github.com/membox-labs/membox-cli/internal/formatters"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// DefaultResultsPerCollection bounds hits requested from each source.
const DefaultResultsPerCollection = 3

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService is the retrieval aggregator: it fans a question out
// across the selected collections, fuses the per-collection hits into a
// provenance-tagged context and hands it to the synthesizer.
type AnswerService struct {
	store    driven.VectorStore
	embedder driven.Embedder
	registry *CollectionRegistry
	synth    *Synthesizer
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	store driven.VectorStore,
	embedder driven.Embedder,
	registry *CollectionRegistry,
	synth *Synthesizer,
) *AnswerService {
	return &AnswerService{
		store:    store,
		embedder: embedder,
		registry: registry,
		synth:    synth,
	}
}

// Ask answers a question from the indexed collections.
func (s *AnswerService) Ask(
	ctx context.Context, question string, sources []string, perCollection int,
) (*domain.Answer, error) {
	logger.Section("Query Execution")
	logger.Debug("Question: %q, sources: %v", question, sources)

	if perCollection <= 0 {
		perCollection = DefaultResultsPerCollection
	}

	// The question is embedded exactly once and the vector reused for
	// every fan-out query.
	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %w", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Debug("Question embedding: %d dimensions", len(embedding))

	collections, err := s.registry.Resolve(ctx, sources)
	if err != nil {
		return nil, err
	}
	logger.Info("Querying %d collections: %v", len(collections), collections)

	fused := s.fanOut(ctx, question, embedding, collections, perCollection)

	if fused.Empty() {
		logger.Info("No context retrieved from any collection")
		return &domain.Answer{Text: domain.NoInformationMessage, Found: false}, nil
	}

	text, err := s.synth.Synthesize(ctx, question, fused.Render())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	return &domain.Answer{Text: text, Sources: fused.Citations, Found: true}, nil
}

// fanOut issues one hybrid query per collection, concurrently. Each
// query is independent and fault-isolated: a failing collection yields
// empty hits and a warning, never an aborted fan-out. Hit order is
// collection iteration order, then rank within the collection.
func (s *AnswerService) fanOut(
	ctx context.Context, question string, embedding []float32, collections []string, k int,
) *domain.FusedContext {
	hitsByCollection := make([][]domain.Hit, len(collections))

	var wg sync.WaitGroup
	for i, name := range collections {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			hits, err := s.store.Query(ctx, name, embedding, question, k)
			if err != nil {
				logger.Warn("Query against %q failed: %v", name, err)
				return
			}
			logger.Debug("Collection %q: %d hits", name, len(hits))
			hitsByCollection[i] = hits
		}(i, name)
	}
	wg.Wait()

	return fuse(hitsByCollection)
}

// fuse builds the context blocks and deduplicated citations from the
// ordered per-collection hits. No global re-ranking across sources.
func fuse(hitsByCollection [][]domain.Hit) *domain.FusedContext {
	fused := &domain.FusedContext{}
	seen := make(map[string]bool)

	for _, hits := range hitsByCollection {
		for i := range hits {
			f := formatters.ForHit(hits[i])
			fused.Blocks = append(fused.Blocks, f.ContextBlock(hits[i]))

			citation := f.Citation(hits[i])
			if !seen[citation] {
				seen[citation] = true
				fused.Citations = append(fused.Citations, citation)
			}
		}
	}

	return fused
}
