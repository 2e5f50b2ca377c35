package driving

import (
	"context"

	"github.com/membox-labs/membox-cli/internal/core/domain"
)

// AnswerService answers natural-language questions from the indexed
// collections.
type AnswerService interface {
	// Ask fans the question out across the selected sources, fuses the
	// retrieved context and synthesizes an answer. An empty sources
	// slice means "query all registered collections". perCollection
	// bounds the hits requested from each collection (0 = default).
	//
	// A partial source failure degrades coverage, not the answer; an
	// error is returned only when synthesis itself fails.
	Ask(ctx context.Context, question string, sources []string, perCollection int) (*domain.Answer, error)
}
