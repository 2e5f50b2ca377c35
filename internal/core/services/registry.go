package services

import (
	"context"
	"fmt"

	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Default collection names, one per source type. Collections are created
// lazily on first ingest and persist across runs.
const (
	CollectionGitHub = "github_knowledge"
	CollectionDrive  = "drive_documents_knowledge"
	CollectionSlack  = "slack_messages_knowledge"
	CollectionTeams  = "teams_chat_knowledge"
	CollectionJira   = "jira_tickets_knowledge"

	// CollectionGeneric holds documents ingested from local exports of
	// unrecognised shape.
	CollectionGeneric = "generic_knowledge"
)

// shortNames maps user-facing source abbreviations to collection names.
var shortNames = map[string]string{
	"github":  CollectionGitHub,
	"drive":   CollectionDrive,
	"slack":   CollectionSlack,
	"teams":   CollectionTeams,
	"jira":    CollectionJira,
	"generic": CollectionGeneric,
}

// CollectionRegistry resolves user-specified source names into concrete
// vector-store collections. It holds no state of its own: every
// resolution reads the store's live catalog.
type CollectionRegistry struct {
	store driven.VectorStore
}

// NewCollectionRegistry creates a registry backed by the given store.
func NewCollectionRegistry(store driven.VectorStore) *CollectionRegistry {
	return &CollectionRegistry{store: store}
}

// List returns the names of all registered collections.
func (r *CollectionRegistry) List(ctx context.Context) ([]string, error) {
	names, err := r.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

// Resolve maps selected source names to existing collection names.
// An empty selection resolves to every registered collection. Entries
// may be short names ("jira") or exact collection names; unrecognised
// names are warned about and skipped, never fatal. Known sources whose
// collection has not been ingested yet are skipped the same way.
func (r *CollectionRegistry) Resolve(ctx context.Context, selected []string) ([]string, error) {
	registered, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return registered, nil
	}

	existing := make(map[string]bool, len(registered))
	for _, name := range registered {
		existing[name] = true
	}

	resolved := make([]string, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, sel := range selected {
		name, ok := shortNames[sel]
		if !ok {
			if existing[sel] {
				// Exact collection name is accepted as-is.
				name = sel
			} else {
				logger.Warn("Unrecognised source %q, skipping", sel)
				continue
			}
		}
		if !existing[name] {
			logger.Warn("Source %q has no indexed collection yet, skipping", sel)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		resolved = append(resolved, name)
	}

	return resolved, nil
}
