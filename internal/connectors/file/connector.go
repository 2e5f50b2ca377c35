// Package file implements a source connector that reads a JSON array
// export from disk. It lets Teams or Jira exports (or any pre-fetched
// dump) be ingested without live credentials, under a caller-chosen
// source tag.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Config holds the file connector configuration.
type Config struct {
	// Path is the JSON export to read (required). The file must contain
	// a JSON array of objects.
	Path string

	// Source tags the resulting documents. Defaults to generic.
	Source domain.SourceTag
}

// Connector reads records from a local JSON export.
type Connector struct {
	cfg Config
}

// New creates a file connector.
func New(cfg Config) *Connector {
	if cfg.Source == "" {
		cfg.Source = domain.SourceGeneric
	}
	return &Connector{cfg: cfg}
}

// Source returns the configured source tag.
func (c *Connector) Source() domain.SourceTag {
	return c.cfg.Source
}

// Authenticate checks that the export file exists and is readable.
// A missing file is recoverable: the source is simply not available.
func (c *Connector) Authenticate(_ context.Context) (bool, error) {
	if c.cfg.Path == "" {
		logger.Warn("No export file configured")
		return false, nil
	}
	if _, err := os.Stat(c.cfg.Path); err != nil {
		logger.Warn("Export file unavailable: %v", err)
		return false, nil
	}
	return true, nil
}

// Fetch reads and decodes the JSON array.
func (c *Connector) Fetch(_ context.Context, params driven.FetchParams) ([]driven.RawRecord, error) {
	data, err := os.ReadFile(c.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", c.cfg.Path, err)
	}

	var records []driven.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode export %s: %w", c.cfg.Path, err)
	}

	if params.MaxItems > 0 && len(records) > params.MaxItems {
		records = records[:params.MaxItems]
	}
	return records, nil
}

// bodyKeys lists record keys tried, in order, for the document body.
var bodyKeys = []string{"message", "content", "text", "body"}

// Normalize maps export records onto canonical documents by their
// common field names. Records without an id get a generated one so
// re-ingesting the same export stays additive rather than crashing.
func (c *Connector) Normalize(records []driven.RawRecord) []domain.Document {
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		doc := domain.Document{
			ID:      stringField(rec, "id"),
			Source:  c.cfg.Source,
			Title:   firstField(rec, "title", "name", "summary"),
			Sender:  firstField(rec, "sender", "from"),
			Owner:   stringField(rec, "owner"),
			Created: firstField(rec, "created", "timestamp", "created_at"),
			Updated: firstField(rec, "updated", "updated_at"),
			Body:    firstField(rec, bodyKeys...),
			Extra:   extraFields(rec),
		}
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		docs = append(docs, doc)
	}
	return docs
}

// consumedKeys are mapped onto Document fields and excluded from Extra.
var consumedKeys = map[string]bool{
	"id": true, "title": true, "name": true, "summary": true,
	"sender": true, "from": true, "owner": true,
	"created": true, "timestamp": true, "created_at": true,
	"updated": true, "updated_at": true,
	"message": true, "content": true, "text": true, "body": true,
	"source": true,
}

// extraFields collects the scalar leftovers of a record. The summary
// field is kept in Extra too: the jira formatter cites by it.
func extraFields(rec driven.RawRecord) map[string]any {
	extra := make(map[string]any)
	for k, v := range rec {
		if consumedKeys[k] && k != "summary" {
			continue
		}
		if domain.IsScalar(v) {
			extra[k] = v
		}
	}
	return extra
}

// firstField returns the first non-empty string among the given keys.
func firstField(rec driven.RawRecord, keys ...string) string {
	for _, key := range keys {
		if v := stringField(rec, key); v != "" {
			return v
		}
	}
	return ""
}

// stringField reads a raw record value as a string.
func stringField(rec driven.RawRecord, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}
