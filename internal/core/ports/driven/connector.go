package driven

import (
	"context"
	"fmt"

	"github.com/membox-labs/membox-cli/internal/core/domain"
)

// RawRecord is an opaque source record as fetched from an external API,
// before normalisation. Its keys are connector-specific.
type RawRecord map[string]any

// FetchParams bounds a single logical fetch. Source-specific scoping
// (repositories, channels, folders) is connector configuration, not a
// fetch parameter: each connector keeps its own quirks internal.
type FetchParams struct {
	// MaxItems caps how many records a fetch returns, regardless of the
	// API's per-page limits. Connectors paginate internally to honour it.
	// Zero means the connector's default.
	MaxItems int
}

// Connector fetches records from one external source and normalises them
// into canonical Documents. One implementation per source type.
type Connector interface {
	// Source returns the tag for documents this connector produces.
	Source() domain.SourceTag

	// Authenticate establishes identity with the source. It returns
	// false for recoverable authentication problems (bad token, API
	// rejection) and an error only for hard failures such as a missing
	// required credential file.
	Authenticate(ctx context.Context) (bool, error)

	// Fetch retrieves raw records from the source, paginating internally
	// up to params.MaxItems. Requires a prior successful Authenticate.
	Fetch(ctx context.Context, params FetchParams) ([]RawRecord, error)

	// Normalize converts raw records into canonical Documents. It is a
	// pure transform and never fails: a record that cannot be decoded
	// gets a placeholder body instead of aborting the batch.
	Normalize(records []RawRecord) []domain.Document
}

// Run drives a connector end-to-end: authenticate, fetch, normalise.
// This is the only entry point the ingestion pipeline uses.
func Run(ctx context.Context, c Connector, params FetchParams) ([]domain.Document, error) {
	ok, err := c.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrAuthFailed, c.Source(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthFailed, c.Source())
	}

	records, err := c.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.Source(), err)
	}

	return c.Normalize(records), nil
}
