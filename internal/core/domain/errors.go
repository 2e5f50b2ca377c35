package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrAuthFailed indicates a connector could not establish identity.
	// Fatal to that connector's run, never to a multi-connector batch.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrCredentialsMissing indicates a required credential file or
	// environment variable is absent. The connector is disabled, not broken.
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrNotAuthenticated indicates fetch was called before a successful
	// authenticate.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStoreUnavailable indicates the vector store cannot be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the answer synthesis call failed.
	// Always the last step, so nothing depends on partial success.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrNoSources indicates no collection could be resolved for a query.
	ErrNoSources = errors.New("no sources resolved")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
