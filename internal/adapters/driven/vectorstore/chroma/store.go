// Package chroma provides a VectorStore adapter for the Chroma REST
// API. The adapter owns document embedding at upsert time so the
// service layer never sees raw vectors for stored entries.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Chroma store.
type Config struct {
	// BaseURL is the Chroma server URL (default: http://localhost:8000).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Store talks to a Chroma server over its REST API. Collection names
// are resolved to server-side IDs once and cached for the lifetime of
// the store.
type Store struct {
	client   *http.Client
	baseURL  string
	embedder driven.Embedder

	mu  sync.Mutex
	ids map[string]string // collection name -> server id
}

// New creates a Chroma store. The embedder is used to embed document
// batches at upsert.
func New(cfg Config, embedder driven.Embedder) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		embedder: embedder,
		ids:      make(map[string]string),
	}
}

// collectionInfo is the Chroma collection representation.
type collectionInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EnsureCollection creates the collection if it does not exist yet.
// Creation is idempotent via get_or_create.
func (s *Store) EnsureCollection(ctx context.Context, name string) error {
	_, err := s.collectionID(ctx, name)
	return err
}

// collectionID resolves a collection name to its server ID, creating
// the collection on first use.
func (s *Store) collectionID(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	if id, ok := s.ids[name]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	var info collectionInfo
	err := s.post(ctx, "/api/v1/collections", map[string]any{
		"name":          name,
		"get_or_create": true,
	}, &info)
	if err != nil {
		return "", fmt.Errorf("%w: ensure collection %q: %w", domain.ErrStoreUnavailable, name, err)
	}

	s.mu.Lock()
	s.ids[name] = info.ID
	s.mu.Unlock()
	return info.ID, nil
}

// Upsert writes a batch of entries, embedding their texts first.
// Entries with existing IDs are overwritten. Empty batches are the
// caller's problem: the pipeline never sends them.
func (s *Store) Upsert(ctx context.Context, collection string, entries []driven.Entry) error {
	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	texts := make([]string, len(entries))
	ids := make([]string, len(entries))
	metadatas := make([]map[string]any, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
		ids[i] = e.ID
		metadatas[i] = e.Metadata
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	err = s.post(ctx, fmt.Sprintf("/api/v1/collections/%s/upsert", id), map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  texts,
		"metadatas":  metadatas,
	}, nil)
	if err != nil {
		return fmt.Errorf("%w: upsert into %q: %w", domain.ErrStoreUnavailable, collection, err)
	}
	return nil
}

// queryResponse is the Chroma query result shape: one inner slice per
// query; we always send exactly one query.
type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
}

// Query runs one hybrid query (embedding plus raw text) against a
// collection and returns up to k hits in rank order.
func (s *Store) Query(
	ctx context.Context, collection string, embedding []float32, text string, k int,
) ([]domain.Hit, error) {
	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	var result queryResponse
	err = s.post(ctx, fmt.Sprintf("/api/v1/collections/%s/query", id), map[string]any{
		"query_embeddings": [][]float32{embedding},
		"query_texts":      []string{text},
		"n_results":        k,
		"include":          []string{"documents", "metadatas"},
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %w", domain.ErrStoreUnavailable, collection, err)
	}

	if len(result.IDs) == 0 {
		return nil, nil
	}

	hits := make([]domain.Hit, 0, len(result.IDs[0]))
	for i, hitID := range result.IDs[0] {
		hit := domain.Hit{ID: hitID, Collection: collection}
		if len(result.Documents) > 0 && i < len(result.Documents[0]) {
			hit.Text = result.Documents[0][i]
		}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			hit.Metadata = result.Metadatas[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// ListCollections returns the names of all collections on the server.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v1/collections", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %w", domain.ErrStoreUnavailable, err)
	}

	var infos []collectionInfo
	if err := json.Unmarshal(body, &infos); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

// Close releases resources. The embedder is not owned by the store.
func (s *Store) Close() error {
	return nil
}

// post sends a JSON POST and optionally decodes the response into out.
func (s *Store) post(ctx context.Context, path string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := s.do(req)
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// do executes a request and returns the response body, treating any
// non-2xx status as an error.
func (s *Store) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
