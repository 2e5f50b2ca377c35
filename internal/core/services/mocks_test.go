package services

import (
	"context"
	"sync"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	mu          sync.Mutex
	collections []string
	upserts     map[string][]driven.Entry
	hits        map[string][]domain.Hit
	queryErrs   map[string]error
	ensureErr   error
	upsertErr   error
	listErr     error
	queryCalls  []string
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{
		upserts:   make(map[string][]driven.Entry),
		hits:      make(map[string][]domain.Hit),
		queryErrs: make(map[string]error),
	}
}

func (m *mockVectorStore) EnsureCollection(_ context.Context, name string) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.collections {
		if existing == name {
			return nil
		}
	}
	m.collections = append(m.collections, name)
	return nil
}

func (m *mockVectorStore) Upsert(_ context.Context, collection string, entries []driven.Entry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Upsert semantics: replace by ID, append new.
	existing := m.upserts[collection]
	for _, e := range entries {
		replaced := false
		for i := range existing {
			if existing[i].ID == e.ID {
				existing[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, e)
		}
	}
	m.upserts[collection] = existing
	return nil
}

func (m *mockVectorStore) Query(
	_ context.Context, collection string, _ []float32, _ string, k int,
) ([]domain.Hit, error) {
	m.mu.Lock()
	m.queryCalls = append(m.queryCalls, collection)
	m.mu.Unlock()
	if err := m.queryErrs[collection]; err != nil {
		return nil, err
	}
	hits := m.hits[collection]
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockVectorStore) ListCollections(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.collections, nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockConnector implements driven.Connector for testing.
type mockConnector struct {
	source   domain.SourceTag
	authOK   bool
	authErr  error
	records  []driven.RawRecord
	fetchErr error
	docs     []domain.Document
}

func (m *mockConnector) Source() domain.SourceTag { return m.source }

func (m *mockConnector) Authenticate(_ context.Context) (bool, error) {
	return m.authOK, m.authErr
}

func (m *mockConnector) Fetch(_ context.Context, _ driven.FetchParams) ([]driven.RawRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.records, nil
}

func (m *mockConnector) Normalize(_ []driven.RawRecord) []domain.Document {
	return m.docs
}

// mockEmbedder implements driven.Embedder for testing.
type mockEmbedder struct {
	embedding []float32
	embedErr  error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockEmbedder) ModelName() string { return "mock-embedding" }
func (m *mockEmbedder) Close() error      { return nil }

// mockGenerator implements driven.Generator for testing.
type mockGenerator struct {
	text       string
	err        error
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockGenerator) ModelName() string { return "mock-llm" }
func (m *mockGenerator) Close() error      { return nil }

// mockRunStore implements driven.IngestRunStore for testing.
type mockRunStore struct {
	mu   sync.Mutex
	runs []driven.IngestRun
	err  error
}

func (m *mockRunStore) Record(_ context.Context, run driven.IngestRun) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRunStore) Recent(_ context.Context, limit int) ([]driven.IngestRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]driven.IngestRun, limit)
	copy(out, m.runs[len(m.runs)-limit:])
	return out, nil
}

func (m *mockRunStore) Close() error { return nil }
