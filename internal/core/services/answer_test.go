package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membox-labs/membox-cli/internal/core/domain"
)

func newAnswerFixture(store *mockVectorStore, gen *mockGenerator, emb *mockEmbedder) *AnswerService {
	return NewAnswerService(store, emb, NewCollectionRegistry(store), NewSynthesizer(gen))
}

func githubHit(id, title, text string) domain.Hit {
	return domain.Hit{
		ID:         id,
		Text:       text,
		Collection: CollectionGitHub,
		Metadata:   map[string]any{"source": "github", "title": title},
	}
}

func TestAskReturnsAnswerWithSources(t *testing.T) {
	store := newMockVectorStore()
	store.collections = []string{CollectionGitHub}
	store.hits[CollectionGitHub] = []domain.Hit{
		githubHit("gh-1", "Bug fix", "Fixes crash on startup"),
	}
	gen := &mockGenerator{text: "The startup crash was fixed in Bug fix."}
	emb := &mockEmbedder{embedding: []float32{0.1, 0.2}}

	svc := newAnswerFixture(store, gen, emb)

	answer, err := svc.Ask(context.Background(), "startup crash", []string{"github"}, 3)
	require.NoError(t, err)
	require.True(t, answer.Found)
	assert.NotEmpty(t, answer.Text)
	assert.Equal(t, []string{"GitHub: Bug fix"}, answer.Sources)

	// The fused context reaches the generator with provenance attached.
	assert.Contains(t, gen.lastPrompt, "gh-1")
	assert.Contains(t, gen.lastPrompt, "Fixes crash on startup")
	assert.Contains(t, gen.lastPrompt, "Question: startup crash")
}

func TestAskEmbedsQuestionOnce(t *testing.T) {
	store := newMockVectorStore()
	store.collections = []string{CollectionGitHub, CollectionJira, CollectionTeams}
	store.hits[CollectionGitHub] = []domain.Hit{githubHit("gh-1", "A", "a")}
	emb := &mockEmbedder{embedding: []float32{1}}

	svc := newAnswerFixture(store, &mockGenerator{text: "ok"}, emb)

	_, err := svc.Ask(context.Background(), "q", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls)
	assert.Len(t, store.queryCalls, 3)
}

func TestAskFanOutFaultIsolation(t *testing.T) {
	store := newMockVectorStore()
	store.collections = []string{CollectionGitHub, CollectionJira}
	store.hits[CollectionGitHub] = []domain.Hit{githubHit("gh-1", "Bug fix", "text")}
	store.queryErrs[CollectionJira] = errors.New("transient store error")

	svc := newAnswerFixture(store, &mockGenerator{text: "answer"}, &mockEmbedder{embedding: []float32{1}})

	answer, err := svc.Ask(context.Background(), "q", nil, 3)
	require.NoError(t, err)
	require.True(t, answer.Found)
	assert.Equal(t, []string{"GitHub: Bug fix"}, answer.Sources)
}

func TestAskNoHitsShortCircuits(t *testing.T) {
	store := newMockVectorStore()
	store.collections = []string{CollectionGitHub}
	gen := &mockGenerator{text: "should not be called"}

	svc := newAnswerFixture(store, gen, &mockEmbedder{embedding: []float32{1}})

	answer, err := svc.Ask(context.Background(), "q", nil, 3)
	require.NoError(t, err)
	assert.False(t, answer.Found)
	assert.Equal(t, domain.NoInformationMessage, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, gen.lastPrompt)
}

func TestAskEmptyCollectionContributesNothing(t *testing.T) {
	store := newMockVectorStore()
	store.collections = []string{CollectionGitHub, CollectionTeams}
	store.hits[CollectionGitHub] = []domain.Hit{githubHit("gh-1", "Bug fix", "text")}

	svc := newAnswerFixture(store, &mockGenerator{text: "answer"}, &mockEmbedder{embedding: []float32{1}})

	answer, err := svc.Ask(context.Background(), "q", nil, 3)
	require.NoError(t, err)
	require.True(t, answer.Found)
	// Source list carries exactly the non-empty collection's citations.
	assert.Equal(t, []string{"GitHub: Bug fix"}, answer.Sources)
}

func TestAskSynthesisFailurePropagates(t *testing.T) {
	store := newMockVectorStore()
	store.collections = []string{CollectionGitHub}
	store.hits[CollectionGitHub] = []domain.Hit{githubHit("gh-1", "A", "a")}
	gen := &mockGenerator{err: errors.New("model overloaded")}

	svc := newAnswerFixture(store, gen, &mockEmbedder{embedding: []float32{1}})

	_, err := svc.Ask(context.Background(), "q", nil, 3)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestAskEmbeddingFailure(t *testing.T) {
	store := newMockVectorStore()
	store.collections = []string{CollectionGitHub}
	emb := &mockEmbedder{embedErr: errors.New("quota exceeded")}

	svc := newAnswerFixture(store, &mockGenerator{text: "x"}, emb)

	_, err := svc.Ask(context.Background(), "q", nil, 3)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestFuseDeduplicatesCitations(t *testing.T) {
	hits := [][]domain.Hit{
		{
			githubHit("gh-1", "Bug fix", "a"),
			githubHit("gh-1", "Bug fix", "a again"),
		},
	}

	fused := fuse(hits)
	assert.Len(t, fused.Blocks, 2)
	assert.Equal(t, []string{"GitHub: Bug fix"}, fused.Citations)
}

func TestFusePreservesCollectionOrder(t *testing.T) {
	hits := [][]domain.Hit{
		{{ID: "b1", Text: "from-b", Collection: "beta", Metadata: map[string]any{}}},
		{{ID: "a1", Text: "from-a", Collection: "alpha", Metadata: map[string]any{}}},
	}

	fused := fuse(hits)
	require.Len(t, fused.Blocks, 2)
	assert.True(t, strings.Contains(fused.Blocks[0], "from-b"))
	assert.True(t, strings.Contains(fused.Blocks[1], "from-a"))
}

func TestBuildPromptContainsInstruction(t *testing.T) {
	prompt := BuildPrompt("why?", "because")
	assert.Contains(t, prompt, "DO NOT mention the confidence score")
	assert.Contains(t, prompt, "CONTEXT:\nbecause")
	assert.Contains(t, prompt, "Question: why?")
}
