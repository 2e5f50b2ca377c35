package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/services"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "why did the deploy fail?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "mock answer")
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "GitHub: mock issue")
}

func TestAskCmd_PassesSourcesAndResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockAnswerService{}
	answerService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--sources", "github,jira", "--results", "5", "what changed?"})
	defer func() {
		rootCmd.SetArgs(nil)
		askSources = nil
		askResults = services.DefaultResultsPerCollection
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "what changed?", mock.lastQ)
	assert.Equal(t, []string{"github", "jira"}, mock.lastSources)
	assert.Equal(t, 5, mock.lastResults)
}

func TestAskCmd_NoInformationPrintsNoSources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	answerService = &mockAnswerService{
		answer: &domain.Answer{Text: domain.NoInformationMessage, Found: false},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "anything?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), domain.NoInformationMessage)
	assert.NotContains(t, buf.String(), "Sources:")
}

func TestAskCmd_PropagatesError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	answerService = &mockAnswerService{err: domain.ErrGenerationFailed}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGenerationFailed))
}

func TestAskCmd_WithoutServiceFails(t *testing.T) {
	oldService := answerService
	answerService = nil
	defer func() {
		answerService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
