package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membox-labs/membox-cli/internal/config"
	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driving"
	"github.com/membox-labs/membox-cli/internal/core/services"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [sources...]", ingestCmd.Use)
}

// clearSourceEnv blanks every credential so only the variables a test
// sets decide which sources are enabled.
func clearSourceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.DefaultGitHubTokenEnv,
		config.DefaultSlackTokenEnv,
		config.DefaultTeamsTenantEnv,
		config.DefaultTeamsClientEnv,
		config.DefaultTeamsSecretEnv,
		config.DefaultJiraURLEnv,
		config.DefaultJiraUsernameEnv,
		config.DefaultJiraAPITokenEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestBuildJobs_NothingEnabled(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	clearSourceEnv(t)

	jobs := buildJobs(nil)
	assert.Empty(t, jobs)
}

func TestBuildJobs_EnabledSourcesGetJobs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	clearSourceEnv(t)
	t.Setenv(config.DefaultGitHubTokenEnv, "ghp-test")
	t.Setenv(config.DefaultSlackTokenEnv, "xoxb-test")

	jobs := buildJobs(nil)
	require.Len(t, jobs, 2)
	assert.Equal(t, services.CollectionGitHub, jobs[0].Collection)
	assert.Equal(t, services.CollectionSlack, jobs[1].Collection)
}

func TestBuildJobs_SelectionFilters(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	clearSourceEnv(t)
	t.Setenv(config.DefaultGitHubTokenEnv, "ghp-test")
	t.Setenv(config.DefaultSlackTokenEnv, "xoxb-test")

	jobs := buildJobs([]string{"slack"})
	require.Len(t, jobs, 1)
	assert.Equal(t, services.CollectionSlack, jobs[0].Collection)
	assert.Equal(t, domain.SourceSlack, jobs[0].Connector.Source())
}

func TestBuildJobs_UnknownSourceSkipped(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	t.Setenv(config.DefaultGitHubTokenEnv, "ghp-test")

	jobs := buildJobs([]string{"gitlab"})
	assert.Empty(t, jobs)
}

func TestBuildJobs_MaxItemsFlagPropagates(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	clearSourceEnv(t)
	t.Setenv(config.DefaultGitHubTokenEnv, "ghp-test")

	ingestMaxItems = 50
	defer func() { ingestMaxItems = 0 }()

	jobs := buildJobs(nil)
	require.Len(t, jobs, 1)
	assert.Equal(t, 50, jobs[0].Params.MaxItems)
}

func TestBuildJobs_FromFileYieldsSingleJob(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestFromFile = "export.json"
	ingestFileSource = "teams"
	defer func() {
		ingestFromFile = ""
		ingestFileSource = "generic"
	}()

	jobs := buildJobs(nil)
	require.Len(t, jobs, 1)
	assert.Equal(t, services.CollectionTeams, jobs[0].Collection)
	assert.Equal(t, domain.SourceTeams, jobs[0].Connector.Source())
}

func TestIngestCmd_ReportsCounts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	clearSourceEnv(t)
	t.Setenv(config.DefaultGitHubTokenEnv, "ghp-test")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "github")
	assert.Contains(t, buf.String(), "-> "+services.CollectionGitHub)
}

func TestIngestCmd_NoSourcesPrintsHint(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	clearSourceEnv(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No sources to ingest")
}

func TestIngestCmd_AllFailedIsAnError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	t.Setenv(config.DefaultGitHubTokenEnv, "ghp-test")

	ingestService = &mockIngestor{
		reports: []driving.IngestReport{
			{Source: domain.SourceGitHub, Collection: services.CollectionGitHub, Err: errors.New("boom")},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "every source failed")
}

func TestIngestCmd_PartialFailureSucceeds(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	t.Setenv(config.DefaultGitHubTokenEnv, "ghp-test")

	ingestService = &mockIngestor{
		reports: []driving.IngestReport{
			{Source: domain.SourceGitHub, Collection: services.CollectionGitHub, Items: 4},
			{Source: domain.SourceSlack, Collection: services.CollectionSlack, Err: errors.New("rate limited")},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "4 items")
	assert.Contains(t, buf.String(), "rate limited")
}
