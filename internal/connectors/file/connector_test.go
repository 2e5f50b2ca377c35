package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSourceDefaultsToGeneric(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, domain.SourceGeneric, c.Source())
}

func TestAuthenticateMissingFileIsRecoverable(t *testing.T) {
	c := New(Config{Path: filepath.Join(t.TempDir(), "missing.json")})

	ok, err := c.Authenticate(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestRunReadsTeamsExport(t *testing.T) {
	path := writeExport(t, `[
		{"id": "msg1", "sender": "Robin", "message": "release is ready", "channel": "general", "created": "2024-06-10T09:00:00Z"},
		{"sender": "Sam", "message": "shipping it now"}
	]`)

	c := New(Config{Path: path, Source: domain.SourceTeams})

	docs, err := driven.Run(context.Background(), c, driven.FetchParams{})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "msg1", docs[0].ID)
	assert.Equal(t, domain.SourceTeams, docs[0].Source)
	assert.Equal(t, "Robin", docs[0].Sender)
	assert.Equal(t, "release is ready", docs[0].Body)
	assert.Equal(t, "general", docs[0].Extra["channel"])

	// Records without ids get generated ones.
	assert.NotEmpty(t, docs[1].ID)
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestNormalizeJiraExportKeepsSummaryInExtra(t *testing.T) {
	c := New(Config{Source: domain.SourceJira})

	docs := c.Normalize([]driven.RawRecord{{
		"id":      "OPS-7",
		"summary": "Alerting gap on ingest lag",
		"status":  "Done",
		"message": "Added a lag alert at 5 minutes.",
	}})

	require.Len(t, docs, 1)
	assert.Equal(t, "Alerting gap on ingest lag", docs[0].Title)
	assert.Equal(t, "Alerting gap on ingest lag", docs[0].Extra["summary"])
	assert.Equal(t, "Done", docs[0].Extra["status"])
}

func TestNormalizeDropsNonScalarExtras(t *testing.T) {
	c := New(Config{})

	docs := c.Normalize([]driven.RawRecord{{
		"id":        "1",
		"message":   "hello",
		"reactions": []any{"+1"},
	}})

	require.Len(t, docs, 1)
	assert.NotContains(t, docs[0].Extra, "reactions")
}

func TestFetchHonoursMaxItems(t *testing.T) {
	path := writeExport(t, `[{"id":"1"},{"id":"2"},{"id":"3"}]`)
	c := New(Config{Path: path})

	records, err := c.Fetch(context.Background(), driven.FetchParams{MaxItems: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFetchRejectsMalformedExport(t *testing.T) {
	path := writeExport(t, `{"not": "an array"}`)
	c := New(Config{Path: path})

	_, err := c.Fetch(context.Background(), driven.FetchParams{})
	assert.Error(t, err)
}
