// Package jira implements the Jira source connector. It searches
// tickets with a configurable JQL query and folds summary, description
// and comments into one searchable body per ticket.
package jira

import (
	"context"
	"fmt"
	"strings"
	"time"

	jiraapi "github.com/andygrunwald/go-jira"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultMaxItems caps tickets fetched per run.
	DefaultMaxItems = 100

	// DefaultJQL orders the whole project backlog by recency.
	DefaultJQL = "ORDER BY updated DESC"

	// searchPageSize is the Jira search page size.
	searchPageSize = 50
)

// searchFields lists the issue fields the connector consumes.
var searchFields = []string{"summary", "description", "status", "issuetype", "created", "updated", "comment"}

// Config holds the Jira connector configuration.
type Config struct {
	// BaseURL is the Jira instance URL (required).
	BaseURL string

	// Email and APIToken authenticate via basic auth (required).
	Email    string
	APIToken string

	// JQL selects the tickets to index (default: everything, newest
	// first).
	JQL string
}

// Connector fetches tickets from the Jira REST API.
type Connector struct {
	cfg    Config
	client *jiraapi.Client
}

// New creates a Jira connector.
func New(cfg Config) *Connector {
	return &Connector{cfg: cfg}
}

// Source returns the jira tag.
func (c *Connector) Source() domain.SourceTag {
	return domain.SourceJira
}

// Authenticate verifies the credentials against the myself endpoint.
// Missing or rejected credentials disable the connector rather than
// aborting the run.
func (c *Connector) Authenticate(ctx context.Context) (bool, error) {
	if c.cfg.BaseURL == "" || c.cfg.Email == "" || c.cfg.APIToken == "" {
		logger.Warn("Jira credentials not provided")
		return false, nil
	}

	transport := jiraapi.BasicAuthTransport{
		Username: c.cfg.Email,
		Password: c.cfg.APIToken,
	}
	client, err := jiraapi.NewClient(transport.Client(), c.cfg.BaseURL)
	if err != nil {
		logger.Warn("Invalid Jira base URL: %v", err)
		return false, nil
	}

	user, _, err := client.User.GetSelfWithContext(ctx)
	if err != nil {
		logger.Warn("Jira authentication failed: %v", err)
		return false, nil
	}

	c.client = client
	logger.Info("Authenticated with Jira as %s", user.DisplayName)
	return true, nil
}

// Fetch searches tickets with the configured JQL, paginating up to
// params.MaxItems.
func (c *Connector) Fetch(ctx context.Context, params driven.FetchParams) ([]driven.RawRecord, error) {
	if c.client == nil {
		return nil, domain.ErrNotAuthenticated
	}

	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	jql := c.cfg.JQL
	if jql == "" {
		jql = DefaultJQL
	}

	var records []driven.RawRecord
	startAt := 0
	for len(records) < maxItems {
		pageSize := searchPageSize
		if remaining := maxItems - len(records); remaining < pageSize {
			pageSize = remaining
		}

		issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, &jiraapi.SearchOptions{
			StartAt:    startAt,
			MaxResults: pageSize,
			Fields:     searchFields,
		})
		if err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}

		for i := range issues {
			records = append(records, issueRecord(&issues[i]))
		}

		startAt += len(issues)
		if len(issues) == 0 || startAt >= resp.Total {
			break
		}
	}

	return records, nil
}

// issueRecord converts one Jira issue to a raw record.
func issueRecord(issue *jiraapi.Issue) driven.RawRecord {
	rec := driven.RawRecord{
		"key":     issue.Key,
		"summary": issue.Fields.Summary,
	}

	rec["description"] = issue.Fields.Description
	if issue.Fields.Status != nil {
		rec["status"] = issue.Fields.Status.Name
	}
	rec["issueType"] = issue.Fields.Type.Name
	rec["created"] = time.Time(issue.Fields.Created).Format(time.RFC3339)
	rec["updated"] = time.Time(issue.Fields.Updated).Format(time.RFC3339)

	if issue.Fields.Comments != nil {
		comments := make([]string, 0, len(issue.Fields.Comments.Comments))
		for _, comment := range issue.Fields.Comments.Comments {
			comments = append(comments, fmt.Sprintf("%s: %s", comment.Author.DisplayName, comment.Body))
		}
		rec["comments"] = comments
	}

	return rec
}

// Normalize converts raw Jira records into canonical documents. The
// body folds summary, description and comments together so a search
// hits ticket discussions, not just titles.
func (c *Connector) Normalize(records []driven.RawRecord) []domain.Document {
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		summary := stringField(rec, "summary")

		docs = append(docs, domain.Document{
			ID:      stringField(rec, "key"),
			Source:  domain.SourceJira,
			Title:   summary,
			Created: stringField(rec, "created"),
			Updated: stringField(rec, "updated"),
			Body:    buildBody(rec, summary),
			Extra: map[string]any{
				"key":       stringField(rec, "key"),
				"status":    stringField(rec, "status"),
				"issueType": stringField(rec, "issueType"),
				"summary":   summary,
			},
		})
	}
	return docs
}

// buildBody folds the ticket's textual parts into one block.
func buildBody(rec driven.RawRecord, summary string) string {
	parts := []string{summary}
	if description := stringField(rec, "description"); description != "" {
		parts = append(parts, description)
	}
	if comments, ok := rec["comments"].([]string); ok && len(comments) > 0 {
		parts = append(parts, "Comments:\n"+strings.Join(comments, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// stringField reads a raw record value as a string.
func stringField(rec driven.RawRecord, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}
