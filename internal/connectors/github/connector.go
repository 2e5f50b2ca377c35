// Package github implements the GitHub source connector. It indexes
// repository metadata, READMEs, issues and pull requests for a
// configured set of repositories.
package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxItems caps issues and PRs fetched per repository when the
	// caller does not bound the fetch.
	DefaultMaxItems = 100
)

// Config holds the GitHub connector configuration.
type Config struct {
	// Token is a personal access token or OAuth access token (required).
	Token string

	// Repos lists repositories to index, in "owner/name" form.
	Repos []string

	// IncludeReadme indexes each repository's README (default true via
	// config loading; the zero value disables it).
	IncludeReadme bool

	// IncludeIssues indexes issues.
	IncludeIssues bool

	// IncludePRs indexes pull requests. PRs arrive through the issues
	// endpoint, so this only matters when IncludeIssues is set.
	IncludePRs bool
}

// Connector fetches repository content from the GitHub API.
type Connector struct {
	cfg     Config
	client  *gh.Client
	limiter *RateLimiter
}

// New creates a GitHub connector. The API client is built lazily on
// first use so construction never needs a context.
func New(cfg Config) *Connector {
	return &Connector{
		cfg:     cfg,
		limiter: NewRateLimiter(),
	}
}

// Source returns the github tag.
func (c *Connector) Source() domain.SourceTag {
	return domain.SourceGitHub
}

// ensureClient initialises the go-github client if not already done.
func (c *Connector) ensureClient(ctx context.Context) {
	if c.client != nil {
		return
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.cfg.Token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	c.client = gh.NewClient(tc)
}

// Authenticate verifies the token against the authenticated-user
// endpoint. A missing or rejected token is recoverable: it disables
// the connector rather than aborting the run.
func (c *Connector) Authenticate(ctx context.Context) (bool, error) {
	if c.cfg.Token == "" {
		logger.Warn("GitHub token not provided")
		return false, nil
	}

	c.ensureClient(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return false, nil
	}

	user, resp, err := c.client.Users.Get(ctx, "")
	if resp != nil {
		c.limiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		logger.Warn("GitHub authentication failed: %v", err)
		return false, nil
	}

	logger.Info("Authenticated as GitHub user: %s", user.GetLogin())
	return true, nil
}

// Fetch retrieves repository metadata, READMEs and issues/PRs for the
// configured repositories. A failing repository degrades to partial
// results rather than aborting the batch.
func (c *Connector) Fetch(ctx context.Context, params driven.FetchParams) ([]driven.RawRecord, error) {
	c.ensureClient(ctx)

	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	if len(c.cfg.Repos) == 0 {
		logger.Warn("No GitHub repositories configured")
		return nil, nil
	}

	var records []driven.RawRecord
	for _, fullName := range c.cfg.Repos {
		owner, name, ok := splitRepo(fullName)
		if !ok {
			logger.Warn("Skipping malformed repository name %q", fullName)
			continue
		}

		repoRecords, err := c.fetchRepo(ctx, owner, name, maxItems)
		if err != nil {
			logger.Warn("Failed to fetch repository %s: %v", fullName, err)
			continue
		}
		records = append(records, repoRecords...)
	}

	return records, nil
}

// fetchRepo collects the records for one repository.
func (c *Connector) fetchRepo(
	ctx context.Context, owner, name string, maxItems int,
) ([]driven.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	repo, resp, err := c.client.Repositories.Get(ctx, owner, name)
	if resp != nil {
		c.limiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		return nil, fmt.Errorf("get repo: %w", err)
	}

	fullName := repo.GetFullName()
	records := []driven.RawRecord{{
		"type":       "repository",
		"id":         fmt.Sprintf("%d", repo.GetID()),
		"name":       fullName,
		"url":        repo.GetHTMLURL(),
		"created_at": repo.GetCreatedAt().Format(time.RFC3339),
		"updated_at": repo.GetUpdatedAt().Format(time.RFC3339),
		"content":    fmt.Sprintf("Repository: %s\nDescription: %s", fullName, repo.GetDescription()),
	}}

	if c.cfg.IncludeReadme {
		if readme := c.fetchReadme(ctx, owner, name, fullName); readme != nil {
			records = append(records, readme)
		}
	}

	if c.cfg.IncludeIssues {
		issues, err := c.fetchIssues(ctx, owner, name, maxItems)
		if err != nil {
			logger.Warn("Error fetching issues for %s: %v", fullName, err)
		} else {
			records = append(records, issues...)
		}
	}

	return records, nil
}

// fetchReadme fetches and decodes the repository README. Failure is
// non-fatal: many repositories have none.
func (c *Connector) fetchReadme(ctx context.Context, owner, name, fullName string) driven.RawRecord {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	readme, resp, err := c.client.Repositories.GetReadme(ctx, owner, name, nil)
	if resp != nil {
		c.limiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		logger.Debug("No README for %s: %v", fullName, err)
		return nil
	}

	content, err := readme.GetContent()
	if err != nil {
		logger.Warn("Error decoding README for %s: %v", fullName, err)
		return nil
	}

	return driven.RawRecord{
		"type":    "readme",
		"id":      fullName + "-readme",
		"name":    "README - " + fullName,
		"url":     readme.GetHTMLURL(),
		"content": content,
	}
}

// fetchIssues lists issues (and, through the same endpoint, pull
// requests) for a repository, paginating up to maxItems.
func (c *Connector) fetchIssues(
	ctx context.Context, owner, name string, maxItems int,
) ([]driven.RawRecord, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var records []driven.RawRecord
	for {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, name, opts)
		if resp != nil {
			c.limiter.UpdateFromResponse(resp.Response)
		}
		if err != nil {
			return nil, fmt.Errorf("list issues: %w", err)
		}

		for _, issue := range issues {
			if issue.IsPullRequest() && !c.cfg.IncludePRs {
				continue
			}
			records = append(records, issueRecord(issue))
			if len(records) >= maxItems {
				return records, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	return records, nil
}

// issueRecord converts one issue or pull request to a raw record.
func issueRecord(issue *gh.Issue) driven.RawRecord {
	recordType := "issue"
	if issue.IsPullRequest() {
		recordType = "pull_request"
	}
	return driven.RawRecord{
		"type":       recordType,
		"id":         fmt.Sprintf("%d", issue.GetID()),
		"name":       fmt.Sprintf("#%d - %s", issue.GetNumber(), issue.GetTitle()),
		"url":        issue.GetHTMLURL(),
		"created_at": issue.GetCreatedAt().Format(time.RFC3339),
		"updated_at": issue.GetUpdatedAt().Format(time.RFC3339),
		"content": fmt.Sprintf("Title: %s\nState: %s\nBody: %s",
			issue.GetTitle(), issue.GetState(), issue.GetBody()),
	}
}

// Normalize converts raw GitHub records into canonical documents.
func (c *Connector) Normalize(records []driven.RawRecord) []domain.Document {
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, domain.Document{
			ID:      stringField(rec, "id"),
			Source:  domain.SourceGitHub,
			Title:   stringField(rec, "name"),
			Created: normalizeDate(stringField(rec, "created_at")),
			Updated: normalizeDate(stringField(rec, "updated_at")),
			Body:    stringField(rec, "content"),
			Extra: map[string]any{
				"type":       stringField(rec, "type"),
				"url":        stringField(rec, "url"),
				"repository": repositoryOf(stringField(rec, "name")),
			},
		})
	}
	return docs
}

// stringField reads a raw record value as a string.
func stringField(rec driven.RawRecord, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

// normalizeDate converts an RFC3339 date to "YYYY-MM-DD HH:MM:SS".
// Unparseable input passes through unchanged.
func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// repositoryOf extracts the owner from an "owner/name" record name.
func repositoryOf(name string) string {
	if owner, _, ok := strings.Cut(name, "/"); ok {
		return owner
	}
	return ""
}

// splitRepo parses an "owner/name" repository reference.
func splitRepo(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	return owner, name, ok && owner != "" && name != ""
}
