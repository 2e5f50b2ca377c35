// Package teams implements the Microsoft Teams source connector. It
// fetches channel messages through the Microsoft Graph REST API using
// the client-credentials flow, flattening HTML message bodies to text.
package teams

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultGraphBaseURL is the Microsoft Graph API root.
	DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxItems caps messages fetched per channel.
	DefaultMaxItems = 100

	// tokenURLFormat is the Azure AD v2 token endpoint per tenant.
	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

	// graphScope requests all application permissions granted to the app.
	graphScope = "https://graph.microsoft.com/.default"
)

// Config holds the Microsoft Teams connector configuration.
type Config struct {
	// TenantID, ClientID and ClientSecret identify the Azure AD app
	// registration (all required).
	TenantID     string
	ClientID     string
	ClientSecret string

	// TeamID is the team whose channels are fetched.
	TeamID string

	// ChannelIDs lists the channels to fetch within the team.
	ChannelIDs []string

	// BaseURL overrides the Graph API root, for testing.
	BaseURL string
}

// Connector fetches channel messages from Microsoft Graph.
type Connector struct {
	cfg     Config
	client  *http.Client
	baseURL string
}

// New creates a Teams connector.
func New(cfg Config) *Connector {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}
	return &Connector{cfg: cfg, baseURL: baseURL}
}

// Source returns the teams tag.
func (c *Connector) Source() domain.SourceTag {
	return domain.SourceTeams
}

// Authenticate acquires an app-only token via the client-credentials
// flow. Missing or rejected credentials disable the connector rather
// than aborting the run.
func (c *Connector) Authenticate(ctx context.Context) (bool, error) {
	if c.cfg.TenantID == "" || c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		logger.Warn("Teams credentials not provided")
		return false, nil
	}

	creds := &clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, c.cfg.TenantID),
		Scopes:       []string{graphScope},
	}

	if _, err := creds.Token(ctx); err != nil {
		logger.Warn("Teams authentication failed: %v", err)
		return false, nil
	}

	c.client = creds.Client(ctx)
	c.client.Timeout = DefaultTimeout
	logger.Info("Authenticated with Microsoft Graph for tenant %s", c.cfg.TenantID)
	return true, nil
}

// graphMessage is the subset of a Graph chatMessage we consume.
type graphMessage struct {
	ID              string `json:"id"`
	CreatedDateTime string `json:"createdDateTime"`
	From            *struct {
		User *struct {
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"from"`
	Body struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
}

// graphMessagePage is one page of the channel messages listing.
type graphMessagePage struct {
	Value    []graphMessage `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

// Fetch retrieves channel messages, following @odata.nextLink
// pagination up to params.MaxItems per channel. A failing channel
// degrades to partial results.
func (c *Connector) Fetch(ctx context.Context, params driven.FetchParams) ([]driven.RawRecord, error) {
	if c.client == nil {
		return nil, domain.ErrNotAuthenticated
	}

	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	if c.cfg.TeamID == "" || len(c.cfg.ChannelIDs) == 0 {
		logger.Warn("No Teams channels configured")
		return nil, nil
	}

	var records []driven.RawRecord
	for _, channelID := range c.cfg.ChannelIDs {
		channelRecords, err := c.fetchChannel(ctx, channelID, maxItems)
		if err != nil {
			logger.Warn("Error fetching Teams channel %s: %v", channelID, err)
			continue
		}
		records = append(records, channelRecords...)
	}

	return records, nil
}

// fetchChannel pages through the messages of one channel.
func (c *Connector) fetchChannel(ctx context.Context, channelID string, maxItems int) ([]driven.RawRecord, error) {
	url := fmt.Sprintf("%s/teams/%s/channels/%s/messages", c.baseURL, c.cfg.TeamID, channelID)

	var records []driven.RawRecord
	for url != "" && len(records) < maxItems {
		page, err := c.getPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for i := range page.Value {
			records = append(records, messageRecord(&page.Value[i], channelID))
			if len(records) >= maxItems {
				break
			}
		}

		url = page.NextLink
	}

	return records, nil
}

// getPage fetches and decodes one Graph listing page.
func (c *Connector) getPage(ctx context.Context, url string) (*graphMessagePage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph error (status %d): %s", resp.StatusCode, string(body))
	}

	var page graphMessagePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &page, nil
}

// messageRecord converts one Graph message to a raw record.
func messageRecord(msg *graphMessage, channelID string) driven.RawRecord {
	sender := "Unknown"
	if msg.From != nil && msg.From.User != nil && msg.From.User.DisplayName != "" {
		sender = msg.From.User.DisplayName
	}

	content := msg.Body.Content
	if msg.Body.ContentType == "html" {
		content = flattenHTML(content)
	}

	return driven.RawRecord{
		"id":      msg.ID,
		"sender":  sender,
		"created": msg.CreatedDateTime,
		"message": content,
		"channel": channelID,
	}
}

// Normalize converts raw Teams records into canonical documents.
func (c *Connector) Normalize(records []driven.RawRecord) []domain.Document {
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, domain.Document{
			ID:      "teams_" + stringField(rec, "id"),
			Source:  domain.SourceTeams,
			Sender:  stringField(rec, "sender"),
			Created: stringField(rec, "created"),
			Body:    stringField(rec, "message"),
			Extra: map[string]any{
				"channel": stringField(rec, "channel"),
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
