// Package drive implements the Google Drive source connector. It lists
// files (optionally scoped to a named folder), exports Google Docs as
// plain text and downloads text files; binary formats get placeholder
// bodies so every file is still indexed by name.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultMaxItems caps the number of files fetched.
	DefaultMaxItems = 100

	// pageSize is the Drive API per-page limit.
	pageSize = 100

	mimeFolder    = "application/vnd.google-apps.folder"
	mimeGoogleDoc = "application/vnd.google-apps.document"

	fileFields = "nextPageToken, files(id, name, mimeType, createdTime, modifiedTime, owners)"
)

// Config holds the Google Drive connector configuration.
type Config struct {
	// CredentialsFile is the OAuth client secrets file (required). A
	// missing file is a hard error: without it the connector can never
	// work, unlike a merely expired token.
	CredentialsFile string

	// TokenFile holds the stored user token from a prior OAuth flow.
	TokenFile string

	// FolderName optionally scopes the fetch to one folder, looked up by
	// name. Empty means all of Drive.
	FolderName string

	// MIMETypes optionally filters files by MIME type.
	MIMETypes []string
}

// Connector fetches documents from the Google Drive API.
type Connector struct {
	cfg Config
	svc *drivev3.Service
}

// New creates a Google Drive connector.
func New(cfg Config) *Connector {
	return &Connector{cfg: cfg}
}

// Source returns the drive tag.
func (c *Connector) Source() domain.SourceTag {
	return domain.SourceDrive
}

// Authenticate builds the Drive service from the stored credentials and
// token. A missing credentials file is the one hard error; a missing or
// invalid token only disables the connector for this run.
func (c *Connector) Authenticate(ctx context.Context) (bool, error) {
	credBytes, err := os.ReadFile(c.cfg.CredentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("%w: credentials file %s", domain.ErrCredentialsMissing, c.cfg.CredentialsFile)
		}
		return false, fmt.Errorf("read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, drivev3.DriveReadonlyScope)
	if err != nil {
		logger.Warn("Invalid Drive credentials file: %v", err)
		return false, nil
	}

	token, err := c.loadToken()
	if err != nil {
		logger.Warn("Drive token unavailable, re-authentication needed: %v", err)
		return false, nil
	}

	svc, err := drivev3.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		logger.Warn("Building Drive service failed: %v", err)
		return false, nil
	}

	c.svc = svc
	logger.Info("Authenticated with Google Drive")
	return true, nil
}

// loadToken reads the stored OAuth token from disk.
func (c *Connector) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return &token, nil
}

// Fetch lists files and extracts their content where possible.
func (c *Connector) Fetch(ctx context.Context, params driven.FetchParams) ([]driven.RawRecord, error) {
	if c.svc == nil {
		return nil, domain.ErrNotAuthenticated
	}

	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	query, err := c.buildQuery(ctx)
	if err != nil {
		return nil, err
	}

	files, err := c.listFiles(ctx, query, maxItems)
	if err != nil {
		return nil, err
	}

	records := make([]driven.RawRecord, 0, len(files))
	for _, f := range files {
		records = append(records, driven.RawRecord{
			"id":           f.Id,
			"name":         f.Name,
			"mimeType":     f.MimeType,
			"createdTime":  f.CreatedTime,
			"modifiedTime": f.ModifiedTime,
			"owner":        firstOwner(f),
			"content":      c.extractContent(ctx, f),
		})
	}

	return records, nil
}

// buildQuery assembles the Drive search query from the configured
// folder scope and MIME filters. Folders themselves are never indexed.
func (c *Connector) buildQuery(ctx context.Context) (string, error) {
	parts := []string{fmt.Sprintf("mimeType != '%s'", mimeFolder)}

	if len(c.cfg.MIMETypes) > 0 {
		conditions := make([]string, len(c.cfg.MIMETypes))
		for i, mt := range c.cfg.MIMETypes {
			conditions[i] = fmt.Sprintf("mimeType='%s'", mt)
		}
		parts = append(parts, "("+strings.Join(conditions, " or ")+")")
	}

	if c.cfg.FolderName != "" {
		folderID, err := c.resolveFolder(ctx, c.cfg.FolderName)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("'%s' in parents", folderID))
	}

	return strings.Join(parts, " and "), nil
}

// resolveFolder looks up a folder ID by name.
func (c *Connector) resolveFolder(ctx context.Context, name string) (string, error) {
	resp, err := c.svc.Files.List().
		Q(fmt.Sprintf("mimeType='%s' and name='%s'", mimeFolder, name)).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("look up folder %q: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return "", fmt.Errorf("%w: folder %q", domain.ErrNotFound, name)
	}
	return resp.Files[0].Id, nil
}

// listFiles pages through file listings up to maxItems.
func (c *Connector) listFiles(ctx context.Context, query string, maxItems int) ([]*drivev3.File, error) {
	var files []*drivev3.File
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Spaces("drive").
			Fields(fileFields).
			PageSize(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}

		files = append(files, resp.Files...)
		if resp.NextPageToken == "" || len(files) >= maxItems {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(files) > maxItems {
		files = files[:maxItems]
	}
	return files, nil
}

// extractContent pulls the textual content of one file. Extraction
// failures become placeholder bodies so the file is still indexed.
func (c *Connector) extractContent(ctx context.Context, f *drivev3.File) string {
	switch {
	case f.MimeType == mimeGoogleDoc:
		text, err := c.download(c.svc.Files.Export(f.Id, "text/plain").Context(ctx).Download())
		if err != nil {
			return fmt.Sprintf("[extraction error: %v]", err)
		}
		return text

	case strings.HasPrefix(f.MimeType, "application/vnd.google-apps"):
		return fmt.Sprintf("[Content not extracted for %s]", f.MimeType)

	case strings.HasPrefix(f.MimeType, "text/"):
		text, err := c.download(c.svc.Files.Get(f.Id).Context(ctx).Download())
		if err != nil {
			return fmt.Sprintf("[extraction error: %v]", err)
		}
		return text

	default:
		return fmt.Sprintf("[Binary content for %s]", f.MimeType)
	}
}

// download reads the body of a Drive media response.
func (c *Connector) download(resp *http.Response, err error) (string, error) {
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}

// Normalize converts raw Drive records into canonical documents.
func (c *Connector) Normalize(records []driven.RawRecord) []domain.Document {
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, domain.Document{
			ID:      "drive_" + stringField(rec, "id"),
			Source:  domain.SourceDrive,
			Title:   stringField(rec, "name"),
			Owner:   stringField(rec, "owner"),
			Created: isoDate(stringField(rec, "createdTime")),
			Updated: isoDate(stringField(rec, "modifiedTime")),
			Body:    stringField(rec, "content"),
			Extra: map[string]any{
				"type": stringField(rec, "mimeType"),
			},
		})
	}
	return docs
}

// firstOwner returns the display name of a file's first owner.
func firstOwner(f *drivev3.File) string {
	if len(f.Owners) == 0 {
		return "Unknown"
	}
	return f.Owners[0].DisplayName
}

// stringField reads a raw record value as a string.
func stringField(rec driven.RawRecord, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

// isoDate reparses a Drive RFC3339 timestamp into canonical ISO-8601.
// Unparseable input passes through unchanged.
func isoDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format(time.RFC3339)
}
