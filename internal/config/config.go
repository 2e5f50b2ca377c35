// Package config loads the membox configuration. The configuration is
// an explicit value constructed once in main and passed into the
// components that need it; nothing reads it through package globals.
// Credentials themselves never live in the file: the file names the
// environment variables that hold them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Default credential environment variable names.
const (
	DefaultGitHubTokenEnv   = "GITHUB_ACCESS_TOKEN"
	DefaultSlackTokenEnv    = "SLACK_BOT_TOKEN"
	DefaultTeamsTenantEnv   = "TEAMS_TENANT_ID"
	DefaultTeamsClientEnv   = "TEAMS_CLIENT_ID"
	DefaultTeamsSecretEnv   = "TEAMS_CLIENT_SECRET"
	DefaultJiraURLEnv       = "JIRA_URL"
	DefaultJiraUsernameEnv  = "JIRA_USERNAME"
	DefaultJiraAPITokenEnv  = "JIRA_API_TOKEN"
	DefaultGeminiAPIKeyEnv  = "GEMINI_API_KEY"
	DefaultChromaURL        = "http://localhost:8000"
	DefaultDriveCredentials = "credentials.json"
	DefaultDriveToken       = "token.json"
)

// Config is the complete membox configuration.
type Config struct {
	// DataDir is where membox keeps local state (ingest history).
	// Empty means ~/.membox/data.
	DataDir string `toml:"data_dir"`

	Gemini     GeminiConfig     `toml:"gemini"`
	Chroma     ChromaConfig     `toml:"chroma"`
	Connectors ConnectorsConfig `toml:"connectors"`
}

// GeminiConfig configures embedding and generation.
type GeminiConfig struct {
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`

	// EmbeddingModel and GenerationModel override the adapter defaults
	// when set.
	EmbeddingModel  string `toml:"embedding_model"`
	GenerationModel string `toml:"generation_model"`
}

// APIKey resolves the Gemini API key from the environment.
func (g GeminiConfig) APIKey() string {
	return os.Getenv(g.APIKeyEnv)
}

// ChromaConfig configures the vector store endpoint.
type ChromaConfig struct {
	URL string `toml:"url"`
}

// ConnectorsConfig groups the per-source connector settings.
type ConnectorsConfig struct {
	GitHub GitHubConfig `toml:"github"`
	Drive  DriveConfig  `toml:"drive"`
	Slack  SlackConfig  `toml:"slack"`
	Teams  TeamsConfig  `toml:"teams"`
	Jira   JiraConfig   `toml:"jira"`
}

// GitHubConfig configures the GitHub connector.
type GitHubConfig struct {
	// Disabled turns the connector off even when credentials are
	// present. Connectors auto-enable when their credentials resolve.
	Disabled bool `toml:"disabled"`

	TokenEnv     string   `toml:"token_env"`
	Repositories []string `toml:"repositories"`

	IncludeReadme bool `toml:"include_readme"`
	IncludeIssues bool `toml:"include_issues"`
	IncludePRs    bool `toml:"include_prs"`
}

// Token resolves the GitHub token from the environment.
func (g GitHubConfig) Token() string { return os.Getenv(g.TokenEnv) }

// HasCredentials reports whether the connector could authenticate.
func (g GitHubConfig) HasCredentials() bool { return g.Token() != "" }

// Enabled reports whether the connector should run.
func (g GitHubConfig) Enabled() bool { return !g.Disabled && g.HasCredentials() }

// DriveConfig configures the Google Drive connector.
type DriveConfig struct {
	Disabled bool `toml:"disabled"`

	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`

	// Folder optionally scopes ingestion to one folder by name.
	Folder string `toml:"folder"`

	// MIMETypes optionally filters files by MIME type.
	MIMETypes []string `toml:"mime_types"`
}

// HasCredentials reports whether the client secrets file exists.
func (d DriveConfig) HasCredentials() bool {
	if d.CredentialsFile == "" {
		return false
	}
	_, err := os.Stat(d.CredentialsFile)
	return err == nil
}

// Enabled reports whether the connector should run.
func (d DriveConfig) Enabled() bool { return !d.Disabled && d.HasCredentials() }

// SlackConfig configures the Slack connector.
type SlackConfig struct {
	Disabled bool `toml:"disabled"`

	TokenEnv string   `toml:"token_env"`
	Channels []string `toml:"channels"`
}

// Token resolves the Slack bot token from the environment.
func (s SlackConfig) Token() string { return os.Getenv(s.TokenEnv) }

// HasCredentials reports whether the connector could authenticate.
func (s SlackConfig) HasCredentials() bool { return s.Token() != "" }

// Enabled reports whether the connector should run.
func (s SlackConfig) Enabled() bool { return !s.Disabled && s.HasCredentials() }

// TeamsConfig configures the Microsoft Teams connector.
type TeamsConfig struct {
	Disabled bool `toml:"disabled"`

	TenantIDEnv     string `toml:"tenant_id_env"`
	ClientIDEnv     string `toml:"client_id_env"`
	ClientSecretEnv string `toml:"client_secret_env"`

	TeamID     string   `toml:"team_id"`
	ChannelIDs []string `toml:"channel_ids"`
}

// TenantID resolves the Azure AD tenant from the environment.
func (t TeamsConfig) TenantID() string { return os.Getenv(t.TenantIDEnv) }

// ClientID resolves the app client ID from the environment.
func (t TeamsConfig) ClientID() string { return os.Getenv(t.ClientIDEnv) }

// ClientSecret resolves the app secret from the environment.
func (t TeamsConfig) ClientSecret() string { return os.Getenv(t.ClientSecretEnv) }

// HasCredentials reports whether the connector could authenticate.
func (t TeamsConfig) HasCredentials() bool {
	return t.TenantID() != "" && t.ClientID() != "" && t.ClientSecret() != ""
}

// Enabled reports whether the connector should run.
func (t TeamsConfig) Enabled() bool { return !t.Disabled && t.HasCredentials() }

// JiraConfig configures the Jira connector.
type JiraConfig struct {
	Disabled bool `toml:"disabled"`

	URLEnv      string `toml:"url_env"`
	UsernameEnv string `toml:"username_env"`
	APITokenEnv string `toml:"api_token_env"`

	// JQL overrides the default ticket selection.
	JQL string `toml:"jql"`
}

// URL resolves the Jira instance URL from the environment.
func (j JiraConfig) URL() string { return os.Getenv(j.URLEnv) }

// Username resolves the Jira account from the environment.
func (j JiraConfig) Username() string { return os.Getenv(j.UsernameEnv) }

// APIToken resolves the Jira API token from the environment.
func (j JiraConfig) APIToken() string { return os.Getenv(j.APITokenEnv) }

// HasCredentials reports whether the connector could authenticate.
func (j JiraConfig) HasCredentials() bool {
	return j.URL() != "" && j.Username() != "" && j.APIToken() != ""
}

// Enabled reports whether the connector should run.
func (j JiraConfig) Enabled() bool { return !j.Disabled && j.HasCredentials() }

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Gemini: GeminiConfig{
			APIKeyEnv: DefaultGeminiAPIKeyEnv,
		},
		Chroma: ChromaConfig{
			URL: DefaultChromaURL,
		},
		Connectors: ConnectorsConfig{
			GitHub: GitHubConfig{
				TokenEnv:      DefaultGitHubTokenEnv,
				IncludeReadme: true,
				IncludeIssues: true,
				IncludePRs:    true,
			},
			Drive: DriveConfig{
				CredentialsFile: DefaultDriveCredentials,
				TokenFile:       DefaultDriveToken,
			},
			Slack: SlackConfig{
				TokenEnv: DefaultSlackTokenEnv,
			},
			Teams: TeamsConfig{
				TenantIDEnv:     DefaultTeamsTenantEnv,
				ClientIDEnv:     DefaultTeamsClientEnv,
				ClientSecretEnv: DefaultTeamsSecretEnv,
			},
			Jira: JiraConfig{
				URLEnv:      DefaultJiraURLEnv,
				UsernameEnv: DefaultJiraUsernameEnv,
				APITokenEnv: DefaultJiraAPITokenEnv,
			},
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.membox/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".membox", "config.toml"), nil
}

// Load reads the configuration file at path, layered over the
// defaults. A missing file yields the defaults; a malformed file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ConnectorStatus reports one connector's readiness for `membox
// sources`.
type ConnectorStatus struct {
	Name           string
	Enabled        bool
	HasCredentials bool
	Disabled       bool
}

// Statuses returns the readiness of every configured connector, in a
// stable order.
func (c *Config) Statuses() []ConnectorStatus {
	return []ConnectorStatus{
		{"github", c.Connectors.GitHub.Enabled(), c.Connectors.GitHub.HasCredentials(), c.Connectors.GitHub.Disabled},
		{"drive", c.Connectors.Drive.Enabled(), c.Connectors.Drive.HasCredentials(), c.Connectors.Drive.Disabled},
		{"slack", c.Connectors.Slack.Enabled(), c.Connectors.Slack.HasCredentials(), c.Connectors.Slack.Disabled},
		{"teams", c.Connectors.Teams.Enabled(), c.Connectors.Teams.HasCredentials(), c.Connectors.Teams.Disabled},
		{"jira", c.Connectors.Jira.Enabled(), c.Connectors.Jira.HasCredentials(), c.Connectors.Jira.Disabled},
	}
}
