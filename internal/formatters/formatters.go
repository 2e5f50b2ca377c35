package formatters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/membox-labs/membox-cli/internal/core/domain"
)

// Formatter renders one source's documents and hits.
// All methods are pure functions of their input: identical input always
// yields identical output.
type Formatter interface {
	// Display renders the text stored (and embedded) for a document.
	Display(doc domain.Document) string

	// ContextBlock renders one retrieval hit as a context block for the
	// answer synthesizer.
	ContextBlock(hit domain.Hit) string

	// Citation renders one retrieval hit as a short source attribution.
	Citation(hit domain.Hit) string
}

// bySource is the fixed tag-to-formatter dispatch table.
var bySource = map[domain.SourceTag]Formatter{
	domain.SourceGitHub: githubFormatter{},
	domain.SourceDrive:  driveFormatter{},
	domain.SourceSlack:  messageFormatter{label: "Slack"},
	domain.SourceTeams:  messageFormatter{label: "Teams"},
	domain.SourceJira:   jiraFormatter{},
}

// ForSource returns the formatter for a source tag, falling back to the
// generic formatter for unrecognised tags.
func ForSource(tag domain.SourceTag) Formatter {
	if f, ok := bySource[tag]; ok {
		return f
	}
	return genericFormatter{}
}

// ForHit dispatches on the source tag stored in the hit's metadata.
// Hits from collections written by other tools land on the generic
// formatter, keyed by collection name and hit id.
func ForHit(hit domain.Hit) Formatter {
	return ForSource(hit.Source())
}

// githubFormatter foregrounds repository, title and URL.
type githubFormatter struct{}

func (githubFormatter) Display(doc domain.Document) string {
	var b strings.Builder
	b.WriteString("Source: GitHub\n")
	fmt.Fprintf(&b, "Repository: %s\n", stringExtra(doc, "repository"))
	fmt.Fprintf(&b, "Title: %s\n", doc.Title)
	fmt.Fprintf(&b, "URL: %s\n", stringExtra(doc, "url"))
	fmt.Fprintf(&b, "\nContent:\n%s", doc.Body)
	return b.String()
}

func (githubFormatter) ContextBlock(hit domain.Hit) string {
	title := hit.MetaString("title", hit.ID)
	block := fmt.Sprintf("Source: GitHub %s (%s)", title, hit.ID)
	if url := hit.MetaString("url", ""); url != "" {
		block += "\nURL: " + url
	}
	return block + "\nContent: " + hit.Text
}

func (githubFormatter) Citation(hit domain.Hit) string {
	title := hit.MetaString("title", hit.ID)
	if url := hit.MetaString("url", ""); url != "" {
		return fmt.Sprintf("GitHub: %s (%s)", title, url)
	}
	return "GitHub: " + title
}

// driveFormatter foregrounds title, owner and file type.
type driveFormatter struct{}

func (driveFormatter) Display(doc domain.Document) string {
	body := doc.Body
	if body == "" {
		body = "[No text extracted]"
	}
	var b strings.Builder
	b.WriteString("Source: Google Drive\n")
	fmt.Fprintf(&b, "Title: %s\n", orDefault(doc.Title, "Untitled"))
	fmt.Fprintf(&b, "Owner: %s\n", orDefault(doc.Owner, "Unknown"))
	fmt.Fprintf(&b, "File Type: %s\n", orDefault(stringExtra(doc, "type"), "unknown"))
	fmt.Fprintf(&b, "Created: %s\n", orDefault(doc.Created, "Unknown date"))
	fmt.Fprintf(&b, "\nContent:\n%s", body)
	return b.String()
}

func (driveFormatter) ContextBlock(hit domain.Hit) string {
	return fmt.Sprintf("Source: Google Drive %s (Owner: %s)\nContent: %s",
		hit.MetaString("title", hit.ID), hit.MetaString("owner", "Unknown"), hit.Text)
}

func (driveFormatter) Citation(hit domain.Hit) string {
	return fmt.Sprintf("Google Drive: %s (Owner: %s)",
		hit.MetaString("title", hit.ID), hit.MetaString("owner", "Unknown"))
}

// messageFormatter foregrounds sender and channel. Shared by the chat
// sources; the label distinguishes them in citations.
type messageFormatter struct {
	label string
}

func (m messageFormatter) Display(doc domain.Document) string {
	return fmt.Sprintf("Sender: %s in %s\nMessage: %s",
		orDefault(doc.Sender, "Unknown"),
		orDefault(stringExtra(doc, "channel"), "Unknown"),
		doc.Body)
}

func (m messageFormatter) ContextBlock(hit domain.Hit) string {
	return fmt.Sprintf("Source: %s Channel #%s, Sender: %s\nContent: %s",
		m.label, hit.MetaString("channel", "Unknown"), hit.MetaString("sender", "Unknown"), hit.Text)
}

func (m messageFormatter) Citation(hit domain.Hit) string {
	return fmt.Sprintf("%s: Channel #%s (Sender: %s)",
		m.label, hit.MetaString("channel", "Unknown"), hit.MetaString("sender", "Unknown"))
}

// jiraFormatter foregrounds ticket key, summary and status.
type jiraFormatter struct{}

func (jiraFormatter) Display(doc domain.Document) string {
	return fmt.Sprintf("Ticket KEY: %s. Summary: %s. Status: %s. Description: %s",
		orDefault(stringExtra(doc, "key"), doc.ID),
		orDefault(stringExtra(doc, "summary"), doc.Title),
		orDefault(stringExtra(doc, "status"), "Unknown"),
		doc.Body)
}

func (jiraFormatter) ContextBlock(hit domain.Hit) string {
	return fmt.Sprintf("Source: Jira Ticket %s (%s)\nContent: %s",
		hit.MetaString("key", hit.ID), hit.MetaString("status", "Unknown"), hit.Text)
}

func (jiraFormatter) Citation(hit domain.Hit) string {
	summary := hit.MetaString("summary", "")
	if i := strings.IndexByte(summary, '.'); i >= 0 {
		summary = summary[:i]
	}
	if summary == "" {
		return "Jira: " + hit.MetaString("key", hit.ID)
	}
	return fmt.Sprintf("Jira: %s (%s)", hit.MetaString("key", hit.ID), summary)
}

// genericFormatter is the fallback for unrecognised shapes: a flattened
// key:value dump in deterministic order.
type genericFormatter struct{}

func (genericFormatter) Display(doc domain.Document) string {
	fields := map[string]any{}
	for k, v := range doc.Extra {
		fields[k] = v
	}
	if doc.Title != "" {
		fields["title"] = doc.Title
	}
	if doc.Sender != "" {
		fields["sender"] = doc.Sender
	}
	if doc.Owner != "" {
		fields["owner"] = doc.Owner
	}
	if doc.Created != "" {
		fields["created"] = doc.Created
	}
	if doc.Updated != "" {
		fields["updated"] = doc.Updated
	}
	fields["body"] = doc.Body

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, fields[k]))
	}
	return strings.Join(lines, "\n")
}

func (genericFormatter) ContextBlock(hit domain.Hit) string {
	return fmt.Sprintf("Source: %s (%s)\nContent: %s", hit.Collection, hit.ID, hit.Text)
}

func (genericFormatter) Citation(hit domain.Hit) string {
	return fmt.Sprintf("%s: %s", hit.Collection, hit.ID)
}

func stringExtra(doc domain.Document, key string) string {
	if v, ok := doc.Extra[key].(string); ok {
		return v
	}
	return ""
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
