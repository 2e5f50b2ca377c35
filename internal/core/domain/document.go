package domain

// SourceTag identifies the external system a document came from.
// It drives formatter dispatch during ingestion and retrieval.
type SourceTag string

const (
	// SourceDrive is Google Drive (documents and files).
	SourceDrive SourceTag = "drive"
	// SourceSlack is Slack (channel messages and threads).
	SourceSlack SourceTag = "slack"
	// SourceGitHub is GitHub (repositories, issues, pull requests, READMEs).
	SourceGitHub SourceTag = "github"
	// SourceTeams is Microsoft Teams (channel messages).
	SourceTeams SourceTag = "teams"
	// SourceJira is Jira (tickets with comments).
	SourceJira SourceTag = "jira"
	// SourceGeneric is the fallback for records of unknown shape.
	SourceGeneric SourceTag = "generic"
)

// KnownSources lists every recognised source tag.
var KnownSources = []SourceTag{
	SourceDrive, SourceSlack, SourceGitHub, SourceTeams, SourceJira, SourceGeneric,
}

// Document is the canonical record produced by connector normalisation.
// ID and Source are always present. Body may be the empty string but is
// never absent: a document with no extractable text still gets indexed.
type Document struct {
	// ID is unique within the document's source namespace.
	// Upserts with the same ID overwrite (last-write-wins).
	ID string

	// Source identifies the originating system.
	Source SourceTag

	// Title is the source-dependent identity field for document-like
	// records (file name, issue title, ticket summary).
	Title string

	// Sender is the identity field for message-like records.
	Sender string

	// Owner is the identity field for owned artifacts (Drive files).
	Owner string

	// Created and Updated are ISO-8601 timestamps, or empty when the
	// source does not report them.
	Created string
	Updated string

	// Body is the primary textual payload to be embedded.
	Body string

	// Extra carries additional source attributes (channel, url,
	// repository, status, ...). Only scalar values survive storage.
	Extra map[string]any
}

// ScalarMetadata returns the storable metadata for the document: every
// scalar-valued field plus the source tag. Non-scalar Extra values are
// dropped because the vector store only accepts string/number/boolean.
func (d *Document) ScalarMetadata() map[string]any {
	meta := make(map[string]any, len(d.Extra)+6)
	for k, v := range d.Extra {
		if IsScalar(v) {
			meta[k] = v
		}
	}
	if d.Title != "" {
		meta["title"] = d.Title
	}
	if d.Sender != "" {
		meta["sender"] = d.Sender
	}
	if d.Owner != "" {
		meta["owner"] = d.Owner
	}
	if d.Created != "" {
		meta["created"] = d.Created
	}
	if d.Updated != "" {
		meta["updated"] = d.Updated
	}
	meta["source"] = string(d.Source)
	return meta
}

// IsScalar reports whether a metadata value is storable as-is.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
