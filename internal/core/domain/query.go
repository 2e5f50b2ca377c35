package domain

import "strings"

// Hit is a single retrieval result from one collection.
// Hits are ephemeral: produced per query, never persisted.
type Hit struct {
	// ID is the stored entry identifier.
	ID string

	// Text is the stored display text of the matched entry.
	Text string

	// Metadata is the scalar metadata stored alongside the entry.
	Metadata map[string]any

	// Collection is the collection the hit came from.
	Collection string
}

// Source returns the hit's source tag from its stored metadata.
// Returns SourceGeneric when the metadata carries no recognisable tag.
func (h *Hit) Source() SourceTag {
	tag, ok := h.Metadata["source"].(string)
	if !ok {
		return SourceGeneric
	}
	for _, known := range KnownSources {
		if SourceTag(tag) == known {
			return known
		}
	}
	return SourceGeneric
}

// MetaString returns a string metadata value, or fallback when the key
// is missing or not a string.
func (h *Hit) MetaString(key, fallback string) string {
	if v, ok := h.Metadata[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// FusedContext is the provenance-tagged result of one fan-out query:
// ordered context blocks plus a deduplicated set of citations.
type FusedContext struct {
	// Blocks are formatted context blocks in collection iteration order,
	// then hit rank within each collection. No global re-ranking.
	Blocks []string

	// Citations are human-readable source attributions, deduplicated by
	// exact string equality. Order is not significant.
	Citations []string
}

// Empty reports whether no collection contributed any context.
func (f *FusedContext) Empty() bool {
	return len(f.Blocks) == 0
}

// ContextDelimiter separates context blocks in the rendered string.
const ContextDelimiter = "\n\n---\n\n"

// Render joins the context blocks into the single string handed to the
// answer synthesizer.
func (f *FusedContext) Render() string {
	return strings.Join(f.Blocks, ContextDelimiter)
}

// Answer is the user-visible outcome of a question.
type Answer struct {
	// Text is the synthesized answer, or the no-information message.
	Text string

	// Sources are the deduplicated citations behind the answer.
	Sources []string

	// Found is false when no collection returned any context. This is
	// the distinct "no information" outcome, not an error.
	Found bool
}

// NoInformationMessage is returned when retrieval finds no context.
const NoInformationMessage = "No relevant information was found in the indexed sources."
