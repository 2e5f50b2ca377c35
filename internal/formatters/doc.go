// Package formatters renders canonical documents and retrieval hits as
// human-readable text, one formatter per source tag.
//
// The per-source templates are deliberate business logic, not cosmetics:
// downstream answer quality depends on which fields are foregrounded for
// each source (a ticket leads with its key and status, a chat message
// with its sender and channel). The templates are therefore kept
// separate per tag rather than merged into one generic layout, with an
// explicit fallback for unrecognised shapes.
package formatters
