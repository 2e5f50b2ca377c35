package teams

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions for HTML flattening.
var (
	blockClose  = regexp.MustCompile(`(?i)</(p|div|br|h[1-6]|li|blockquote|pre|table|tr)>`)
	brTags      = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags     = regexp.MustCompile(`<[^>]+>`)
	multiSpaces = regexp.MustCompile(`[ \t]+`)
)

// flattenHTML converts a Graph HTML message body to readable text.
// Teams bodies are small fragments, so tag stripping with block-element
// line breaks is sufficient.
func flattenHTML(content string) string {
	content = brTags.ReplaceAllString(content, "\n")
	content = blockClose.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}
