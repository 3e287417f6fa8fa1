package report

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()

	// Block-level tags become line breaks before stripping, otherwise the
	// narrative collapses into one long line.
	blockTagRe = regexp.MustCompile(`(?i)<\s*/?\s*(?:p|div|br|h[1-6]|li|ul|ol|tr|table)\b[^>]*>`)
	multiBlank = regexp.MustCompile(`\n\s*\n\s*\n+`)
	multiSpace = regexp.MustCompile(`[ \t]{2,}`)
)

// StripHTML flattens an HTML-ish narrative blob to plain text: tags removed,
// entities decoded, block structure kept as newlines. Empty input stays
// empty so callers can skip the narrative block entirely.
func StripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	t := blockTagRe.ReplaceAllString(s, "\n")
	t = stripPolicy.Sanitize(t)
	t = html.UnescapeString(t)
	t = strings.ReplaceAll(t, " ", " ")
	t = multiBlank.ReplaceAllString(t, "\n\n")
	t = multiSpace.ReplaceAllString(t, " ")

	lines := strings.Split(t, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
