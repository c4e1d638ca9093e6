package utils

import (
	"strings"
)

// SanitizeJSON strips the Markdown fencing language models tend to wrap
// around JSON answers. The opening fence may carry a language tag (```json)
// and the closing fence is sometimes missing when a response was truncated.
func SanitizeJSON(input string) string {
	cleaned := strings.TrimSpace(input)

	if after, ok := strings.CutPrefix(cleaned, "```"); ok {
		if _, rest, found := strings.Cut(after, "\n"); found {
			cleaned = rest
		} else {
			cleaned = strings.TrimPrefix(after, "json")
		}
		if i := strings.LastIndex(cleaned, "```"); i >= 0 {
			cleaned = cleaned[:i]
		}
	}

	return strings.TrimSpace(cleaned)
}
