package llm

import (
	"strings"
	"unicode"
)

const fence = "```"

// Sanitize strips a markdown code-fence wrapper from raw model output.
// Models often wrap JSON in ```json ... ``` blocks even when told not to.
//
// The text is unwrapped only when it both opens and closes with a fence; the
// optional language tag on the opening line, or before the first space of a
// one-line block, is dropped with it. Anything else is returned trimmed but
// otherwise unchanged.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 2*len(fence) || !strings.HasPrefix(text, fence) || !strings.HasSuffix(text, fence) {
		return text
	}

	body := text[len(fence) : len(text)-len(fence)]
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		if isLanguageTag(strings.TrimSpace(body[:idx])) {
			body = body[idx+1:]
		}
	} else if idx := strings.IndexFunc(body, unicode.IsSpace); idx > 0 {
		// One-line fence: the tag ends at the first whitespace.
		if isLanguageTag(body[:idx]) {
			body = body[idx:]
		}
	}

	return strings.TrimSpace(body)
}

// isLanguageTag reports whether the remainder of an opening fence line is a
// language identifier (json, JSON, javascript...) rather than content.
func isLanguageTag(s string) bool {
	if s == "" {
		return true
	}
	return len(s) < 20 && !strings.ContainsAny(s, " \t{[\"'")
}
