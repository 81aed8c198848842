// Package sanitize provides text sanitization utilities for untrusted input.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Text removes control characters (except newlines and tabs) from a string
// and trims surrounding whitespace. Use for caller-provided text such as
// transcripts before embedding them in prompts or storing them.
func Text(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

// Truncate limits a string to at most maxLen bytes without splitting a
// multi-byte rune, appending an ellipsis marker when content was cut off.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
