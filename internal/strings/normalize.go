// Package strings holds small text normalization helpers.
package strings

import (
	"strings"
)

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// NormalizeNewlines replaces CRLF and CR with LF.
func NormalizeNewlines(value string) string {
	if value == "" {
		return value
	}
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.ReplaceAll(value, "\r", "\n")
}

// TrimTrailingNewlines removes trailing CR/LF characters.
func TrimTrailingNewlines(value string) string {
	return strings.TrimRight(value, "\r\n")
}

// IsBlank reports whether value is empty or only whitespace.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
