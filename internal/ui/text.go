package ui

import (
	"strings"

	internalstrings "github.com/amonks/cadence/internal/strings"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Reflow wraps each paragraph of value to width and indents every line.
// Paragraphs are separated by blank lines; whitespace inside a paragraph
// is collapsed.
func Reflow(value string, width, spaces int) string {
	value = strings.TrimSpace(internalstrings.NormalizeNewlines(value))
	if value == "" {
		return ""
	}
	if width-spaces < 1 {
		width = spaces + 1
	}

	var paragraphs []string
	for _, paragraph := range strings.Split(value, "\n\n") {
		normalized := internalstrings.NormalizeWhitespace(paragraph)
		if normalized == "" {
			continue
		}
		paragraphs = append(paragraphs, wordwrap.String(normalized, width-spaces))
	}
	return indent.String(strings.Join(paragraphs, "\n\n"), uint(max(spaces, 0)))
}
