// Package markdown renders review notes for the terminal.
package markdown

import (
	"strings"
	"sync"

	internalstrings "github.com/amonks/cadence/internal/strings"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/indent"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown for a terminal of the given width, indenting every
// line by spaces. Blank input renders as "". When glamour fails or panics,
// the normalized source is returned instead.
func Render(input string, width, spaces int) string {
	value := internalstrings.TrimTrailingNewlines(internalstrings.NormalizeNewlines(input))
	if strings.TrimSpace(value) == "" {
		return ""
	}
	renderWidth := max(width-max(spaces, 0), 1)

	rendered := safeRender(rendererFor(renderWidth), value)
	rendered = internalstrings.TrimTrailingNewlines(rendered)
	rendered = strings.TrimLeft(rendered, "\n")
	if strings.TrimSpace(rendered) == "" {
		return ""
	}
	if spaces <= 0 {
		return rendered
	}
	return indent.String(rendered, uint(spaces))
}

func safeRender(r renderer, value string) (out string) {
	if r == nil {
		return value
	}
	defer func() {
		if recover() != nil {
			out = value
		}
	}()
	formatted, err := r.Render(value)
	if err != nil {
		return value
	}
	return formatted
}

func rendererFor(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	style.Document.Margin = uintPtr(0)
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

func uintPtr(v uint) *uint {
	return &v
}
