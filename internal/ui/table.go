package ui

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// TableBuilder collects rows and renders an aligned table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row ...string) {
	builder.rows = append(builder.rows, row)
}

// Len returns the number of rows added.
func (builder *TableBuilder) Len() int {
	return len(builder.rows)
}

// String renders the table.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows with two spaces between columns.
// Widths are measured on visible characters, so styled cells line up.
func FormatTable(headers []string, rows [][]string) string {
	styledHeaders := make([]string, len(headers))
	widths := make([]int, len(headers))
	for i, header := range headers {
		header = normalizeTableCell(header)
		widths[i] = ansi.PrintableRuneWidth(header)
		styledHeaders[i] = render(headerStyle, header)
	}

	normalized := make([][]string, len(rows))
	for r, row := range rows {
		normalized[r] = make([]string, len(row))
		for i, cell := range row {
			cell = normalizeTableCell(cell)
			normalized[r][i] = cell
			if i < len(widths) {
				widths[i] = max(widths[i], ansi.PrintableRuneWidth(cell))
			}
		}
	}

	var builder strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				builder.WriteByte('\n')
				continue
			}
			padding := 0
			if i < len(widths) {
				padding = widths[i] - ansi.PrintableRuneWidth(cell)
			}
			builder.WriteString(strings.Repeat(" ", padding+2))
		}
	}

	writeRow(styledHeaders)
	for _, row := range normalized {
		writeRow(row)
	}
	return builder.String()
}

// TruncateTableCell limits a cell's visible width, keeping ANSI sequences intact.
func TruncateTableCell(value string) string {
	value = normalizeTableCell(value)
	if ansi.PrintableRuneWidth(value) <= tableCellMaxWidth {
		return value
	}
	return truncate.StringWithTail(value, tableCellMaxWidth, tableCellEllipsis)
}

func normalizeTableCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
