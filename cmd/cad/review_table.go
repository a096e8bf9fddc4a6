package main

import (
	"fmt"
	"strings"

	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/internal/ids"
	"github.com/amonks/cadence/internal/markdown"
	"github.com/amonks/cadence/internal/ui"
	"github.com/amonks/cadence/review"
)

func allReviewIDs(items []review.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func formatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// dueLabel describes when an item is next due relative to today.
func dueLabel(next, today dates.Date) string {
	switch diff := today.DaysUntil(next); {
	case diff < 0:
		return ui.State("overdue")
	case diff == 0:
		return ui.State("due")
	default:
		return "in " + formatDays(diff)
	}
}

func formatReviewTable(items []review.Item, prefixIDs []string, today dates.Date) string {
	prefixLengths := ids.UniquePrefixLengths(prefixIDs)
	builder := ui.NewTableBuilder([]string{"ID", "NEXT", "DUE", "INTERVAL", "REVIEWS", "DIFFICULTY", "TITLE"}, len(items))
	for _, it := range items {
		difficulty := string(it.Difficulty)
		if difficulty == "" {
			difficulty = "-"
		}
		builder.AddRow(
			ui.HighlightID(it.ID, prefixLengths[strings.ToLower(it.ID)]),
			it.NextReviewDate.String(),
			dueLabel(it.NextReviewDate, today),
			formatDays(it.IntervalDays),
			fmt.Sprint(it.TimesReviewed),
			difficulty,
			ui.TruncateTableCell(it.Title),
		)
	}
	return builder.String()
}

func formatReviewDetail(it review.Item, today dates.Date) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", ui.Label(fmt.Sprintf("%-10s", label+":")), value)
	}

	field("ID", it.ID)
	field("Title", it.Title)
	field("Next", fmt.Sprintf("%s (%s)", it.NextReviewDate, dueLabel(it.NextReviewDate, today)))
	field("First", it.FirstReviewDate.String())
	if it.LastReviewedDate != nil {
		field("Last", it.LastReviewedDate.String())
	}
	field("Interval", formatDays(it.IntervalDays))
	field("Reviews", fmt.Sprint(it.TimesReviewed))
	if it.Difficulty != "" {
		field("Difficulty", string(it.Difficulty))
	}

	if notes := markdown.Render(it.Content, ui.TerminalWidth(detailWidth), 2); notes != "" {
		b.WriteString("\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}
	return b.String()
}
