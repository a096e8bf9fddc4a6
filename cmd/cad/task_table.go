package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/amonks/cadence/internal/ids"
	"github.com/amonks/cadence/internal/ui"
	"github.com/amonks/cadence/task"
)

const detailWidth = 80

func allTaskIDs(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// taskStatus is the single word shown for a task's state.
func taskStatus(t task.Task) string {
	switch {
	case t.Completed:
		return "done"
	case t.Failed:
		return "failed"
	default:
		return string(t.TimerState)
	}
}

func formatTracked(seconds int64) string {
	return ui.FormatTracked(seconds)
}

func formatTaskTable(tasks []task.Task, prefixIDs []string) string {
	prefixLengths := ids.UniquePrefixLengths(prefixIDs)
	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "TRACKED", "ESTIMATE", "DATE", "CATEGORY", "DESCRIPTION"}, len(tasks))
	for _, t := range tasks {
		date := "-"
		if t.ScheduledDate != nil {
			date = t.ScheduledDate.String()
		}
		category := t.Category
		if category == "" {
			category = "-"
		}
		builder.AddRow(
			ui.HighlightID(t.ID, prefixLengths[strings.ToLower(t.ID)]),
			ui.State(taskStatus(t)),
			formatTracked(t.ActualTimeSpent),
			ui.FormatEstimate(t.EstimatedTime),
			date,
			category,
			ui.TruncateTableCell(t.Description),
		)
	}
	return builder.String()
}

func formatTaskDetail(t task.Task) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", ui.Label(fmt.Sprintf("%-10s", label+":")), value)
	}

	field("ID", t.ID)
	field("Status", ui.State(taskStatus(t)))
	field("Timer", string(t.TimerState))
	field("Tracked", fmt.Sprintf("%s of %s", ui.FormatClock(t.ActualTimeSpent), ui.FormatEstimate(t.EstimatedTime)))
	if t.Category != "" {
		field("Category", t.Category)
	}
	if t.ScheduledDate != nil {
		field("Date", t.ScheduledDate.String())
	}
	field("Created", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		field("Completed", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString("\n")
	b.WriteString(ui.Reflow(t.Description, detailWidth, 2))
	b.WriteString("\n")
	return b.String()
}

func formatTaskStats(stats task.Stats, totalReviews int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tasks:     %d\n", stats.Total)
	fmt.Fprintf(&b, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(&b, "Failed:    %d\n", stats.Failed)
	fmt.Fprintf(&b, "Tracked:   %s\n", formatTracked(stats.TotalTimeSpent))
	fmt.Fprintf(&b, "Reviews:   %d\n", totalReviews)

	if len(stats.Days) > 0 {
		b.WriteString("\n")
		days := ui.NewTableBuilder([]string{"DATE", "COMPLETED", "FAILED"}, len(stats.Days))
		for _, day := range stats.Days {
			days.AddRow(day.Date.String(), fmt.Sprint(day.Completed), fmt.Sprint(day.Failed))
		}
		b.WriteString(days.String())
	}

	if len(stats.Categories) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(stats.Categories))
		for name := range stats.Categories {
			names = append(names, name)
		}
		slices.Sort(names)
		categories := ui.NewTableBuilder([]string{"CATEGORY", "COMPLETED"}, len(names))
		for _, name := range names {
			categories.AddRow(name, fmt.Sprint(stats.Categories[name]))
		}
		b.WriteString(categories.String())
	}
	return b.String()
}

func emptyListMessage(total int, noun, createHint string) string {
	if total == 0 {
		return fmt.Sprintf("No %s yet. Create one with `%s`.", noun, createHint)
	}
	return fmt.Sprintf("No %s match the filters.", noun)
}
