// Package ui formats terminal output for the cad CLI.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	idPrefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))

	stateStyles = map[string]lipgloss.Style{
		"running": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		"paused":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"done":    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"failed":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		"due":     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		"overdue": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
)

// ColorEnabled reports whether stdout should receive ANSI styling.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the stdout width, or fallback when stdout is not a terminal.
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func render(style lipgloss.Style, value string) string {
	if value == "" || !ColorEnabled() {
		return value
	}
	return style.Render(value)
}

// HighlightID returns an ID with its unique prefix highlighted.
func HighlightID(id string, prefixLen int) string {
	if id == "" || prefixLen <= 0 || prefixLen > len(id) {
		return id
	}
	if !ColorEnabled() {
		return id
	}
	return idPrefixStyle.Render(id[:prefixLen]) + id[prefixLen:]
}

// State colors a state word such as "running" or "failed". Unknown words
// are returned unchanged.
func State(value string) string {
	style, ok := stateStyles[value]
	if !ok {
		return value
	}
	return render(style, value)
}

// Label styles a field label in detail views.
func Label(value string) string {
	return render(labelStyle, value)
}
