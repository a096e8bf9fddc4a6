package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/review"
)

// ReviewData is rendered into the editable review document.
type ReviewData struct {
	ID             string
	Title          string
	NextReviewDate dates.Date
	Difficulty     review.Difficulty
	Content        string
}

// DataFromItem copies the editable fields of a review item.
func DataFromItem(it *review.Item) ReviewData {
	return ReviewData{
		ID:             it.ID,
		Title:          it.Title,
		NextReviewDate: it.NextReviewDate,
		Difficulty:     it.Difficulty,
		Content:        it.Content,
	}
}

var reviewTemplate = template.Must(template.New("review").Parse(`# review {{ .ID }}
title = {{ printf "%q" .Title }}
next = {{ printf "%q" .NextReviewDate.String }} # yyyy-mm-dd
difficulty = {{ printf "%q" .Difficulty }} # easy, medium, hard, or empty
---
{{ .Content }}
`))

// RenderReviewTOML renders the review as TOML frontmatter and a markdown body.
func RenderReviewTOML(data ReviewData) (string, error) {
	var buf bytes.Buffer
	if err := reviewTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ParsedReview is the result of editing a review document.
type ParsedReview struct {
	Title      string            `toml:"title"`
	Next       dates.Date        `toml:"next"`
	Difficulty review.Difficulty `toml:"difficulty"`
	Content    string            `toml:"-"`
}

// ParseReviewTOML parses an edited review document.
func ParseReviewTOML(content string) (*ParsedReview, error) {
	frontmatter, body := splitFrontmatter(content)

	var parsed ParsedReview
	if _, err := toml.Decode(frontmatter, &parsed); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	parsed.Content = strings.TrimRight(strings.TrimLeft(body, "\n"), "\n")

	title, err := review.ValidateTitle(parsed.Title)
	if err != nil {
		return nil, err
	}
	parsed.Title = title
	if parsed.Next.IsZero() {
		return nil, fmt.Errorf("%w: next review date is required", review.ErrValidation)
	}
	if parsed.Difficulty != "" {
		d, err := review.ParseDifficulty(string(parsed.Difficulty))
		if err != nil {
			return nil, err
		}
		parsed.Difficulty = d
	}
	return &parsed, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return content, ""
}

// EditReview opens the item in $EDITOR and returns the parsed result.
func EditReview(existing *review.Item) (*ParsedReview, error) {
	content, err := RenderReviewTOML(DataFromItem(existing))
	if err != nil {
		return nil, err
	}

	tmpfile, err := os.CreateTemp("", "cad-review-*.md")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return ParseReviewTOML(string(edited))
}

// ToUpdateOptions overwrites every editable field.
func (p *ParsedReview) ToUpdateOptions() review.UpdateOptions {
	next := p.Next
	difficulty := p.Difficulty
	return review.UpdateOptions{
		Title:          &p.Title,
		Content:        &p.Content,
		NextReviewDate: &next,
		Difficulty:     &difficulty,
	}
}
