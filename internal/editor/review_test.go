package editor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/review"
)

func TestRenderReviewTOML(t *testing.T) {
	item := &review.Item{
		ID:             "abc12345",
		Title:          "Spanish verbs",
		NextReviewDate: dates.New(2024, time.June, 14),
		Difficulty:     review.Medium,
		Content:        "- ser\n- ir",
	}

	content, err := RenderReviewTOML(DataFromItem(item))
	if err != nil {
		t.Fatalf("RenderReviewTOML failed: %v", err)
	}
	for _, want := range []string{
		"# review abc12345",
		`title = "Spanish verbs"`,
		`next = "2024-06-14"`,
		`difficulty = "medium"`,
		"---\n- ser\n- ir",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in:\n%s", want, content)
		}
	}
}

func TestRenderThenParseKeepsFields(t *testing.T) {
	item := &review.Item{
		ID:             "abc12345",
		Title:          "Go \"generics\"",
		NextReviewDate: dates.New(2024, time.July, 1),
		Content:        "# Notes\n\nType sets.",
	}
	content, err := RenderReviewTOML(DataFromItem(item))
	if err != nil {
		t.Fatalf("RenderReviewTOML failed: %v", err)
	}

	parsed, err := ParseReviewTOML(content)
	if err != nil {
		t.Fatalf("ParseReviewTOML failed: %v", err)
	}
	if parsed.Title != item.Title {
		t.Errorf("expected title %q, got %q", item.Title, parsed.Title)
	}
	if parsed.Next != item.NextReviewDate {
		t.Errorf("expected next %s, got %s", item.NextReviewDate, parsed.Next)
	}
	if parsed.Difficulty != "" {
		t.Errorf("expected no difficulty, got %q", parsed.Difficulty)
	}
	if parsed.Content != item.Content {
		t.Errorf("expected content %q, got %q", item.Content, parsed.Content)
	}
}

func TestParseReviewTOMLNormalizesDifficulty(t *testing.T) {
	parsed, err := ParseReviewTOML("title = \"x\"\nnext = \"2024-06-10\"\ndifficulty = \" HARD \"\n---\n")
	if err != nil {
		t.Fatalf("ParseReviewTOML failed: %v", err)
	}
	if parsed.Difficulty != review.Hard {
		t.Fatalf("expected hard, got %q", parsed.Difficulty)
	}
}

func TestParseReviewTOMLRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"blank title":  "title = \"  \"\nnext = \"2024-06-10\"\n---\n",
		"missing next": "title = \"x\"\n---\n",
		"bad date":     "title = \"x\"\nnext = \"June\"\n---\n",
		"bad level":    "title = \"x\"\nnext = \"2024-06-10\"\ndifficulty = \"trivial\"\n---\n",
		"bad toml":     "title = \n---\n",
	}
	for name, content := range cases {
		if _, err := ParseReviewTOML(content); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	_, err := ParseReviewTOML("title = \"\"\nnext = \"2024-06-10\"\n---\n")
	if !errors.Is(err, review.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestToUpdateOptionsSetsEveryField(t *testing.T) {
	parsed := &ParsedReview{Title: "t", Next: dates.New(2024, time.June, 10), Content: "c"}
	opts := parsed.ToUpdateOptions()
	if opts.Title == nil || opts.Content == nil || opts.NextReviewDate == nil || opts.Difficulty == nil {
		t.Fatalf("expected every field set, got %+v", opts)
	}
	if opts.FirstReviewDate != nil {
		t.Fatal("expected first review date untouched")
	}
	if *opts.Difficulty != "" {
		t.Fatalf("expected cleared difficulty, got %q", *opts.Difficulty)
	}
}
