// Package review schedules spaced-repetition review items.
package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/cadence/internal/dates"
)

// MaxTitleLength is the longest allowed title, in characters.
const MaxTitleLength = 200

// SnapshotKey is the snapshot key review items persist under.
const SnapshotKey = "reviews"

// Difficulty is how hard a review felt.
type Difficulty string

// Difficulties.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every difficulty, easiest first.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	default:
		return false
	}
}

// ParseDifficulty reads a difficulty name, ignoring case and surrounding space.
func ParseDifficulty(value string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(value)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q (want easy, medium or hard)", ErrInvalidDifficulty, value)
	}
	return d, nil
}

// Item is something to revisit on a widening schedule.
type Item struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Content          string      `json:"content,omitempty"`
	FirstReviewDate  dates.Date  `json:"first_review_date"`
	LastReviewedDate *dates.Date `json:"last_reviewed_date,omitempty"`
	NextReviewDate   dates.Date  `json:"next_review_date"`
	Difficulty       Difficulty  `json:"difficulty,omitempty"`
	IntervalDays     int         `json:"interval_days"`
	TimesReviewed    int         `json:"times_reviewed"`
	CreatedAt        time.Time   `json:"created_at"`
}

// AddOptions holds the optional fields of AddItem.
type AddOptions struct {
	Content string

	// FirstReviewDate defaults to today.
	FirstReviewDate *dates.Date

	// Difficulty is an initial hint; it does not affect scheduling.
	Difficulty Difficulty
}

// UpdateOptions lists fields to overwrite. Nil fields are left alone.
// A pointer to an empty Difficulty clears it.
type UpdateOptions struct {
	Title           *string
	Content         *string
	FirstReviewDate *dates.Date
	NextReviewDate  *dates.Date
	Difficulty      *Difficulty
}

func (it Item) clone() Item {
	out := it
	if it.LastReviewedDate != nil {
		out.LastReviewedDate = dates.Ptr(*it.LastReviewedDate)
	}
	return out
}
