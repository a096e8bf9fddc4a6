package review

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/amonks/cadence/events"
	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/internal/ids"
	"github.com/amonks/cadence/internal/logging"
	"github.com/amonks/cadence/internal/snapshot"
)

// Options configures Open.
type Options struct {
	Persister snapshot.Persister
	Logger    *slog.Logger
	Now       func() time.Time
	Events    events.Publisher
}

// Scheduler owns the review items, kept sorted by next review date.
// All methods are safe for concurrent use and return copies.
type Scheduler struct {
	mu    sync.Mutex
	items []Item

	persister snapshot.Persister
	logger    *slog.Logger
	now       func() time.Time
	events    events.Publisher
}

// Open hydrates a scheduler from opts.Persister.
func Open(opts Options) (*Scheduler, error) {
	if opts.Persister == nil {
		return nil, fmt.Errorf("open review scheduler: persister is required")
	}
	s := &Scheduler{
		persister: opts.Persister,
		logger:    logging.OrDiscard(opts.Logger),
		now:       opts.Now,
		events:    events.OrDiscard(opts.Events),
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked(snapshot.Decode[Item](s.persister, SnapshotKey, s.logger))
	return s, nil
}

func (s *Scheduler) hydrateLocked(loaded []Item) {
	today := dates.Today(s.now())
	seen := make(map[string]bool, len(loaded))
	s.items = make([]Item, 0, len(loaded))

	for _, it := range loaded {
		if it.ID == "" || seen[it.ID] {
			s.logger.Warn("dropping review item with missing or duplicate id", "id", it.ID)
			continue
		}
		seen[it.ID] = true

		if it.FirstReviewDate.IsZero() {
			it.FirstReviewDate = today
		}
		if it.NextReviewDate.IsZero() {
			it.NextReviewDate = it.FirstReviewDate
		}
		if it.IntervalDays < MinIntervalDays {
			it.IntervalDays = MinIntervalDays
		}
		if it.TimesReviewed < 0 {
			it.TimesReviewed = 0
		}
		if it.Difficulty != "" && !it.Difficulty.IsValid() {
			s.logger.Warn("clearing unknown difficulty", "id", it.ID, "difficulty", it.Difficulty)
			it.Difficulty = ""
		}
		s.items = append(s.items, it)
	}
	s.sortLocked()
}

// sortLocked orders items by next review date. Ties keep their order.
func (s *Scheduler) sortLocked() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].NextReviewDate.Before(s.items[j].NextReviewDate)
	})
}

func (s *Scheduler) persistLocked() {
	data, err := snapshot.Encode(s.items)
	if err != nil {
		s.logger.Error("encode review items failed", "error", err)
		return
	}
	s.persister.Save(SnapshotKey, data)
}

func (s *Scheduler) publish(eventType string, it Item, now time.Time) {
	s.events.Publish(events.Event{
		Type:      eventType,
		EntityID:  it.ID,
		Timestamp: now.UTC(),
		Data:      it.clone(),
	})
}

func (s *Scheduler) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// ValidateTitle trims title and checks it.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxTitleLength {
		return "", fmt.Errorf("%w (got %d)", ErrTitleTooLong, n)
	}
	return trimmed, nil
}

// AddItem schedules a new item for its first review.
func (s *Scheduler) AddItem(title string, opts AddOptions) (*Item, error) {
	trimmed, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	if opts.Difficulty != "" && !opts.Difficulty.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDifficulty, opts.Difficulty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	first := dates.Today(now)
	if opts.FirstReviewDate != nil {
		first = *opts.FirstReviewDate
	}
	it := Item{
		ID: ids.NewUnique(func(id string) bool {
			return s.indexLocked(id) >= 0
		}),
		Title:           trimmed,
		Content:         opts.Content,
		FirstReviewDate: first,
		NextReviewDate:  first,
		Difficulty:      opts.Difficulty,
		IntervalDays:    MinIntervalDays,
		CreatedAt:       now,
	}

	s.items = append(s.items, it)
	s.sortLocked()
	s.persistLocked()
	s.publish(events.ReviewAdded, it, now)
	out := it.clone()
	return &out, nil
}

// UpdateItem overwrites the fields set in opts.
func (s *Scheduler) UpdateItem(id string, opts UpdateOptions) (*Item, error) {
	var title string
	if opts.Title != nil {
		trimmed, err := ValidateTitle(*opts.Title)
		if err != nil {
			return nil, err
		}
		title = trimmed
	}
	if opts.Difficulty != nil && *opts.Difficulty != "" && !opts.Difficulty.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDifficulty, *opts.Difficulty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, notFound(id)
	}

	it := &s.items[i]
	if opts.Title != nil {
		it.Title = title
	}
	if opts.Content != nil {
		it.Content = *opts.Content
	}
	if opts.FirstReviewDate != nil {
		it.FirstReviewDate = *opts.FirstReviewDate
	}
	if opts.NextReviewDate != nil {
		it.NextReviewDate = *opts.NextReviewDate
	}
	if opts.Difficulty != nil {
		it.Difficulty = *opts.Difficulty
	}
	updated := it.clone()

	s.sortLocked()
	s.persistLocked()
	s.publish(events.ReviewUpdated, updated, s.now())
	return &updated, nil
}

// DeleteItem removes an item. Unknown ids are ignored. It reports whether
// an item was removed.
func (s *Scheduler) DeleteItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}

	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persistLocked()
	s.publish(events.ReviewDeleted, removed, s.now())
	return true
}

// MarkReviewed records a review today and schedules the next one.
func (s *Scheduler) MarkReviewed(id string, difficulty Difficulty) (*Item, error) {
	if !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDifficulty, difficulty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, notFound(id)
	}

	now := s.now()
	today := dates.Today(now)
	it := &s.items[i]
	it.TimesReviewed++
	it.IntervalDays = AdaptInterval(it.IntervalDays, difficulty, it.TimesReviewed)
	it.NextReviewDate = today.AddDays(it.IntervalDays)
	it.LastReviewedDate = dates.Ptr(today)
	it.Difficulty = difficulty
	updated := it.clone()

	s.sortLocked()
	s.persistLocked()
	s.publish(events.ReviewReviewed, updated, now)
	return &updated, nil
}

// ItemsDueOn returns items whose next review is exactly date.
func (s *Scheduler) ItemsDueOn(date dates.Date) []Item {
	return s.filter(func(it Item) bool {
		return it.NextReviewDate == date
	})
}

// ItemsDueBy returns items whose next review is on or before date.
func (s *Scheduler) ItemsDueBy(date dates.Date) []Item {
	return s.filter(func(it Item) bool {
		return !it.NextReviewDate.After(date)
	})
}

// List returns every item in schedule order.
func (s *Scheduler) List() []Item {
	return s.filter(func(Item) bool { return true })
}

func (s *Scheduler) filter(keep func(Item) bool) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Item{}
	for _, it := range s.items {
		if keep(it) {
			out = append(out, it.clone())
		}
	}
	return out
}

// Get returns an item by id.
func (s *Scheduler) Get(id string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, notFound(id)
	}
	out := s.items[i].clone()
	return &out, nil
}

// Resolve expands a unique id prefix to a full item id.
func (s *Scheduler) Resolve(prefix string) (string, error) {
	s.mu.Lock()
	itemIDs := make([]string, len(s.items))
	for i, it := range s.items {
		itemIDs[i] = it.ID
	}
	s.mu.Unlock()

	id, err := ids.MatchPrefix(itemIDs, prefix)
	switch {
	case errors.Is(err, ids.ErrAmbiguousPrefix):
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	case err != nil:
		return "", notFound(prefix)
	}
	return id, nil
}

// TotalReviews sums TimesReviewed over every item.
func (s *Scheduler) TotalReviews() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.TimesReviewed
	}
	return total
}
