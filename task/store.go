package task

import (
	"errors"
	"fmt"
	"log/slog"
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
	// Persister loads the initial collection and receives every mutation.
	Persister snapshot.Persister

	// Logger receives hydrate repairs and persist failures. Nil discards.
	Logger *slog.Logger

	// Now is the store clock. Nil means time.Now.
	Now func() time.Time

	// Events receives one event per successful mutation. Nil discards.
	Events events.Publisher
}

// Store owns the task collection. All methods are safe for concurrent use
// and return copies.
type Store struct {
	mu        sync.Mutex
	tasks     []Task
	runningID string

	persister snapshot.Persister
	logger    *slog.Logger
	now       func() time.Time
	events    events.Publisher
}

// Open hydrates a store from opts.Persister.
func Open(opts Options) (*Store, error) {
	if opts.Persister == nil {
		return nil, fmt.Errorf("open task store: persister is required")
	}
	s := &Store{
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
	s.hydrateLocked(snapshot.Decode[Task](s.persister, SnapshotKey, s.logger))
	s.refreshLocked(s.now())
	return s, nil
}

// hydrateLocked installs loaded tasks, repairing anything that would break
// the store's invariants.
func (s *Store) hydrateLocked(loaded []Task) {
	now := s.now()
	today := dates.Today(now)
	seen := make(map[string]bool, len(loaded))
	s.tasks = make([]Task, 0, len(loaded))

	for _, t := range loaded {
		if t.ID == "" || seen[t.ID] {
			s.logger.Warn("dropping task with missing or duplicate id", "id", t.ID)
			continue
		}
		seen[t.ID] = true

		if !t.TimerState.IsValid() {
			s.logger.Warn("resetting unknown timer state", "id", t.ID, "state", t.TimerState)
			t.TimerState = TimerIdle
		}
		if t.ActualTimeSpent < 0 {
			t.ActualTimeSpent = 0
		}
		if t.TimerState == TimerRunning && t.TimerStartedAt == nil {
			t.TimerState = TimerPaused
		}
		if t.TimerState == TimerRunning {
			switch {
			case t.Completed:
				t.ActualTimeSpent += t.accrued(now)
				t.TimerState = TimerIdle
				t.TimerStartedAt = nil
			case s.runningID != "":
				s.logger.Warn("pausing extra running timer", "id", t.ID, "running", s.runningID)
				t.ActualTimeSpent += t.accrued(now)
				t.TimerState = TimerPaused
				t.TimerStartedAt = nil
			default:
				s.runningID = t.ID
			}
		}
		if t.TimerState != TimerRunning {
			t.TimerStartedAt = nil
		}
		if !t.Completed {
			t.CompletedAt = nil
		}
		t.Failed = t.overdue(today)
		s.tasks = append(s.tasks, t)
	}
}

// refreshLocked recomputes failed flags. A task stays failed until it is
// completed, and a running task that fails is paused.
func (s *Store) refreshLocked(now time.Time) {
	today := dates.Today(now)
	for i := range s.tasks {
		t := &s.tasks[i]
		switch {
		case t.Completed:
			t.Failed = false
		case t.overdue(today):
			t.Failed = true
		}
		if t.Failed && t.TimerState == TimerRunning {
			t.ActualTimeSpent += t.accrued(now)
			t.TimerState = TimerPaused
			t.TimerStartedAt = nil
			s.runningID = ""
			s.logger.Info("paused timer on failed task", "id", t.ID)
			s.persistLocked()
			s.publish(events.TimerPaused, *t, now)
		}
	}
}

func (s *Store) persistLocked() {
	data, err := snapshot.Encode(s.tasks)
	if err != nil {
		s.logger.Error("encode tasks failed", "error", err)
		return
	}
	s.persister.Save(SnapshotKey, data)
}

func (s *Store) publish(eventType string, t Task, now time.Time) {
	s.events.Publish(events.Event{
		Type:      eventType,
		EntityID:  t.ID,
		Timestamp: now.UTC(),
		Data:      s.view(t, now),
	})
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// lookupLocked refreshes derived state and returns the index of id.
func (s *Store) lookupLocked(id string, now time.Time) (int, error) {
	s.refreshLocked(now)
	i := s.indexLocked(id)
	if i < 0 {
		return -1, notFound(id)
	}
	return i, nil
}

// view returns a copy of t as callers see it at now.
func (s *Store) view(t Task, now time.Time) *Task {
	out := t.clone()
	out.ActualTimeSpent += t.accrued(now)
	return &out
}

// ValidateDescription trims description and checks its length.
func ValidateDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	n := utf8.RuneCountInString(trimmed)
	if n < MinDescriptionLength || n > MaxDescriptionLength {
		return "", fmt.Errorf("%w (got %d)", ErrDescriptionLength, n)
	}
	return trimmed, nil
}

// ValidateEstimate checks an estimate in minutes.
func ValidateEstimate(minutes int) error {
	if minutes < MinEstimatedMinutes || minutes > MaxEstimatedMinutes {
		return fmt.Errorf("%w (got %d)", ErrEstimateRange, minutes)
	}
	return nil
}

// Create validates and appends a new idle task.
func (s *Store) Create(description string, estimatedMinutes int, opts CreateOptions) (*Task, error) {
	trimmed, err := ValidateDescription(description)
	if err != nil {
		return nil, err
	}
	if err := ValidateEstimate(estimatedMinutes); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.refreshLocked(now)

	t := Task{
		ID: ids.NewUnique(func(id string) bool {
			return s.indexLocked(id) >= 0
		}),
		Description:   trimmed,
		EstimatedTime: estimatedMinutes,
		Category:      strings.TrimSpace(opts.Category),
		TimerState:    TimerIdle,
		CreatedAt:     now,
	}
	if opts.ScheduledDate != nil {
		t.ScheduledDate = dates.Ptr(*opts.ScheduledDate)
	}
	t.Failed = t.overdue(dates.Today(now))

	s.tasks = append(s.tasks, t)
	s.persistLocked()
	s.publish(events.TaskCreated, t, now)
	return s.view(t, now), nil
}

// ToggleCompletion flips a task's completed flag. Completing stops the
// timer, keeping any time it accrued.
func (s *Store) ToggleCompletion(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	i, err := s.lookupLocked(id, now)
	if err != nil {
		return nil, err
	}

	t := &s.tasks[i]
	eventType := events.TaskCompleted
	if t.Completed {
		t.Completed = false
		t.CompletedAt = nil
		t.Failed = t.overdue(dates.Today(now))
		eventType = events.TaskReopened
	} else {
		t.ActualTimeSpent += t.accrued(now)
		if s.runningID == t.ID {
			s.runningID = ""
		}
		t.TimerState = TimerIdle
		t.TimerStartedAt = nil
		t.Completed = true
		completedAt := now
		t.CompletedAt = &completedAt
		t.Failed = false
	}

	s.persistLocked()
	s.publish(eventType, *t, now)
	return s.view(*t, now), nil
}

// Delete removes a task. Unknown ids are ignored. It reports whether a
// task was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}

	now := s.now()
	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	if s.runningID == id {
		s.runningID = ""
	}
	s.persistLocked()
	s.publish(events.TaskDeleted, removed, now)
	return true
}

// Reorder replaces the collection order. order must name every task exactly once.
func (s *Store) Reorder(order []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(order) != len(s.tasks) {
		return fmt.Errorf("%w: got %d ids for %d tasks", ErrReorderMismatch, len(order), len(s.tasks))
	}
	byID := make(map[string]Task, len(s.tasks))
	for _, t := range s.tasks {
		byID[t.ID] = t
	}
	reordered := make([]Task, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %s", ErrReorderMismatch, id)
		}
		seen[id] = true
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown id %s", ErrReorderMismatch, id)
		}
		reordered = append(reordered, t)
	}

	now := s.now()
	s.tasks = reordered
	s.refreshLocked(now)
	s.persistLocked()
	s.events.Publish(events.Event{
		Type:      events.TaskReordered,
		Timestamp: now.UTC(),
		Data:      append([]string(nil), order...),
	})
	return nil
}

// AddManualTime adds minutes of untracked work to an idle or paused task.
func (s *Store) AddManualTime(id string, minutes int) (*Task, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrNonPositiveMinutes, minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	i, err := s.lookupLocked(id, now)
	if err != nil {
		return nil, err
	}

	t := &s.tasks[i]
	switch {
	case t.Completed:
		return nil, ErrTaskCompleted
	case t.Failed:
		return nil, ErrTaskFailed
	case t.TimerState == TimerRunning:
		return nil, ErrTimerRunning
	}

	t.ActualTimeSpent += int64(minutes) * 60
	s.persistLocked()
	s.publish(events.TaskTimeAdded, *t, now)
	return s.view(*t, now), nil
}

// Get returns a task by id.
func (s *Store) Get(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	i, err := s.lookupLocked(id, now)
	if err != nil {
		return nil, err
	}
	return s.view(s.tasks[i], now), nil
}

// List returns every task in collection order.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.refreshLocked(now)

	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = *s.view(t, now)
	}
	return out
}

// Resolve expands a unique id prefix to a full task id.
func (s *Store) Resolve(prefix string) (string, error) {
	s.mu.Lock()
	taskIDs := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		taskIDs[i] = t.ID
	}
	s.mu.Unlock()

	id, err := ids.MatchPrefix(taskIDs, prefix)
	switch {
	case errors.Is(err, ids.ErrAmbiguousPrefix):
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	case err != nil:
		return "", notFound(prefix)
	}
	return id, nil
}
