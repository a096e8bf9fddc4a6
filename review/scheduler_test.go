package review

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amonks/cadence/events"
	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/internal/snapshot"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	scheduler *Scheduler
	clock     *fakeClock
	backend   *snapshot.Memory
	writer    *snapshot.Writer
	events    *events.Recorder
}

func openTestScheduler(t *testing.T) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, time.June, 10, 9, 0, 0, 0, time.Local)}
	return openTestSchedulerWith(t, snapshot.NewMemory(), clock)
}

func openTestSchedulerWith(t *testing.T, backend *snapshot.Memory, clock *fakeClock) *testEnv {
	t.Helper()
	writer := snapshot.NewWriter(backend, nil)
	t.Cleanup(func() { writer.Close() })
	recorder := &events.Recorder{}

	scheduler, err := Open(Options{Persister: writer, Now: clock.Now, Events: recorder})
	if err != nil {
		t.Fatalf("failed to open scheduler: %v", err)
	}
	return &testEnv{scheduler: scheduler, clock: clock, backend: backend, writer: writer, events: recorder}
}

func (e *testEnv) today() dates.Date {
	return dates.Today(e.clock.Now())
}

func mustAdd(t *testing.T, s *Scheduler, title string, first dates.Date) *Item {
	t.Helper()
	it, err := s.AddItem(title, AddOptions{FirstReviewDate: &first})
	if err != nil {
		t.Fatalf("failed to add item: %v", err)
	}
	return it
}

func assertSorted(t *testing.T, items []Item) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		if items[i].NextReviewDate.Before(items[i-1].NextReviewDate) {
			t.Fatalf("items out of order at %d: %s before %s", i, items[i-1].NextReviewDate, items[i].NextReviewDate)
		}
	}
}

func TestScheduler_AddItem(t *testing.T) {
	env := openTestScheduler(t)

	it, err := env.scheduler.AddItem("  Go generics  ", AddOptions{Content: "# notes"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if it.Title != "Go generics" || it.Content != "# notes" {
		t.Errorf("unexpected item %+v", it)
	}
	if it.FirstReviewDate != env.today() || it.NextReviewDate != env.today() {
		t.Errorf("expected first and next review today, got %s/%s", it.FirstReviewDate, it.NextReviewDate)
	}
	if it.IntervalDays != 1 || it.TimesReviewed != 0 || it.LastReviewedDate != nil {
		t.Errorf("expected fresh schedule, got %+v", it)
	}
	if !it.CreatedAt.Equal(env.clock.Now()) {
		t.Errorf("expected created_at now, got %v", it.CreatedAt)
	}
}

func TestScheduler_AddItemValidation(t *testing.T) {
	env := openTestScheduler(t)

	if _, err := env.scheduler.AddItem("   ", AddOptions{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}
	if _, err := env.scheduler.AddItem(strings.Repeat("t", 201), AddOptions{}); !errors.Is(err, ErrTitleTooLong) {
		t.Fatalf("expected ErrTitleTooLong, got %v", err)
	}
	if _, err := env.scheduler.AddItem("Title", AddOptions{Difficulty: "brutal"}); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestScheduler_SortInvariant(t *testing.T) {
	env := openTestScheduler(t)
	today := env.today()

	c := mustAdd(t, env.scheduler, "C", today.AddDays(5))
	a := mustAdd(t, env.scheduler, "A", today)
	b1 := mustAdd(t, env.scheduler, "B1", today.AddDays(2))
	b2 := mustAdd(t, env.scheduler, "B2", today.AddDays(2))
	assertSorted(t, env.scheduler.List())

	list := env.scheduler.List()
	got := []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID}
	want := []string{a.ID, b1.ID, b2.ID, c.ID}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected insertion order among ties, got %v", got)
	}

	if _, err := env.scheduler.MarkReviewed(a.ID, Easy); err != nil {
		t.Fatalf("mark reviewed failed: %v", err)
	}
	assertSorted(t, env.scheduler.List())

	next := today.AddDays(10)
	if _, err := env.scheduler.UpdateItem(b1.ID, UpdateOptions{NextReviewDate: &next}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	list = env.scheduler.List()
	assertSorted(t, list)
	if list[len(list)-1].ID != b1.ID {
		t.Fatalf("expected B1 last after moving it out, got %s", list[len(list)-1].Title)
	}
}

func TestScheduler_MarkReviewed(t *testing.T) {
	env := openTestScheduler(t)
	today := env.today()
	it := mustAdd(t, env.scheduler, "Flashcard", today)

	first, err := env.scheduler.MarkReviewed(it.ID, Easy)
	if err != nil {
		t.Fatalf("mark reviewed failed: %v", err)
	}
	if first.TimesReviewed != 1 || first.IntervalDays != 4 {
		t.Fatalf("expected first easy review to give 4 days, got %+v", first)
	}
	if first.NextReviewDate != today.AddDays(4) || first.LastReviewedDate == nil || *first.LastReviewedDate != today {
		t.Fatalf("unexpected dates %+v", first)
	}
	if first.Difficulty != Easy {
		t.Fatalf("expected difficulty stored, got %q", first.Difficulty)
	}

	env.clock.Advance(4 * 24 * time.Hour)
	second, err := env.scheduler.MarkReviewed(it.ID, Easy)
	if err != nil {
		t.Fatalf("mark reviewed failed: %v", err)
	}
	if second.TimesReviewed != 2 || second.IntervalDays != 8 {
		t.Fatalf("expected interval to double to 8, got %+v", second)
	}
	if second.NextReviewDate != env.today().AddDays(8) {
		t.Fatalf("expected next review in 8 days, got %s", second.NextReviewDate)
	}

	third, _ := env.scheduler.MarkReviewed(it.ID, Hard)
	if third.IntervalDays != 6 {
		t.Fatalf("expected hard review to shrink 8 to 6, got %d", third.IntervalDays)
	}

	if _, err := env.scheduler.MarkReviewed("missing", Easy); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.scheduler.MarkReviewed(it.ID, "meh"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if env.scheduler.TotalReviews() != 3 {
		t.Fatalf("expected 3 total reviews, got %d", env.scheduler.TotalReviews())
	}
}

func TestScheduler_UpdateItem(t *testing.T) {
	env := openTestScheduler(t)
	it := mustAdd(t, env.scheduler, "Original", env.today())

	title := "Renamed"
	content := "new body"
	updated, err := env.scheduler.UpdateItem(it.ID, UpdateOptions{Title: &title, Content: &content})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.Content != "new body" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if updated.NextReviewDate != it.NextReviewDate || updated.IntervalDays != it.IntervalDays {
		t.Fatalf("unset fields changed: %+v", updated)
	}

	blank := " "
	if _, err := env.scheduler.UpdateItem(it.ID, UpdateOptions{Title: &blank}); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := env.scheduler.UpdateItem("missing", UpdateOptions{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduler_DeleteItemIsIdempotent(t *testing.T) {
	env := openTestScheduler(t)
	it := mustAdd(t, env.scheduler, "Temporary", env.today())

	if !env.scheduler.DeleteItem(it.ID) {
		t.Fatal("expected delete to remove the item")
	}
	if env.scheduler.DeleteItem(it.ID) {
		t.Fatal("expected second delete to be a no-op")
	}
	if len(env.scheduler.List()) != 0 {
		t.Fatal("expected no items")
	}
}

func TestScheduler_ItemsDue(t *testing.T) {
	env := openTestScheduler(t)
	today := env.today()

	overdue := mustAdd(t, env.scheduler, "Overdue", today.AddDays(-2))
	dueA := mustAdd(t, env.scheduler, "Due A", today)
	dueB := mustAdd(t, env.scheduler, "Due B", today)
	mustAdd(t, env.scheduler, "Later", today.AddDays(1))

	on := env.scheduler.ItemsDueOn(today)
	if len(on) != 2 || on[0].ID != dueA.ID || on[1].ID != dueB.ID {
		t.Fatalf("unexpected items due on today: %+v", on)
	}

	by := env.scheduler.ItemsDueBy(today)
	if len(by) != 3 || by[0].ID != overdue.ID {
		t.Fatalf("unexpected items due by today: %+v", by)
	}

	if got := env.scheduler.ItemsDueOn(today.AddDays(30)); len(got) != 0 {
		t.Fatalf("expected nothing due, got %d", len(got))
	}
}

func TestScheduler_PersistsAndHydrates(t *testing.T) {
	env := openTestScheduler(t)
	it := mustAdd(t, env.scheduler, "Persisted", env.today())
	env.scheduler.MarkReviewed(it.ID, Medium)
	env.writer.Flush()

	reopened := openTestSchedulerWith(t, env.backend, env.clock)
	got, err := reopened.scheduler.Get(it.ID)
	if err != nil {
		t.Fatalf("get after reopen failed: %v", err)
	}
	if got.TimesReviewed != 1 || got.Difficulty != Medium || got.LastReviewedDate == nil {
		t.Fatalf("unexpected hydrated item %+v", got)
	}
}

func TestScheduler_HydrateRepairsSnapshot(t *testing.T) {
	env := openTestScheduler(t)
	env.backend.Put(SnapshotKey, []byte(`[
		{"id":"late","title":"Late","first_review_date":"2024-06-01","next_review_date":"2024-07-01","interval_days":0},
		{"id":"early","title":"Early","first_review_date":"2024-06-02","difficulty":"extreme","times_reviewed":-3},
		{"id":"early","title":"Duplicate"}
	]`))

	hydrated := openTestSchedulerWith(t, env.backend, env.clock)
	list := hydrated.scheduler.List()
	if len(list) != 2 {
		t.Fatalf("expected duplicate dropped, got %d", len(list))
	}
	if list[0].ID != "early" || list[0].NextReviewDate != dates.New(2024, time.June, 2) {
		t.Fatalf("expected missing next date to default to first, got %+v", list[0])
	}
	if list[0].Difficulty != "" || list[0].TimesReviewed != 0 || list[0].IntervalDays != 1 {
		t.Fatalf("expected repaired fields, got %+v", list[0])
	}
	if list[1].IntervalDays != 1 {
		t.Fatalf("expected interval floored at 1, got %d", list[1].IntervalDays)
	}
}

func TestScheduler_Resolve(t *testing.T) {
	env := openTestScheduler(t)
	it := mustAdd(t, env.scheduler, "Resolvable", env.today())

	id, err := env.scheduler.Resolve(strings.ToUpper(it.ID[:6]))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if id != it.ID {
		t.Fatalf("expected %s, got %s", it.ID, id)
	}
}

func TestScheduler_PublishesEvents(t *testing.T) {
	env := openTestScheduler(t)
	it := mustAdd(t, env.scheduler, "Evented", env.today())
	title := "Still evented"
	env.scheduler.UpdateItem(it.ID, UpdateOptions{Title: &title})
	env.scheduler.MarkReviewed(it.ID, Hard)
	env.scheduler.DeleteItem(it.ID)
	env.scheduler.DeleteItem(it.ID)

	want := []string{events.ReviewAdded, events.ReviewUpdated, events.ReviewReviewed, events.ReviewDeleted}
	if got := env.events.Types(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, expected %v", got, want)
	}
}
