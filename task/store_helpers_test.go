package task

import (
	"sync"
	"testing"
	"time"

	"github.com/amonks/cadence/events"
	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/internal/snapshot"
)

// fakeClock is a settable store clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.June, 10, 12, 0, 0, 0, time.Local)}
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

func (c *fakeClock) Today() dates.Date {
	return dates.Today(c.Now())
}

type testEnv struct {
	store   *Store
	clock   *fakeClock
	backend *snapshot.Memory
	writer  *snapshot.Writer
	events  *events.Recorder
}

func openTestStore(t *testing.T) *testEnv {
	t.Helper()
	return openTestStoreWith(t, snapshot.NewMemory(), newFakeClock())
}

func openTestStoreWith(t *testing.T, backend *snapshot.Memory, clock *fakeClock) *testEnv {
	t.Helper()
	writer := snapshot.NewWriter(backend, nil)
	t.Cleanup(func() { writer.Close() })

	recorder := &events.Recorder{}
	store, err := Open(Options{
		Persister: writer,
		Now:       clock.Now,
		Events:    recorder,
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return &testEnv{store: store, clock: clock, backend: backend, writer: writer, events: recorder}
}

// reopen hydrates a second store from everything persisted so far.
func (e *testEnv) reopen(t *testing.T) *testEnv {
	t.Helper()
	e.writer.Flush()
	return openTestStoreWith(t, e.backend, e.clock)
}

func mustCreate(t *testing.T, store *Store, description string, opts CreateOptions) *Task {
	t.Helper()
	created, err := store.Create(description, 30, opts)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return created
}
