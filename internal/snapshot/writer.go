package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/amonks/cadence/internal/logging"
)

// saveTimeout bounds a single backend write.
const saveTimeout = 10 * time.Second

// Writer adapts a Backend to Persister.
//
// Save enqueues the blob and returns immediately. A single background
// goroutine drains the queue in enqueue order. Saves for a key that is
// still queued replace the queued blob, so a burst of mutations costs one
// write. Failed writes are logged; the in-memory state stays authoritative.
type Writer struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string][]byte
	order   []string
	writing bool
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewWriter starts a Writer over backend.
func NewWriter(backend Backend, logger *slog.Logger) *Writer {
	w := &Writer{
		backend: backend,
		logger:  logging.OrDiscard(logger),
		pending: make(map[string][]byte),
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Save implements Persister.
func (w *Writer) Save(key string, data []byte) {
	blob := append([]byte(nil), data...)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.write(key, blob)
		return
	}
	if _, queued := w.pending[key]; !queued {
		w.order = append(w.order, key)
	}
	w.pending[key] = blob
	w.mu.Unlock()
	w.cond.Broadcast()
}

// Load implements Persister. A queued blob is returned ahead of the backend's
// copy so readers observe their own writes.
func (w *Writer) Load(key string) ([]byte, error) {
	w.mu.Lock()
	if blob, ok := w.pending[key]; ok {
		w.mu.Unlock()
		return append([]byte(nil), blob...), nil
	}
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return w.backend.Load(ctx, key)
}

// Flush blocks until every queued save has been attempted.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.order) > 0 || w.writing {
		w.cond.Wait()
	}
}

// Close flushes queued saves, stops the worker, and closes the backend.
// It is safe to call more than once.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		w.Flush()
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		w.cond.Broadcast()
		<-w.done
		w.closeErr = w.backend.Close()
	})
	return w.closeErr
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for len(w.order) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.order) == 0 && w.closed {
			w.mu.Unlock()
			return
		}
		key := w.order[0]
		w.order = w.order[1:]
		blob := w.pending[key]
		delete(w.pending, key)
		w.writing = true
		w.mu.Unlock()

		w.write(key, blob)

		w.mu.Lock()
		w.writing = false
		w.mu.Unlock()
		w.cond.Broadcast()
	}
}

func (w *Writer) write(key string, blob []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := w.backend.Save(ctx, key, blob); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error("persist snapshot timed out", "key", key, "timeout", saveTimeout)
			return
		}
		w.logger.Error("persist snapshot failed", "key", key, "error", err)
	}
}
