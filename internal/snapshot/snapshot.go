// Package snapshot persists whole entity collections as JSON blobs.
//
// A Backend is a key-value store where every Save overwrites the previous
// snapshot for its key. Stores never talk to a Backend directly; they go
// through a Writer, which queues saves so mutations never wait on I/O.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amonks/cadence/internal/logging"
)

// ErrNotFound is returned by Backend.Load when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Backend stores snapshots by key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Persister is the store-facing side of a snapshot backend.
// Load is synchronous; Save must not block on I/O.
type Persister interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte)
}

// Decode unmarshals the snapshot stored under key into a slice.
//
// A missing snapshot yields an empty slice. Unreadable or corrupt snapshots
// are logged and also yield an empty slice, so a damaged file never blocks
// startup.
func Decode[T any](persister Persister, key string, logger *slog.Logger) []T {
	logger = logging.OrDiscard(logger)
	data, err := persister.Load(key)
	if errors.Is(err, ErrNotFound) {
		return []T{}
	}
	if err != nil {
		logger.Warn("snapshot unreadable, starting empty", "key", key, "error", err)
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("snapshot corrupt, starting empty", "key", key, "error", err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// Encode marshals a collection for Save.
func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Memory is an in-process Backend, used by tests and ephemeral sessions.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte
	saves int

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Load implements Backend.
func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save implements Backend.
func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.blobs[key] = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Put seeds a raw snapshot, bypassing SaveErr.
func (m *Memory) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
}

// Saves returns how many saves have succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close implements Backend.
func (m *Memory) Close() error {
	return nil
}
