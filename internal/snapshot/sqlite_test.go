package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cadence.db")
	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer backend.Close()
	ctx := context.Background()

	if _, err := backend.Load(ctx, "tasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := backend.Save(ctx, "tasks", []byte("[1]")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := backend.Save(ctx, "tasks", []byte("[2]")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := backend.Load(ctx, "tasks")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "[2]" {
		t.Fatalf("expected latest snapshot, got %q", data)
	}
}

func TestSQLiteBackendReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.db")
	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := backend.Save(context.Background(), "reviews", []byte(`["x"]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	data, err := reopened.Load(context.Background(), "reviews")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `["x"]` {
		t.Fatalf("unexpected data %q", data)
	}
}
