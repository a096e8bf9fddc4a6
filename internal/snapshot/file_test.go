package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackendRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	backend := NewFileBackend(dir)
	ctx := context.Background()

	if _, err := backend.Load(ctx, "tasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := backend.Save(ctx, "tasks", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := backend.Load(ctx, "tasks")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `[{"id":"a"}]` {
		t.Fatalf("unexpected data %q", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "tasks.json")); err != nil {
		t.Fatalf("expected tasks.json: %v", err)
	}
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	backend := NewFileBackend(dir)
	ctx := context.Background()

	for _, blob := range []string{"[1]", "[2]", "[2]"} {
		if err := backend.Save(ctx, "reviews", []byte(blob)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if name != "reviews.json" && name != "reviews.lock" {
			t.Fatalf("unexpected file %s", name)
		}
	}
}
