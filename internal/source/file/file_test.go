package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
)

const catalogYAML = `
items:
  - id: 1
    title: Act of Love
    genre: Romance
  - id: 2
    title: Where the River Divides
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNew_RejectsUnknownExtension(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "catalog.txt"), nil)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFetch_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, catalogYAML)

	src, err := New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	snap, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Len() != 2 || snap.Items()[0].Title() != "Act of Love" {
		t.Errorf("unexpected snapshot: %d items", snap.Len())
	}
}

func TestFetch_MissingFile(t *testing.T) {
	src, err := New(filepath.Join(t.TempDir(), "missing.json"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = src.Fetch(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestFetch_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	writeFile(t, path, `[{"id": 1, "title": "A"}, {"id": 1, "title": "B"}]`)

	src, err := New(path, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = src.Fetch(context.Background())
	if !errors.Is(err, domain.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, catalogYAML)
	src, err := New(path, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWatch_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	writeFile(t, path, catalogYAML)

	src, err := New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := src.Watch(ctx, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// Unrelated files in the same directory are ignored.
	writeFile(t, filepath.Join(dir, "other.yaml"), "x: 1")
	writeFile(t, path, catalogYAML+"  - id: 3\n    title: River\n")

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal")
	}

	cancel()
	select {
	case _, ok := <-changes:
		if ok {
			// drain a late signal, then expect close
			if _, ok := <-changes; ok {
				t.Fatal("channel not closed after cancel")
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
