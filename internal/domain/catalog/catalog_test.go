package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
)

func TestNewItem_Valid(t *testing.T) {
	extra := map[string]string{"price": "120"}
	it, err := NewItem("1", "Act of Love", "Romance", "A story", "act.jpg", extra)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ID() != "1" || it.Title() != "Act of Love" || it.Genre() != "Romance" {
		t.Errorf("unexpected item: %+v", it)
	}
	if it.Synopsis() != "A story" || it.Artwork() != "act.jpg" {
		t.Errorf("descriptive fields not carried: %+v", it)
	}

	extra["price"] = "mutated"
	if it.Extra()["price"] != "120" {
		t.Error("extra map mutation leaked into item")
	}
}

func TestNewItem_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		id, title string
		wantSub   string
	}{
		{"empty id", "", "Title", "ID is required"},
		{"blank id", "   ", "Title", "ID is required"},
		{"long id", strings.Repeat("x", MaxIDLength+1), "Title", "too long"},
		{"empty title", "1", "", "title is required"},
		{"blank title", "1", "  ", "title is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewItem(tc.id, tc.title, "", "", "", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tc.wantSub)
			}
		})
	}
}

func TestReconstruct_NoValidation(t *testing.T) {
	it := Reconstruct("7", "", "", "", "", nil)
	if it.HasTitle() {
		t.Error("HasTitle() = true for empty title")
	}
	if it.Genre() != "" {
		t.Errorf("Genre() = %q, want empty", it.Genre())
	}
}

func TestNewSnapshot_Valid(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	items := []Item{
		Reconstruct("1", "Act of Love", "", "", "", nil),
		Reconstruct("2", "Where the River Divides", "", "", "", nil),
	}
	s, err := NewSnapshot(items, "v1", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 || s.Version() != "v1" || !s.FetchedAt().Equal(at) {
		t.Errorf("unexpected snapshot: len=%d version=%q at=%v", s.Len(), s.Version(), s.FetchedAt())
	}

	items[0] = Reconstruct("9", "Mutated", "", "", "", nil)
	if got := s.Items()[0]; got.ID() != "1" {
		t.Error("caller mutation leaked into snapshot")
	}
}

func TestNewSnapshot_Empty(t *testing.T) {
	s, err := NewSnapshot(nil, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if s.Version() == "" {
		t.Error("expected generated version")
	}
}

func TestNewSnapshot_DuplicateID(t *testing.T) {
	items := []Item{
		Reconstruct("1", "A", "", "", "", nil),
		Reconstruct("2", "B", "", "", "", nil),
		Reconstruct("1", "C", "", "", "", nil),
	}
	_, err := NewSnapshot(items, "", time.Now())
	if !errors.Is(err, domain.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
	var se *domain.SnapshotError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SnapshotError, got %T", err)
	}
	if se.Position != 2 || se.ID != "1" {
		t.Errorf("unexpected error detail: %+v", se)
	}
}

func TestNewSnapshot_EmptyID(t *testing.T) {
	items := []Item{Reconstruct(" ", "A", "", "", "", nil)}
	_, err := NewSnapshot(items, "", time.Now())
	if !errors.Is(err, domain.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestSnapshot_Untitled(t *testing.T) {
	items := []Item{
		Reconstruct("1", "A", "", "", "", nil),
		Reconstruct("2", "", "Drama", "", "", nil),
		Reconstruct("3", " ", "", "", "", nil),
	}
	s, err := NewSnapshot(items, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := s.Untitled()
	if len(got) != 2 || got[0] != "2" || got[1] != "3" {
		t.Errorf("Untitled() = %v, want [2 3]", got)
	}
}
