package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
)

// Snapshot is an immutable, point-in-time ordered list of catalog items.
type Snapshot struct {
	items     []Item
	version   string
	fetchedAt time.Time
}

// NewSnapshot validates items and creates a Snapshot.
// Every item needs a non-empty ID and IDs must be unique; titles are not checked here.
// An empty version gets a fresh UUID.
func NewSnapshot(items []Item, version string, fetchedAt time.Time) (Snapshot, error) {
	seen := make(map[string]int, len(items))
	for pos := range items {
		id := items[pos].ID()
		if strings.TrimSpace(id) == "" {
			return Snapshot{}, domain.NewSnapshotError(pos, id, "empty id")
		}
		if first, dup := seen[id]; dup {
			return Snapshot{}, domain.NewSnapshotError(pos, id, "duplicate id, first seen at item "+strconv.Itoa(first))
		}
		seen[id] = pos
	}

	if version == "" {
		version = uuid.NewString()
	}

	cp := make([]Item, len(items))
	copy(cp, items)
	return Snapshot{items: cp, version: version, fetchedAt: fetchedAt}, nil
}

// Items returns the snapshot items in their original order.
// The returned slice is shared; callers must not modify it.
func (s *Snapshot) Items() []Item { return s.items }

// Len returns the number of items.
func (s *Snapshot) Len() int { return len(s.items) }

// Version returns the snapshot version tag.
func (s *Snapshot) Version() string { return s.version }

// FetchedAt returns when the snapshot was pulled from its source.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Untitled returns the IDs of items without a usable title.
func (s *Snapshot) Untitled() []string {
	var ids []string
	for i := range s.items {
		if !s.items[i].HasTitle() {
			ids = append(ids, s.items[i].ID())
		}
	}
	return ids
}
