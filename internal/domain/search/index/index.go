// Package index holds the catalog index and the query ranker built on top of it.
//
// An Index is a read-only view over one catalog snapshot. Build records, per
// item, the normalized text of every field eligible for matching (title and
// genre); a missing field becomes the empty string once, here, so ranking
// never has to special-case it. Nothing in the package mutates an Index after
// Build returns, so any number of goroutines may rank against the same Index
// without locking. A fresh snapshot means a fresh Index.
package index

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/fuzzy"
)

// Field names an item field eligible for matching.
type Field string

const (
	// FieldTitle is the primary match field.
	FieldTitle Field = "title"
	// FieldGenre is the secondary match field.
	FieldGenre Field = "genre"
)

const numMatchFields = 2

// matchFields is the per-item storage order of eligible fields.
var matchFields = [numMatchFields]Field{FieldTitle, FieldGenre}

// MatchFields returns the fields eligible for matching.
func MatchFields() []Field {
	out := make([]Field, numMatchFields)
	copy(out, matchFields[:])
	return out
}

// Index is an immutable view over one catalog snapshot.
type Index struct {
	items  []catalog.Item
	fields [][numMatchFields]string
}

// Build creates an Index over items. items may be empty or nil.
// The slice is copied; the items themselves are shared, never modified.
func Build(items []catalog.Item) *Index {
	idx := &Index{
		items:  make([]catalog.Item, len(items)),
		fields: make([][numMatchFields]string, len(items)),
	}
	copy(idx.items, items)
	for i := range idx.items {
		it := &idx.items[i]
		idx.fields[i] = [numMatchFields]string{
			fuzzy.Normalize(it.Title()),
			fuzzy.Normalize(it.Genre()),
		}
	}
	return idx
}

// FromSnapshot creates an Index over a snapshot's items.
func FromSnapshot(s catalog.Snapshot) *Index {
	return Build(s.Items())
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.items)
}

// Item returns the item at snapshot position pos.
func (x *Index) Item(pos int) catalog.Item { return x.items[pos] }

// Items returns a copy of the indexed items in snapshot order.
func (x *Index) Items() []catalog.Item {
	if x == nil {
		return []catalog.Item{}
	}
	out := make([]catalog.Item, len(x.items))
	copy(out, x.items)
	return out
}

// MatchText returns the normalized text of field for the item at pos.
func (x *Index) MatchText(pos int, f Field) string {
	for i, name := range matchFields {
		if name == f {
			return x.fields[pos][i]
		}
	}
	return ""
}
