package catalogsearch

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/index"
)

// Index is a searchable, immutable view over a list of items.
type Index struct {
	items  []Item
	index  *index.Index
	ranker index.Ranker
}

// BuildIndex indexes items in the given order. items may be nil or empty.
// The slice is copied; Extra maps are shared and never modified.
func BuildIndex(items []Item, opts ...Option) *Index {
	cfg := newIndexConfig(opts)

	own := make([]Item, len(items))
	copy(own, items)
	dom := make([]catalog.Item, len(own))
	for i := range own {
		dom[i] = own[i].toDomain()
	}

	return &Index{
		items:  own,
		index:  index.Build(dom),
		ranker: cfg.ranker(),
	}
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.items)
}

// Threshold returns the largest accepted distance.
func (x *Index) Threshold() float64 {
	if x == nil {
		return DefaultThreshold
	}
	return x.ranker.Threshold()
}

// Search returns the items matching query, best first.
// A blank query returns every item in index order.
func (x *Index) Search(query string) []Item {
	positions := x.positions(query)
	out := make([]Item, len(positions))
	for i, pos := range positions {
		out[i] = x.items[pos]
	}
	return out
}

func (x *Index) positions(query string) []int {
	if x == nil {
		return nil
	}
	hits := x.ranker.Hits(x.index, query)
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Pos
	}
	return out
}

// Search is shorthand for idx.Search(query).
func Search(idx *Index, query string) []Item {
	return idx.Search(query)
}
