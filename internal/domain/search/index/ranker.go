package index

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/fuzzy"
)

// Ranker turns a free-text query into an ordered selection of indexed items.
type Ranker struct {
	threshold float64
	opts      fuzzy.Options
}

// NewRanker creates a Ranker. threshold must be within (0, 1].
func NewRanker(threshold float64, opts fuzzy.Options) (Ranker, error) {
	if threshold <= 0 || threshold > 1 {
		return Ranker{}, fmt.Errorf("threshold must be in (0, 1], got %v", threshold)
	}
	if opts.Distance < 0 {
		return Ranker{}, fmt.Errorf("distance must be >= 0, got %d", opts.Distance)
	}
	return Ranker{threshold: threshold, opts: opts}, nil
}

// DefaultRanker returns a Ranker with fuzzy.DefaultThreshold and default options.
func DefaultRanker() Ranker {
	return Ranker{threshold: fuzzy.DefaultThreshold, opts: fuzzy.DefaultOptions()}
}

// Threshold returns the maximum accepted distance.
func (r Ranker) Threshold() float64 { return r.threshold }

// Options returns the fuzzy matching options.
func (r Ranker) Options() fuzzy.Options { return r.opts }

// WithThreshold returns a copy of r using threshold t.
func (r Ranker) WithThreshold(t float64) (Ranker, error) {
	return NewRanker(t, r.opts)
}

// Hit is one matching item position with its best field distance.
type Hit struct {
	Pos      int
	Distance float64
}

// Hits ranks x against query and returns matching positions, best first.
// A blank query yields every position in snapshot order with distance 0.
// Items whose best field distance exceeds the threshold are left out.
// Equal distances keep snapshot order.
func (r Ranker) Hits(x *Index, query string) []Hit {
	n := x.Len()
	p := fuzzy.Compile(query, r.opts)
	if p.Empty() {
		hits := make([]Hit, n)
		for i := range hits {
			hits[i] = Hit{Pos: i}
		}
		return hits
	}

	hits := make([]Hit, 0, n)
	for pos := 0; pos < n; pos++ {
		best := 1.0
		for _, text := range x.fields[pos] {
			if d := p.Distance(text); d < best {
				best = d
				if best == 0 {
					break
				}
			}
		}
		if best <= r.threshold {
			hits = append(hits, Hit{Pos: pos, Distance: best})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// Rank returns the matching items of x for query, best first.
func (r Ranker) Rank(x *Index, query string) []catalog.Item {
	hits := r.Hits(x, query)
	out := make([]catalog.Item, len(hits))
	for i, h := range hits {
		out[i] = x.items[h.Pos]
	}
	return out
}
