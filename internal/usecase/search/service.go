package search

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	sfuzzy "github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/index"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
)

// published pairs a snapshot with the index built from it.
type published struct {
	snapshot catalog.Snapshot
	index    *index.Index
	titles   titleSource
}

// titleSource exposes normalized titles to sahilm/fuzzy.
type titleSource []string

func (t titleSource) String(i int) string { return t[i] }
func (t titleSource) Len() int            { return len(t) }

// Service ranks queries against the currently published catalog snapshot.
// Publish swaps the snapshot atomically; a search uses whichever snapshot
// was current when it started.
type Service struct {
	current atomic.Pointer[published]
	ranker  index.Ranker
	logger  *zap.Logger
}

// New creates a search service with the given ranker.
func New(ranker index.Ranker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ranker: ranker, logger: logger}
}

// Publish builds an index over snap and makes it current.
func (s *Service) Publish(snap catalog.Snapshot) {
	idx := index.FromSnapshot(snap)
	titles := make(titleSource, idx.Len())
	for i := range titles {
		titles[i] = idx.MatchText(i, index.FieldTitle)
	}
	s.current.Store(&published{snapshot: snap, index: idx, titles: titles})
	metrics.CatalogSnapshotItems.Set(float64(snap.Len()))

	s.logger.Info("catalog snapshot published",
		zap.String("version", snap.Version()),
		zap.Int("items", snap.Len()),
	)
}

// Current returns the published snapshot, false if none.
func (s *Service) Current() (catalog.Snapshot, bool) {
	p := s.current.Load()
	if p == nil {
		return catalog.Snapshot{}, false
	}
	return p.snapshot, true
}

// Loaded reports whether a snapshot has been published.
func (s *Service) Loaded() bool { return s.current.Load() != nil }

// Ranker returns the default ranker.
func (s *Service) Ranker() index.Ranker { return s.ranker }

// Search ranks req against the current snapshot.
// A blank query returns the snapshot in its original order.
func (s *Service) Search(_ context.Context, req *request.Request) (Page, error) {
	kind := "query"
	if strings.TrimSpace(req.Query()) == "" {
		kind = "browse"
	}

	p := s.current.Load()
	if p == nil {
		metrics.SearchRequestsTotal.WithLabelValues(kind, "error").Inc()
		return Page{}, domain.ErrSnapshotNotLoaded
	}

	ranker := s.ranker
	if req.HasThreshold() {
		r, err := ranker.WithThreshold(req.Threshold())
		if err != nil {
			metrics.SearchRequestsTotal.WithLabelValues(kind, "error").Inc()
			return Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		}
		ranker = r
	}

	start := time.Now()
	items := ranker.Rank(p.index, req.Query())
	metrics.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	total := len(items)
	metrics.SearchResults.Observe(float64(total))
	outcome := "hit"
	if total == 0 {
		outcome = "empty"
	}
	metrics.SearchRequestsTotal.WithLabelValues(kind, outcome).Inc()

	if len(items) > req.Limit() {
		items = items[:req.Limit()]
	}

	return Page{
		Items:   items,
		Total:   total,
		Limit:   req.Limit(),
		Version: p.snapshot.Version(),
	}, nil
}

// Items returns the whole current snapshot in original order.
func (s *Service) Items(_ context.Context) (Page, error) {
	p := s.current.Load()
	if p == nil {
		return Page{}, domain.ErrSnapshotNotLoaded
	}
	items := p.index.Items()
	return Page{Items: items, Total: len(items), Limit: len(items), Version: p.snapshot.Version()}, nil
}

// Suggest returns titles whose characters contain prefix as a subsequence,
// best first. A blank prefix yields no suggestions.
// limit=0 selects DefaultSuggestLimit; larger values are clamped to MaxSuggestLimit.
func (s *Service) Suggest(_ context.Context, prefix string, limit int) ([]Suggestion, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", domain.ErrInvalidArgument)
	}
	if limit == 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	p := s.current.Load()
	if p == nil {
		metrics.SuggestRequestsTotal.WithLabelValues("error").Inc()
		return nil, domain.ErrSnapshotNotLoaded
	}

	pattern := fuzzy.Normalize(prefix)
	if pattern == "" {
		metrics.SuggestRequestsTotal.WithLabelValues("empty").Inc()
		return []Suggestion{}, nil
	}

	matches := sfuzzy.FindFrom(pattern, p.titles)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Suggestion, len(matches))
	for i, m := range matches {
		it := p.index.Item(m.Index)
		out[i] = Suggestion{ID: it.ID(), Title: it.Title()}
	}

	outcome := "hit"
	if len(out) == 0 {
		outcome = "empty"
	}
	metrics.SuggestRequestsTotal.WithLabelValues(outcome).Inc()
	return out, nil
}
