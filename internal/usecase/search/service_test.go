package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/index"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
)

// --- Helpers ---

func testSnapshot(t *testing.T, version string, items ...catalog.Item) catalog.Snapshot {
	t.Helper()
	s, err := catalog.NewSnapshot(items, version, time.Now())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

func movie(id, title, genre string) catalog.Item {
	return catalog.Reconstruct(id, title, genre, "", "", nil)
}

func storefront(t *testing.T) catalog.Snapshot {
	t.Helper()
	return testSnapshot(t, "v1",
		movie("1", "Act of Love", "Romance"),
		movie("2", "Where the River Divides", ""),
		movie("3", "GETuP Kenya", "Drama"),
		movie("4", "River", "Documentary"),
	)
}

func newReq(t *testing.T, q string, limit int, threshold float64) *request.Request {
	t.Helper()
	r, err := request.New(q, limit, threshold)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &r
}

func pageIDs(p Page) []string {
	out := make([]string, len(p.Items))
	for i := range p.Items {
		out[i] = p.Items[i].ID()
	}
	return out
}

func assertIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

// --- Search ---

func TestSearch_NotLoaded(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	_, err := svc.Search(context.Background(), newReq(t, "river", 0, 0))
	if !errors.Is(err, domain.ErrSnapshotNotLoaded) {
		t.Fatalf("expected ErrSnapshotNotLoaded, got %v", err)
	}
	if svc.Loaded() {
		t.Error("Loaded() = true before publish")
	}
}

func TestSearch_RanksCurrentSnapshot(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))

	page, err := svc.Search(context.Background(), newReq(t, "river", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, pageIDs(page), "4", "2")
	if page.Total != 2 || page.Version != "v1" || page.Limit != request.DefaultLimit {
		t.Errorf("unexpected page meta: %+v", page)
	}
}

func TestSearch_EmptyQueryReturnsSnapshotOrder(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))

	page, err := svc.Search(context.Background(), newReq(t, "  ", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, pageIDs(page), "1", "2", "3", "4")
}

func TestSearch_LimitAppliedAfterRanking(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))

	page, err := svc.Search(context.Background(), newReq(t, "river", 1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, pageIDs(page), "4")
	if page.Total != 2 {
		t.Errorf("Total = %d, want 2", page.Total)
	}
}

func TestSearch_ThresholdOverride(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))

	page, err := svc.Search(context.Background(), newReq(t, "lvoe", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("default threshold ids = %v, want none", pageIDs(page))
	}

	page, err = svc.Search(context.Background(), newReq(t, "lvoe", 0, 0.56))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, pageIDs(page), "4", "1")
}

func TestSearch_EmptyCatalog(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(testSnapshot(t, "empty"))

	page, err := svc.Search(context.Background(), newReq(t, "anything", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestPublish_ReplacesWholesale(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))
	svc.Publish(testSnapshot(t, "v2", movie("9", "River Queen", "")))

	page, err := svc.Search(context.Background(), newReq(t, "river", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, pageIDs(page), "9")
	if page.Version != "v2" {
		t.Errorf("Version = %q, want v2", page.Version)
	}

	snap, ok := svc.Current()
	if !ok || snap.Version() != "v2" {
		t.Errorf("Current() = %q, %v", snap.Version(), ok)
	}
}

func TestSearch_ConcurrentWithPublish(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	a := storefront(t)
	b := testSnapshot(t, "v2", movie("9", "River Queen", ""))
	svc.Publish(a)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Publish(b)
			svc.Publish(a)
		}()
		go func() {
			defer wg.Done()
			page, err := svc.Search(context.Background(), newReq(t, "river", 0, 0))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			switch page.Version {
			case "v1":
				if len(page.Items) != 2 {
					t.Errorf("v1 page has %d items", len(page.Items))
				}
			case "v2":
				if len(page.Items) != 1 {
					t.Errorf("v2 page has %d items", len(page.Items))
				}
			default:
				t.Errorf("unexpected version %q", page.Version)
			}
		}()
	}
	wg.Wait()
}

// --- Items ---

func TestItems(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	if _, err := svc.Items(context.Background()); !errors.Is(err, domain.ErrSnapshotNotLoaded) {
		t.Fatalf("expected ErrSnapshotNotLoaded, got %v", err)
	}

	svc.Publish(storefront(t))
	page, err := svc.Items(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, pageIDs(page), "1", "2", "3", "4")
}

// --- Suggest ---

func TestSuggest_SubsequenceBestFirst(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))

	got, err := svc.Suggest(context.Background(), "Riv", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("suggestions = %+v, want 2", got)
	}
	if got[0].ID != "4" || got[0].Title != "River" {
		t.Errorf("first suggestion = %+v, want River", got[0])
	}
}

func TestSuggest_BlankPrefix(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))

	got, err := svc.Suggest(context.Background(), "   ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("suggestions = %+v, want none", got)
	}
}

func TestSuggest_Limit(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	svc.Publish(storefront(t))

	got, err := svc.Suggest(context.Background(), "e", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("suggestions = %+v, want 1", got)
	}

	if _, err := svc.Suggest(context.Background(), "e", -1); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSuggest_NotLoaded(t *testing.T) {
	svc := New(index.DefaultRanker(), nil)
	if _, err := svc.Suggest(context.Background(), "riv", 0); !errors.Is(err, domain.ErrSnapshotNotLoaded) {
		t.Fatalf("expected ErrSnapshotNotLoaded, got %v", err)
	}
}
