package chi

import (
	"context"

	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// Searcher answers catalog queries.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Page, error)
	Items(ctx context.Context) (searchuc.Page, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]searchuc.Suggestion, error)
}

// CatalogManager replaces and reloads the served snapshot.
type CatalogManager interface {
	Replace(ctx context.Context, items []domcat.Item) (domcat.Snapshot, error)
	Refresh(ctx context.Context) (domcat.Snapshot, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
