package catalog

import (
	"context"

	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// Source yields a complete catalog snapshot. One call is one attempt.
type Source interface {
	Fetch(ctx context.Context) (domcat.Snapshot, error)
}

// Sink persists a snapshot so other instances can load it.
type Sink interface {
	Save(ctx context.Context, snap domcat.Snapshot) error
}

// Publisher makes a snapshot searchable.
type Publisher interface {
	Publish(snap domcat.Snapshot)
	Current() (domcat.Snapshot, bool)
}
