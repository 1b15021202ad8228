package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
)

// InstrumentedSource wraps a Source with fetch timing and logging.
type InstrumentedSource struct {
	inner  Source
	name   string
	logger *zap.Logger
}

// NewInstrumentedSource wraps inner. name labels metrics and log lines (file, redis, remote).
func NewInstrumentedSource(inner Source, name string, logger *zap.Logger) *InstrumentedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedSource{inner: inner, name: name, logger: logger}
}

// Fetch delegates to the inner source and records the outcome.
func (p *InstrumentedSource) Fetch(ctx context.Context) (domcat.Snapshot, error) {
	start := time.Now()

	snap, err := p.inner.Fetch(ctx)

	duration := time.Since(start)

	if err != nil {
		metrics.CatalogFetchDuration.WithLabelValues(p.name, "error").Observe(duration.Seconds())
		p.logger.Error("Catalog fetch failed",
			zap.String("source", p.name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domcat.Snapshot{}, fmt.Errorf("%s source: %w", p.name, err)
	}

	metrics.CatalogFetchDuration.WithLabelValues(p.name, "ok").Observe(duration.Seconds())
	p.logger.Debug("Catalog fetch completed",
		zap.String("source", p.name),
		zap.Duration("duration", duration),
		zap.Int("items", snap.Len()),
		zap.String("version", snap.Version()),
	)

	return snap, nil
}
