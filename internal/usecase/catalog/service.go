package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/metrics"
)

// Refresh triggers, used as the metrics label.
const (
	TriggerStartup = "startup"
	TriggerAPI     = "api"
	TriggerWatch   = "watch"
	TriggerReplace = "replace"
)

// Service loads catalog snapshots and hands them to the search side.
type Service struct {
	source    Source
	sink      Sink
	publisher Publisher
	limiter   *rate.Limiter
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSink persists replaced snapshots before publishing them.
func WithSink(sink Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithRefreshInterval allows at most one API refresh per interval.
// A non-positive interval disables throttling.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithClock overrides the time source used to stamp replaced snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a catalog service. source may be nil when snapshots only arrive via Replace.
func New(source Source, publisher Publisher, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source:    source,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load fetches a snapshot from the source and publishes it, without throttling.
func (s *Service) Load(ctx context.Context) (domcat.Snapshot, error) {
	return s.load(ctx, TriggerStartup)
}

// Refresh is Load on behalf of a client. Calls beyond the configured rate
// fail with ErrRateLimited and never reach the source.
func (s *Service) Refresh(ctx context.Context) (domcat.Snapshot, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		metrics.CatalogRefreshTotal.WithLabelValues(TriggerAPI, "throttled").Inc()
		return domcat.Snapshot{}, fmt.Errorf("refresh catalog: %w", domain.ErrRateLimited)
	}
	return s.load(ctx, TriggerAPI)
}

// Replace validates items as a new snapshot, saves it to the sink if any,
// and publishes it. On error the current snapshot stays in place.
func (s *Service) Replace(ctx context.Context, items []domcat.Item) (domcat.Snapshot, error) {
	snap, err := domcat.NewSnapshot(items, "", s.now())
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues(TriggerReplace, "error").Inc()
		return domcat.Snapshot{}, fmt.Errorf("replace catalog: %w", err)
	}

	if s.sink != nil {
		if err := s.sink.Save(ctx, snap); err != nil {
			metrics.CatalogRefreshTotal.WithLabelValues(TriggerReplace, "error").Inc()
			return domcat.Snapshot{}, fmt.Errorf("save catalog: %w", err)
		}
	}

	s.publish(snap, TriggerReplace)
	return snap, nil
}

// Watch reloads the catalog on every signal from changes until ctx is done
// or changes is closed. Failed reloads are logged and keep the current snapshot.
func (s *Service) Watch(ctx context.Context, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if _, err := s.load(ctx, TriggerWatch); err != nil {
				s.logger.Warn("catalog reload failed, keeping current snapshot", zap.Error(err))
			}
		}
	}
}

func (s *Service) load(ctx context.Context, trigger string) (domcat.Snapshot, error) {
	if s.source == nil {
		metrics.CatalogRefreshTotal.WithLabelValues(trigger, "error").Inc()
		return domcat.Snapshot{}, fmt.Errorf("%w: no catalog source configured", domain.ErrSourceUnavailable)
	}

	snap, err := s.source.Fetch(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues(trigger, "error").Inc()
		return domcat.Snapshot{}, fmt.Errorf("fetch catalog: %w", err)
	}

	s.publish(snap, trigger)
	return snap, nil
}

func (s *Service) publish(snap domcat.Snapshot, trigger string) {
	if untitled := snap.Untitled(); len(untitled) > 0 {
		s.logger.Warn("catalog items without title will never match a query",
			zap.String("version", snap.Version()),
			zap.Strings("ids", untitled),
		)
	}

	prev, had := s.publisher.Current()
	s.publisher.Publish(snap)
	metrics.CatalogRefreshTotal.WithLabelValues(trigger, "ok").Inc()

	fields := []zap.Field{
		zap.String("trigger", trigger),
		zap.String("version", snap.Version()),
		zap.Int("items", snap.Len()),
	}
	if had {
		fields = append(fields, zap.String("previous_version", prev.Version()), zap.Int("previous_items", prev.Len()))
	}
	s.logger.Info("catalog refreshed", fields...)
}
