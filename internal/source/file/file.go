// Package file loads catalog snapshots from a local YAML or JSON file.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/source"
)

// DefaultDebounce coalesces bursts of writes (editors save in several steps).
const DefaultDebounce = 500 * time.Millisecond

// Source reads a snapshot file on every Fetch.
type Source struct {
	path   string
	format source.Format
	logger *zap.Logger
	now    func() time.Time
}

// New creates a file source. The format follows the file extension.
func New(path string, logger *zap.Logger) (*Source, error) {
	format, err := source.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{path: abs, format: format, logger: logger, now: time.Now}, nil
}

// Path returns the absolute path of the snapshot file.
func (s *Source) Path() string { return s.path }

// Fetch reads and parses the file.
func (s *Source) Fetch(ctx context.Context) (catalog.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnavailable, s.path, err)
	}
	snap, err := source.Parse(data, s.format, s.now())
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return snap, nil
}

// Watch signals on the returned channel after the file changes and then
// stays quiet for debounce. The directory is watched, not the file, so
// atomic rename-over saves are seen too. The channel is closed when ctx ends.
func (s *Source) Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	s.logger.Info("watching catalog file",
		zap.String("path", s.path),
		zap.Duration("debounce", debounce),
	)

	changes := make(chan struct{}, 1)
	go s.loop(ctx, watcher, debounce, changes)
	return changes, nil
}

func (s *Source) loop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, changes chan<- struct{}) {
	defer close(changes)
	defer watcher.Close() //nolint:errcheck // best-effort on shutdown

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !s.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Stop()
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case changes <- struct{}{}:
			default: // a signal is already pending
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("catalog watch error", zap.String("path", s.path), zap.Error(err))
		}
	}
}

func (s *Source) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != s.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
