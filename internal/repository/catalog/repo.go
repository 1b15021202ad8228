// Package catalog stores catalog snapshots in Redis.
//
// Layout, under a configurable key prefix:
//
//	<prefix>catalog:ids          JSON array of item ids in snapshot order
//	<prefix>catalog:item:<id>    hash of item fields
//	<prefix>catalog:version      snapshot version
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/db"
	"github.com/kailas-cloud/catalogsearch/internal/domain"
	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// store is the consumer interface for catalog snapshots (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements usecase/catalog Source and Sink on Redis.
type Repo struct {
	store  store
	prefix string
	now    func() time.Time
}

// New creates a catalog repository. prefix is prepended to every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, now: time.Now}
}

// Fetch loads the stored snapshot. A catalog that was never saved is an empty snapshot.
func (r *Repo) Fetch(ctx context.Context) (domcat.Snapshot, error) {
	ids, err := r.loadIDs(ctx)
	if err != nil {
		return domcat.Snapshot{}, err
	}

	version, err := r.store.Get(ctx, r.versionKey())
	if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return domcat.Snapshot{}, fmt.Errorf("%w: get %s: %w", domain.ErrSourceUnavailable, r.versionKey(), err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.itemKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return domcat.Snapshot{}, fmt.Errorf("%w: load items: %w", domain.ErrSourceUnavailable, err)
	}

	items := make([]domcat.Item, len(ids))
	for i, id := range ids {
		var m map[string]string
		if i < len(hashes) {
			m = hashes[i]
		}
		items[i] = parseHashFields(id, m)
	}

	snap, err := domcat.NewSnapshot(items, string(version), r.now())
	if err != nil {
		return domcat.Snapshot{}, fmt.Errorf("stored catalog: %w", err)
	}
	return snap, nil
}

// Save replaces the stored catalog with snap. Items dropped since the
// previous save are deleted.
func (r *Repo) Save(ctx context.Context, snap domcat.Snapshot) error {
	oldIDs, err := r.loadIDs(ctx)
	if err != nil {
		return err
	}

	items := snap.Items()
	ids := make([]string, len(items))
	hashes := make([]db.HashSetItem, len(items))
	keep := make(map[string]struct{}, len(items))
	for i := range items {
		id := items[i].ID()
		ids[i] = id
		keep[id] = struct{}{}
		hashes[i] = db.HashSetItem{Key: r.itemKey(id), Fields: buildHashFields(&items[i])}
	}

	// Rewrite every hash from scratch so fields removed from an item disappear.
	stale := make([]string, 0, len(oldIDs)+len(ids))
	for _, id := range oldIDs {
		if _, ok := keep[id]; !ok {
			stale = append(stale, r.itemKey(id))
		}
	}
	for _, id := range ids {
		stale = append(stale, r.itemKey(id))
	}
	if err := r.store.Del(ctx, stale...); err != nil {
		return fmt.Errorf("delete item hashes: %w", err)
	}

	if err := r.store.HSetMulti(ctx, hashes); err != nil {
		return fmt.Errorf("write item hashes: %w", err)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal ids: %w", err)
	}
	if err := r.store.Set(ctx, r.idsKey(), data); err != nil {
		return fmt.Errorf("set %s: %w", r.idsKey(), err)
	}
	if err := r.store.Set(ctx, r.versionKey(), []byte(snap.Version())); err != nil {
		return fmt.Errorf("set %s: %w", r.versionKey(), err)
	}
	return nil
}

func (r *Repo) loadIDs(ctx context.Context) ([]string, error) {
	raw, err := r.store.Get(ctx, r.idsKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrSourceUnavailable, r.idsKey(), err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrInvalidSnapshot, r.idsKey(), err)
	}
	return ids, nil
}

func (r *Repo) idsKey() string           { return r.prefix + "catalog:ids" }
func (r *Repo) versionKey() string       { return r.prefix + "catalog:version" }
func (r *Repo) itemKey(id string) string { return r.prefix + "catalog:item:" + id }
