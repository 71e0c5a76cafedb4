package dnd

import (
	"context"
	"fmt"

	"github.com/zjrosen/dragsync/internal/cachemanager"
	"github.com/zjrosen/dragsync/internal/log"
)

// IndexKey identifies one revision of one container's snapshot index.
type IndexKey string

// keyFor quotes both ids so that no pair of group and container ids can
// share a key.
func keyFor(c *Container) IndexKey {
	return IndexKey(fmt.Sprintf("%q/%q@%d", c.groupID, c.id, c.revision))
}

// SnapshotIndex maps a snapshot to the first position holding it.
type SnapshotIndex map[string]int

// Matcher finds model items by snapshot equality.
type Matcher struct {
	codec Codec
	index *cachemanager.ReadThroughCache[IndexKey, SnapshotIndex, []*Item]
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithIndexCache backs the matcher with the given cache. Without it every
// lookup is a linear scan.
func WithIndexCache(cache cachemanager.CacheManager[IndexKey, SnapshotIndex]) MatcherOption {
	return func(m *Matcher) {
		m.index = cachemanager.NewReadThroughCache(cache, m.buildIndex, cachemanager.DefaultExpiration)
	}
}

// NewIndexCache creates the default in-memory snapshot index cache.
func NewIndexCache() cachemanager.CacheManager[IndexKey, SnapshotIndex] {
	return cachemanager.NewInMemoryCacheManager[IndexKey, SnapshotIndex]("snapshot-index", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
}

// NewMatcher creates a Matcher using codec for canonical serialization.
// A nil codec selects JSONCodec.
func NewMatcher(codec Codec, opts ...MatcherOption) *Matcher {
	if codec == nil {
		codec = JSONCodec{}
	}
	m := &Matcher{codec: codec}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Codec returns the codec used for snapshots.
func (m *Matcher) Codec() Codec { return m.codec }

// Snapshot returns the canonical serialization of item.
func (m *Matcher) Snapshot(item *Item) (string, error) {
	if item == nil {
		return "", fmt.Errorf("nil item")
	}
	return m.codec.Encode(item.Data)
}

// FindBySnapshot scans items for the first one whose snapshot equals
// snapshot. It returns (nil, -1) when nothing matches. Items that fail to
// encode never match.
func (m *Matcher) FindBySnapshot(items []*Item, snapshot string) (*Item, int) {
	for i, item := range items {
		s, err := m.Snapshot(item)
		if err != nil {
			continue
		}
		if s == snapshot {
			return item, i
		}
	}
	return nil, -1
}

// Find locates snapshot in container c, using the index cache when present.
// A cached hit is re-checked against the live item, so data mutated in place
// by the host never produces a wrong match.
func (m *Matcher) Find(c *Container, snapshot string) (*Item, int) {
	if c == nil {
		return nil, -1
	}
	if m.index == nil {
		return m.FindBySnapshot(c.items, snapshot)
	}

	ctx := context.Background()
	key := keyFor(c)
	idx, err := m.index.Get(ctx, key, c.items)
	if err != nil {
		return m.FindBySnapshot(c.items, snapshot)
	}

	i, ok := idx[snapshot]
	if !ok {
		// Misses are rare and usually mean an inconsistency; confirm them.
		return m.FindBySnapshot(c.items, snapshot)
	}
	if i < len(c.items) {
		if s, err := m.Snapshot(c.items[i]); err == nil && s == snapshot {
			return c.items[i], i
		}
	}

	log.Debug(log.CatCache, "stale snapshot index, rescanning", "key", key)
	m.index.Invalidate(ctx, key)
	return m.FindBySnapshot(c.items, snapshot)
}

// FindElement resolves a rendered element to its item in c.
func (m *Matcher) FindElement(c *Container, el Element) (*Item, int, string, error) {
	if el == nil {
		return nil, -1, "", ErrNoSnapshot
	}
	snapshot, ok := el.Snapshot()
	if !ok {
		return nil, -1, "", ErrNoSnapshot
	}
	item, i := m.Find(c, snapshot)
	if item == nil {
		return nil, -1, snapshot, ErrSnapshotMismatch
	}
	return item, i, snapshot, nil
}

// Duplicate returns a data-only copy of item made by a codec round trip.
// Anything the codec cannot represent is lost; behaviors never carry over.
func (m *Matcher) Duplicate(item *Item) (*Item, error) {
	s, err := m.Snapshot(item)
	if err != nil {
		return nil, err
	}
	data, err := m.codec.Decode(s)
	if err != nil {
		return nil, err
	}
	return NewItem(data), nil
}

func (m *Matcher) buildIndex(_ context.Context, items []*Item) (SnapshotIndex, error) {
	idx := make(SnapshotIndex, len(items))
	for i, item := range items {
		s, err := m.Snapshot(item)
		if err != nil {
			continue
		}
		if _, seen := idx[s]; !seen {
			idx[s] = i
		}
	}
	return idx, nil
}
