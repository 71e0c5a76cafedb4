package dnd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dragsync/internal/cachemanager"
)

func TestMatcher_FindBySnapshot(t *testing.T) {
	m := NewMatcher(nil)
	items := NewItems(obj("1"), obj("2"), obj("2"), 42)

	item, i := m.FindBySnapshot(items, `{"id":"2"}`)
	require.Same(t, items[1], item, "first match wins")
	require.Equal(t, 1, i)

	item, i = m.FindBySnapshot(items, "42")
	require.Same(t, items[3], item)
	require.Equal(t, 3, i)

	item, i = m.FindBySnapshot(items, `{"id":"3"}`)
	require.Nil(t, item)
	require.Equal(t, -1, i)
}

func TestMatcher_SnapshotIsCanonical(t *testing.T) {
	m := NewMatcher(nil)
	a, err := m.Snapshot(NewItem(map[string]any{"b": 2, "a": 1}))
	require.NoError(t, err)
	b, err := m.Snapshot(NewItem(map[string]any{"a": 1, "b": 2}))
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, `{"a":1,"b":2}`, a)
}

func TestMatcher_UnencodableNeverMatches(t *testing.T) {
	m := NewMatcher(nil)
	items := []*Item{NewItem(func() {}), NewItem(obj("1"))}

	_, err := m.Snapshot(items[0])
	require.Error(t, err)

	item, i := m.FindBySnapshot(items, `{"id":"1"}`)
	require.Same(t, items[1], item)
	require.Equal(t, 1, i)
}

func TestMatcher_FindElement(t *testing.T) {
	m := NewMatcher(nil)
	c := newContainer("g", "c", "1", "2")

	item, i, snapshot, err := m.FindElement(c, elementFor("2"))
	require.NoError(t, err)
	require.Same(t, c.items[1], item)
	require.Equal(t, 1, i)
	require.Equal(t, `{"id":"2"}`, snapshot)

	_, _, snapshot, err = m.FindElement(c, elementFor("7"))
	require.ErrorIs(t, err, ErrSnapshotMismatch)
	require.Equal(t, `{"id":"7"}`, snapshot)

	_, _, _, err = m.FindElement(c, element{})
	require.ErrorIs(t, err, ErrNoSnapshot)

	_, _, _, err = m.FindElement(c, nil)
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestMatcher_IndexCacheFollowsRevisions(t *testing.T) {
	cache := NewIndexCache()
	m := NewMatcher(nil, WithIndexCache(cache))
	c := newContainer("g", "c", "1", "2", "3")

	item, i := m.Find(c, `{"id":"3"}`)
	require.Same(t, c.items[2], item)
	require.Equal(t, 2, i)
	require.Equal(t, 1, cache.Count())

	c.removeAt(0)
	item, i = m.Find(c, `{"id":"3"}`)
	require.Same(t, c.items[1], item)
	require.Equal(t, 1, i, "a new revision gets a fresh index")
}

func TestMatcher_IndexCacheSurvivesInPlaceMutation(t *testing.T) {
	m := NewMatcher(nil, WithIndexCache(NewIndexCache()))
	c := newContainer("g", "c", "1", "2")

	_, i := m.Find(c, `{"id":"2"}`)
	require.Equal(t, 1, i)

	// Host edits data in place; the revision does not change.
	c.items[1].Data = obj("9")
	c.items[0].Data = obj("2")

	item, i := m.Find(c, `{"id":"2"}`)
	require.Same(t, c.items[0], item)
	require.Equal(t, 0, i)

	item, i = m.Find(c, `{"id":"9"}`)
	require.Same(t, c.items[1], item, "the stale index was rebuilt")
	require.Equal(t, 1, i)
}

func TestMatcher_Duplicate(t *testing.T) {
	m := NewMatcher(nil)
	orig := NewItem(map[string]any{"id": "1", "n": 2})

	dup, err := m.Duplicate(orig)
	require.NoError(t, err)
	require.NotSame(t, orig, dup)
	require.Equal(t, map[string]any{"id": "1", "n": float64(2)}, dup.Data)

	dup.Data.(map[string]any)["id"] = "changed"
	require.Equal(t, "1", orig.Data.(map[string]any)["id"], "duplicates share nothing")
}

type angleCodec struct{}

func (angleCodec) Encode(data any) (string, error) {
	s, ok := data.(string)
	if !ok {
		return "", errors.New("strings only")
	}
	return "<" + s + ">", nil
}

func (angleCodec) Decode(snapshot string) (any, error) {
	return snapshot[1 : len(snapshot)-1], nil
}

func TestMatcher_CustomCodec(t *testing.T) {
	m := NewMatcher(angleCodec{})
	items := NewItems("a", "b")

	item, i := m.FindBySnapshot(items, "<b>")
	require.Same(t, items[1], item)
	require.Equal(t, 1, i)

	dup, err := m.Duplicate(items[0])
	require.NoError(t, err)
	require.Equal(t, "a", dup.Data)
}

func TestMatcher_SharedCacheAcrossMatchers(t *testing.T) {
	var cache cachemanager.CacheManager[IndexKey, SnapshotIndex] = NewIndexCache()
	c := newContainer("g", "c", "1")

	_, i := NewMatcher(nil, WithIndexCache(cache)).Find(c, `{"id":"1"}`)
	require.Equal(t, 0, i)
	_, i = NewMatcher(nil, WithIndexCache(cache)).Find(c, `{"id":"1"}`)
	require.Equal(t, 0, i)
	require.Equal(t, 1, cache.Count())
}

func TestMatcher_IndexKeysDoNotCollide(t *testing.T) {
	cache := NewIndexCache()
	m := NewMatcher(nil, WithIndexCache(cache))
	c1 := newContainer("a/b", "c", "p", "q")
	c2 := newContainer("a", "b/c", "q")
	require.NotEqual(t, keyFor(c1), keyFor(c2))

	_, i := m.Find(c2, `{"id":"q"}`)
	require.Equal(t, 0, i)

	item, i := m.Find(c1, `{"id":"q"}`)
	require.Same(t, c1.items[1], item)
	require.Equal(t, 1, i)
	require.Equal(t, 2, cache.Count(), "each container keeps its own index")
}
