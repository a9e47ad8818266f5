package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidingwill/ableton-bridge/internal/logging"
	"github.com/hidingwill/ableton-bridge/internal/readiness"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(logging.NewNop(), readiness.NewEvent(), NewStore(t.TempDir()))
}

func sampleItems() []Item {
	return []Item{
		{URI: "device:wavetable-1", Name: "Wavetable", Category: "instruments", Depth: 1},
		{URI: "device:wavetable-2", Name: "Wavetable", Category: "instruments", Depth: 2},
		{URI: "device:reverb-1", Name: "Reverb", Category: "audio_effects", Depth: 1},
	}
}

func TestCommitBuildsConsistentIndices(t *testing.T) {
	c := newTestCache(t)
	c.commit(sampleItems())

	assert.Len(t, c.List(""), 3)
	assert.Len(t, c.List("instruments"), 2)
	assert.Len(t, c.List("audio_effects"), 1)

	c.mu.RLock()
	uri := c.byName["wavetable"]
	c.mu.RUnlock()
	assert.Equal(t, "device:wavetable-1", uri, "resolver must prefer shallower depth")
}

func TestPopulateIsSerializedAgainstConcurrentCalls(t *testing.T) {
	c := newTestCache(t)
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0

	slow := func(ctx context.Context, depthCap, itemCap int) ([]Item, error) {
		calls++
		close(started)
		<-release
		return sampleItems(), nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Populate(context.Background(), slow) }()
	<-started

	// A second populate while the first is in flight must be a no-op, not
	// a parallel rescan.
	require.NoError(t, c.Populate(context.Background(), slow))
	assert.Equal(t, 1, calls)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, PopulatedFresh, c.State())
}

func TestPopulateTruncatesAtCap(t *testing.T) {
	c := newTestCache(t)
	many := func(ctx context.Context, depthCap, itemCap int) ([]Item, error) {
		items := make([]Item, itemCap+37)
		for i := range items {
			items[i] = Item{URI: "uri", Name: "x", Category: "instruments"}
		}
		return items, nil
	}
	require.NoError(t, c.Populate(context.Background(), many))
	assert.Equal(t, maxItems, c.Count())
}

func TestResolvePassesThroughURIs(t *testing.T) {
	c := newTestCache(t)
	got := c.Resolve(context.Background(), "device:already-a-uri", time.Millisecond)
	assert.Equal(t, "device:already-a-uri", got)
}

func TestResolvePassesThroughOnColdTimeout(t *testing.T) {
	c := newTestCache(t)
	got := c.Resolve(context.Background(), "Wavetable", 10*time.Millisecond)
	assert.Equal(t, "Wavetable", got)
}

func TestResolveHitsAfterPopulate(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Populate(context.Background(), func(ctx context.Context, d, i int) ([]Item, error) {
		return sampleItems(), nil
	}))

	got := c.Resolve(context.Background(), "Wavetable", time.Second)
	assert.Equal(t, "device:wavetable-1", got)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store := NewStore(t.TempDir())
	items := sampleItems()
	require.NoError(t, store.Save(items))

	doc, err := store.Load(time.Hour)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Len(t, doc.Items, len(items))
	assert.Equal(t, "device:wavetable-1", doc.ByName["wavetable"])
}

func TestLoadReturnsNilWhenAbsent(t *testing.T) {
	store := NewStore(t.TempDir())
	doc, err := store.Load(time.Hour)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLoadReturnsNilWhenStale(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(sampleItems()))

	doc, err := store.Load(-time.Second) // any existing file is "older" than a negative max age
	require.NoError(t, err)
	assert.Nil(t, doc)
}
