// Package catalog implements the browser catalog cache: an
// in-memory index of the DAW's browser tree, persisted to disk, with a
// name resolver bounded by the catalog-populated readiness event.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/hidingwill/ableton-bridge/internal/readiness"
)

// State is the cache's lifecycle state.
type State int

const (
	Cold State = iota
	LoadingFromDisk
	Populated
	Refreshing
	PopulatedFresh
)

func (s State) String() string {
	switch s {
	case Cold:
		return "cold"
	case LoadingFromDisk:
		return "loading_from_disk"
	case Populated:
		return "populated"
	case Refreshing:
		return "refreshing"
	case PopulatedFresh:
		return "populated_fresh"
	default:
		return "unknown"
	}
}

// Item is a browser catalog entry.
type Item struct {
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	IsLoadable bool     `json:"is_loadable"`
	Depth      int      `json:"depth"`
	Path       []string `json:"path"`
}

// categoryPriority is the name-resolution tie-break order:
// instruments < drums < sounds < audio_effects < midi_effects.
var categoryPriority = map[string]int{
	"instruments":   0,
	"drums":         1,
	"sounds":        2,
	"audio_effects": 3,
	"midi_effects":  4,
}

// maxItems caps a populate pass; anything beyond it is truncated and
// logged.
const maxItems = 5000

// maxDepth is the BFS walk's depth cap.
const maxDepth = 4

// Populator walks the DAW's browser tree, returning up to maxItems, called
// by Cache.Populate. Implementations go through the command pipeline's TCP
// entry point at concurrency 1; this package only depends on
// the abstract function so it stays decoupled from the transport layer.
type Populator func(ctx context.Context, depthCap, itemCap int) ([]Item, error)

// Cache owns the three mutually consistent indices under a single mutex,
// plus the populating flag that guarantees at
// most one populate runs at a time.
type Cache struct {
	logger  *zap.Logger
	ready   *readiness.Event
	persist *Store

	mu          sync.RWMutex
	state      State
	flat       []Item
	byCategory map[string][]Item
	byName     map[string]string // normalized name -> URI

	populatingMu sync.Mutex
	populating   bool
}

// New constructs a Cache in the Cold state.
func New(logger *zap.Logger, ready *readiness.Event, persist *Store) *Cache {
	return &Cache{
		logger:     logger,
		ready:      ready,
		persist:    persist,
		state:      Cold,
		byCategory: make(map[string][]Item),
		byName:     make(map[string]string),
	}
}

// LoadFromDisk attempts to hydrate the cache from the persisted file if it
// exists and is younger than the freshness window. Absence or a stale file
// is not an error; the cache simply stays Cold.
func (c *Cache) LoadFromDisk(maxAge time.Duration) error {
	c.mu.Lock()
	c.state = LoadingFromDisk
	c.mu.Unlock()

	doc, err := c.persist.Load(maxAge)
	if err != nil {
		c.logger.Warn("catalog disk load failed, starting cold", zap.Error(err))
		c.mu.Lock()
		c.state = Cold
		c.mu.Unlock()
		return nil
	}
	if doc == nil {
		c.mu.Lock()
		c.state = Cold
		c.mu.Unlock()
		return nil
	}

	c.commit(doc.Items)
	c.mu.Lock()
	c.state = Populated
	c.mu.Unlock()
	if len(doc.Items) > 0 {
		c.ready.Set()
	}
	return nil
}

// Populate runs populate() to refresh the catalog from the DAW. A second
// call while one is already in flight is a no-op, never a parallel
// rescan.
func (c *Cache) Populate(ctx context.Context, populate Populator) error {
	c.populatingMu.Lock()
	if c.populating {
		c.populatingMu.Unlock()
		c.logger.Debug("catalog populate already in flight, skipping")
		return nil
	}
	c.populating = true
	c.populatingMu.Unlock()
	defer func() {
		c.populatingMu.Lock()
		c.populating = false
		c.populatingMu.Unlock()
	}()

	c.mu.Lock()
	c.state = Refreshing
	c.mu.Unlock()

	items, err := populate(ctx, maxDepth, maxItems)
	if err != nil {
		c.logger.Error("catalog populate failed", zap.Error(err))
		return err
	}
	if len(items) > maxItems {
		c.logger.Warn("catalog populate truncated at cap", zap.Int("received", len(items)), zap.Int("cap", maxItems))
		items = items[:maxItems]
	}

	c.commit(items)
	c.mu.Lock()
	c.state = PopulatedFresh
	c.mu.Unlock()

	if len(items) > 0 {
		c.ready.Set()
	}
	if err := c.persist.Save(items); err != nil {
		c.logger.Warn("catalog disk persistence failed", zap.Error(err))
	}
	return nil
}

// commit atomically swaps in a new set of indices built from items, so
// readers always see either the complete old set or the complete new
// set, never a mix.
func (c *Cache) commit(items []Item) {
	byCategory := make(map[string][]Item)
	byName := make(map[string]string)

	// Sort by (depth asc, category priority asc) so the first-seen name
	// resolution below naturally favors the lowest depth then the
	// declared category order.
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Depth != sorted[j].Depth {
			return sorted[i].Depth < sorted[j].Depth
		}
		return categoryPriority[sorted[i].Category] < categoryPriority[sorted[j].Category]
	})

	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}
	for _, item := range sorted {
		key := normalizeName(item.Name)
		if _, exists := byName[key]; !exists {
			byName[key] = item.URI
		}
	}

	c.mu.Lock()
	c.flat = items
	c.byCategory = byCategory
	c.byName = byName
	c.mu.Unlock()
}

// normalizeName lower-cases and strips punctuation so display names
// compare loosely.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// State reports the current lifecycle state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Count reports the current flat list size.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.flat)
}

// List returns a defensive copy of the flat catalog, optionally filtered
// by category (empty string means no filter).
func (c *Cache) List(category string) []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var src []Item
	if category == "" {
		src = c.flat
	} else {
		src = c.byCategory[category]
	}
	var out []Item
	if err := copier.Copy(&out, &src); err != nil {
		// copier only fails on incompatible types, which cannot happen
		// here since src and out share the same element type.
		out = append([]Item(nil), src...)
	}
	return out
}
