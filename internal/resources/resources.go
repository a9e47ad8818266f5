// Package resources implements the agent-facing surface's read-only
// resources: "session", "tracks", "catalog-status",
// "capabilities". Each is keyed by a stable URI and documented content,
// served from current in-memory state without issuing DAW commands where
// possible; only "session" and "tracks" round-trip to the DAW, since
// neither the catalog cache nor the dispatcher's readiness snapshot holds
// that state locally.
package resources

import (
	"context"
	"sort"
	"sync"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// Provider produces the content for one registered resource URI.
type Provider func(ctx context.Context) (any, error)

// Info describes one registered resource for listing purposes.
type Info struct {
	URI         string
	Description string
}

// Registry is the startup-constructed mapping from resource URI to
// provider, mirroring internal/dispatcher.Registry's shape for tools.
type Registry struct {
	mu    sync.RWMutex
	docs  map[string]string
	byURI map[string]Provider
}

// NewRegistry constructs an empty resource registry.
func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]string), byURI: make(map[string]Provider)}
}

// Register adds or replaces the provider for uri.
func (r *Registry) Register(uri, description string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[uri] = description
	r.byURI[uri] = p
}

// Read invokes the registered provider for uri, or InvalidInput if unknown.
func (r *Registry) Read(ctx context.Context, uri string) (any, error) {
	r.mu.RLock()
	p, ok := r.byURI[uri]
	r.mu.RUnlock()
	if !ok {
		return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "unknown resource %q", uri)
	}
	return p(ctx)
}

// List returns every registered resource's URI and description, sorted by
// URI for stable listing.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.docs))
	for uri, desc := range r.docs {
		out = append(out, Info{URI: uri, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}
