package dispatcher

import (
	"sort"
	"sync"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// Registry is the startup-constructed mapping from tool name to its
// spec: handler, validator, declared needs, error prefix.
// Registration happens once during wiring; lookups happen on every call,
// so the mutex is read-mostly.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]ToolSpec
}

// NewRegistry constructs an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]ToolSpec)}
}

// Register adds or replaces a tool spec under its own name.
func (r *Registry) Register(spec ToolSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Name] = spec
}

// Get returns the named tool spec and whether it exists.
func (r *Registry) Get(name string) (ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns every registered tool name, sorted for stable listing.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}

// errUnknownTool is returned by Dispatch when a tool name has no
// registered spec.
func errUnknownTool(name string) error {
	return bridgeerr.Newf(bridgeerr.InvalidInput, "unknown tool %q", name)
}
