// Package prompts implements the agent-facing surface's named prompt
// templates: instruction strings with parameterized placeholders,
// rendered with Go's text/template.
package prompts

import (
	"bytes"
	"sort"
	"sync"
	"text/template"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// Info describes one registered prompt for listing purposes.
type Info struct {
	Name        string
	Description string
}

// Registry is the startup-constructed mapping from prompt name to its
// compiled template, mirroring dispatcher.Registry's shape.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]promptSpec
}

type promptSpec struct {
	description string
	tmpl        *template.Template
}

// NewRegistry constructs an empty prompt registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]promptSpec)}
}

// Register compiles body as a text/template under name. A malformed
// template is a startup-time programmer error, so this panics rather than
// returning an error; every call site here uses a literal constant body.
func (r *Registry) Register(name, description, body string) {
	tmpl := template.Must(template.New(name).Parse(body))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[name] = promptSpec{description: description, tmpl: tmpl}
}

// Render executes the named prompt's template against args, returning the
// rendered instruction string.
func (r *Registry) Render(name string, args map[string]any) (string, error) {
	r.mu.RLock()
	spec, ok := r.specs[name]
	r.mu.RUnlock()
	if !ok {
		return "", bridgeerr.Newf(bridgeerr.InvalidInput, "unknown prompt %q", name)
	}
	var buf bytes.Buffer
	if err := spec.tmpl.Execute(&buf, args); err != nil {
		return "", bridgeerr.Wrap(bridgeerr.InvalidInput, "rendering prompt "+name, err)
	}
	return buf.String(), nil
}

// List returns every registered prompt's name and description, sorted by
// name for stable listing.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.specs))
	for name, spec := range r.specs {
		out = append(out, Info{Name: name, Description: spec.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterDefaults wires the bridge's built-in prompt templates.
func RegisterDefaults(r *Registry) {
	r.Register("new_instrument_track",
		"Instructions for adding a new instrument track with a chosen instrument.",
		`Create a new MIDI track named "{{.track_name}}" loaded with the `+
			`"{{.instrument_name}}" instrument. Use create_instrument_track, then `+
			`confirm the track appears in the tracks resource before reporting success.`)

	r.Register("mix_check",
		"Instructions for a quick mix sanity pass across the session.",
		`Read the "tracks" resource and report any track left soloed, any track `+
			`with volume at unity that was likely meant to be adjusted, and any `+
			`track named "{{.focus_track}}" that is currently muted.`)

	r.Register("effect_chain_from_template",
		"Instructions for applying a saved effect-chain template to a track.",
		`Load the effect-chain template "{{.template_name}}" and apply its devices, `+
			`in order, to track "{{.track_name}}", using load_effect_chain_template.`)
}
