package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// MacroBinding maps a macro's 0..1 input onto one device parameter's
// output range via the recorded curve.
type MacroBinding struct {
	DeviceRef     string  `json:"device_ref"`
	ParameterName string  `json:"parameter_name"`
	MinOut        float64 `json:"min_out"`
	MaxOut        float64 `json:"max_out"`
	Curve         string  `json:"curve"` // "linear", "exponential", "logarithmic"
}

// Macro is a mutable controller applying one input to many bindings.
type Macro struct {
	ID       string         `json:"id"`
	Bindings []MacroBinding `json:"bindings"`
}

// Apply maps input (expected 0..1) through every binding's curve,
// returning the resulting output value per binding.
func (m Macro) Apply(input float64) []float64 {
	outputs := make([]float64, len(m.Bindings))
	for i, b := range m.Bindings {
		outputs[i] = applyCurve(b, input)
	}
	return outputs
}

func applyCurve(b MacroBinding, input float64) float64 {
	if input < 0 {
		input = 0
	} else if input > 1 {
		input = 1
	}
	shaped := input
	switch b.Curve {
	case "exponential":
		shaped = input * input
	case "logarithmic":
		if input > 0 {
			shaped = 1 - (1-input)*(1-input)
		} else {
			shaped = 0
		}
	}
	return b.MinOut + shaped*(b.MaxOut-b.MinOut)
}

// MacroStore is a dict-like, mutable container of Macros.
type MacroStore struct {
	mu   sync.RWMutex
	byID map[string]Macro
}

// NewMacroStore constructs an empty MacroStore.
func NewMacroStore() *MacroStore {
	return &MacroStore{byID: make(map[string]Macro)}
}

// Create registers a new macro controller. If id is empty, one is
// generated.
func (s *MacroStore) Create(id string, bindings []MacroBinding) Macro {
	if id == "" {
		id = uuid.NewString()
	}
	macro := Macro{ID: id, Bindings: append([]MacroBinding(nil), bindings...)}
	s.mu.Lock()
	s.byID[id] = macro
	s.mu.Unlock()
	return macro
}

// Update replaces an existing macro's bindings.
func (s *MacroStore) Update(id string, bindings []MacroBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return bridgeerr.Newf(bridgeerr.InvalidInput, "unknown macro id %q", id)
	}
	s.byID[id] = Macro{ID: id, Bindings: append([]MacroBinding(nil), bindings...)}
	return nil
}

// Get returns a copy of the macro and whether it was found.
func (s *MacroStore) Get(id string) (Macro, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	macro, ok := s.byID[id]
	return macro, ok
}

// List returns a copy of every stored macro.
func (s *MacroStore) List() []Macro {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Macro, 0, len(s.byID))
	for _, m := range s.byID {
		out = append(out, m)
	}
	return out
}
