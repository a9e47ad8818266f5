package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(ToolSpec{Name: "set_tempo", Needs: Needs{DAW: true}})

	spec, ok := r.Get("set_tempo")
	require.True(t, ok)
	assert.True(t, spec.Needs.DAW)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(ToolSpec{Name: "zeta"})
	r.Register(ToolSpec{Name: "alpha"})
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestRegistryCount(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Count())
	r.Register(ToolSpec{Name: "a", Handler: func(ctx context.Context, params map[string]any) (any, error) { return nil, nil }})
	assert.Equal(t, 1, r.Count())
}
