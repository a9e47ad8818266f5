package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroApplyLinearCurve(t *testing.T) {
	m := Macro{Bindings: []MacroBinding{{MinOut: 0, MaxOut: 100, Curve: "linear"}}}
	outputs := m.Apply(0.5)
	require.Len(t, outputs, 1)
	assert.InDelta(t, 50, outputs[0], 0.001)
}

func TestMacroApplyClampsOutOfRangeInput(t *testing.T) {
	m := Macro{Bindings: []MacroBinding{{MinOut: 0, MaxOut: 10, Curve: "linear"}}}
	assert.InDelta(t, 0, m.Apply(-5)[0], 0.001)
	assert.InDelta(t, 10, m.Apply(5)[0], 0.001)
}

func TestMacroApplyExponentialAndLogarithmicCurves(t *testing.T) {
	exp := Macro{Bindings: []MacroBinding{{MinOut: 0, MaxOut: 1, Curve: "exponential"}}}
	assert.InDelta(t, 0.25, exp.Apply(0.5)[0], 0.001)

	log := Macro{Bindings: []MacroBinding{{MinOut: 0, MaxOut: 1, Curve: "logarithmic"}}}
	assert.InDelta(t, 0.75, log.Apply(0.5)[0], 0.001)
}

func TestMacroStoreCreateAndUpdate(t *testing.T) {
	s := NewMacroStore()
	macro := s.Create("", []MacroBinding{{DeviceRef: "d1", ParameterName: "gain", MaxOut: 1}})
	require.NotEmpty(t, macro.ID)

	err := s.Update(macro.ID, []MacroBinding{{DeviceRef: "d2", ParameterName: "freq", MaxOut: 2}})
	require.NoError(t, err)

	got, ok := s.Get(macro.ID)
	require.True(t, ok)
	assert.Equal(t, "d2", got.Bindings[0].DeviceRef)
}

func TestMacroStoreUpdateRejectsUnknownID(t *testing.T) {
	s := NewMacroStore()
	err := s.Update("missing", nil)
	require.Error(t, err)
}

func TestMacroStoreListReturnsAllMacros(t *testing.T) {
	s := NewMacroStore()
	s.Create("a", nil)
	s.Create("b", nil)
	assert.Len(t, s.List(), 2)
}
