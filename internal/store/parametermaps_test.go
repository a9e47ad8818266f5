package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParameterMaps() []ParameterMap {
	return []ParameterMap{
		{
			ID:         "wavetable",
			DeviceKind: "instrument",
			Mappings: []ParameterMapping{
				{OriginalName: "Osc1Shp", FriendlyName: "Oscillator 1 Shape", Category: "oscillator"},
			},
		},
	}
}

func TestParameterMapStoreGet(t *testing.T) {
	s := NewParameterMapStore(sampleParameterMaps())
	m, ok := s.Get("wavetable")
	require.True(t, ok)
	assert.Equal(t, "instrument", m.DeviceKind)
}

func TestParameterMapStoreGetMissing(t *testing.T) {
	s := NewParameterMapStore(nil)
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestParameterMapStoreListIsReadOnlyCopy(t *testing.T) {
	s := NewParameterMapStore(sampleParameterMaps())
	list := s.List()
	require.Len(t, list, 1)
	list[0].DeviceKind = "mutated"

	again, ok := s.Get("wavetable")
	require.True(t, ok)
	assert.Equal(t, "instrument", again.DeviceKind)
}
