package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStoreCreateGeneratesIDWhenEmpty(t *testing.T) {
	s := NewSnapshotStore()
	snap := s.Create("", "device:reverb-1", []ParameterValue{{Name: "dry/wet", Value: 0.5}})
	assert.NotEmpty(t, snap.ID)

	got, ok := s.Get(snap.ID)
	require.True(t, ok)
	assert.Equal(t, "device:reverb-1", got.DeviceRef)
	assert.Equal(t, []ParameterValue{{Name: "dry/wet", Value: 0.5}}, got.Parameters)
}

func TestSnapshotStoreCreateHonorsCallerSuppliedID(t *testing.T) {
	s := NewSnapshotStore()
	snap := s.Create("snap-1", "device:reverb-1", nil)
	assert.Equal(t, "snap-1", snap.ID)
}

func TestSnapshotStoreGetOrErrorSurfacesUnknownID(t *testing.T) {
	s := NewSnapshotStore()
	_, err := s.GetOrError("does-not-exist")
	require.Error(t, err)
}

func TestSnapshotStoreListReturnsIndependentCopies(t *testing.T) {
	s := NewSnapshotStore()
	s.Create("a", "device:1", []ParameterValue{{Name: "gain", Value: 1}})
	s.Create("b", "device:2", []ParameterValue{{Name: "gain", Value: 2}})

	list := s.List()
	assert.Len(t, list, 2)

	for i := range list {
		list[i].DeviceRef = "mutated"
	}
	again := s.List()
	for _, snap := range again {
		assert.NotEqual(t, "mutated", snap.DeviceRef)
	}
}
