package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidingwill/ableton-bridge/internal/catalog"
	"github.com/hidingwill/ableton-bridge/internal/logging"
	"github.com/hidingwill/ableton-bridge/internal/readiness"
)

func TestCapabilityAdapterReflectsReadinessAndCatalog(t *testing.T) {
	signals := readiness.NewSignals()
	cache := catalog.New(logging.NewNop(), readiness.NewEvent(), catalog.NewStore(t.TempDir()))

	adapter := &capabilityAdapter{signals: signals, bridge: nil, cache: cache}

	assert.False(t, adapter.DAWConnected())
	assert.False(t, adapter.CatalogPopulated())
	assert.Equal(t, 0, adapter.CatalogCount())
	assert.False(t, adapter.BridgeConnected(context.Background()))

	signals.DawConnected.Set()
	signals.CatalogPopulated.Set()

	assert.True(t, adapter.DAWConnected())
	assert.True(t, adapter.CatalogPopulated())
}

func TestExitCodeForSingletonConflict(t *testing.T) {
	err := &exitError{code: 2, err: assertErr("already running")}
	require.Equal(t, 2, exitCodeFor(err))
	require.Equal(t, 1, exitCodeFor(assertErr("some other failure")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
