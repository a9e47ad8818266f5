package main

import (
	"context"

	"github.com/hidingwill/ableton-bridge/internal/catalog"
	"github.com/hidingwill/ableton-bridge/internal/readiness"
	"github.com/hidingwill/ableton-bridge/internal/transport/osc"
)

// capabilityAdapter bridges the three already-built readiness signals
// (DAW connection, OSC bridge ping, catalog population) into the single
// dispatcher.CapabilityProvider interface, so the dispatcher itself
// never imports readiness/catalog/osc directly; each handler declares
// what it needs and the check is enforced generically.
type capabilityAdapter struct {
	signals *readiness.Signals
	bridge  *osc.Client
	cache   *catalog.Cache
}

func (a *capabilityAdapter) DAWConnected() bool {
	return a.signals.DawConnected.IsSet()
}

// BridgeConnected pings the OSC bridge client, which caches a successful
// ping for its own TTL window, so repeated capability checks
// within a burst of tool calls don't each pay a round trip.
func (a *capabilityAdapter) BridgeConnected(ctx context.Context) bool {
	if a.bridge == nil {
		return false
	}
	_, err := a.bridge.Ping(ctx)
	return err == nil
}

func (a *capabilityAdapter) CatalogPopulated() bool {
	return a.signals.CatalogPopulated.IsSet()
}

func (a *capabilityAdapter) CatalogCount() int {
	return a.cache.Count()
}
