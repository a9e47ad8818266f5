// Package tools implements the concrete tool handlers registered into
// the dispatcher at startup: the instant property setters, the compound
// structural commands, OSC-backed deep-API calls, and the shared-store
// operations (snapshot/restore, macro create/update, effect-chain
// template save/load).
package tools

import (
	"time"

	"go.uber.org/zap"

	"github.com/hidingwill/ableton-bridge/internal/catalog"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/pipeline"
	"github.com/hidingwill/ableton-bridge/internal/store"
)

// catalogResolveTimeout is the caller-controlled timeout handlers use
// when resolving a device name through the catalog.
const catalogResolveTimeout = 5 * time.Second

// Deps bundles every collaborator a tool handler may need. Handlers take
// only what they use rather than threading a god-object through every
// call.
type Deps struct {
	Pipeline  *pipeline.Pipeline
	Catalog   *catalog.Cache
	Snapshots *store.SnapshotStore
	Macros    *store.MacroStore
	ParamMaps *store.ParameterMapStore
	Templates *store.TemplateStore
	Logger    *zap.Logger
}

// Register wires every concrete tool handler into reg.
func Register(reg *dispatcher.Registry, deps Deps) {
	registerPropertySetters(reg, deps)
	registerStructuralTools(reg, deps)
	registerDiscovery(reg, deps)
	registerSnapshotTools(reg, deps)
	registerMacroTools(reg, deps)
	registerTemplateTools(reg, deps)
	registerRealtimeTools(reg, deps)
	registerCatalogTools(reg, deps)
}
