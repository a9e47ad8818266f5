package dispatcher

import "context"

// CapabilityProvider reports the current readiness state the dispatcher
// checks against a tool's declared Needs before running its handler.
type CapabilityProvider interface {
	DAWConnected() bool
	BridgeConnected(ctx context.Context) bool
	CatalogPopulated() bool
	CatalogCount() int
}

// Capabilities is the snapshot reported by the capabilities
// tool/resource.
type Capabilities struct {
	DAWConnected     bool   `json:"daw_connected"`
	BridgeConnected  bool   `json:"bridge_connected"`
	CatalogPopulated bool   `json:"catalog_populated"`
	CatalogItems     int    `json:"catalog_items"`
	ToolCount        int    `json:"tool_count"`
	ServerVersion    string `json:"server_version"`
	BridgeVersion    string `json:"bridge_version,omitempty"`
}
