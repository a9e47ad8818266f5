package resources

import (
	"context"
	"time"

	"github.com/hidingwill/ableton-bridge/internal/catalog"
	"github.com/hidingwill/ableton-bridge/internal/pipeline"
)

// queryTimeout bounds the DAW round-trips the "session" and "tracks"
// providers issue.
const queryTimeout = 10 * time.Second

// Deps bundles the collaborators resource providers read from.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Catalog  *catalog.Cache
}

// Register wires the concrete resources "session", "tracks", and
// "catalog-status". The "capabilities" resource is registered
// separately by cmd/bridge once the dispatcher exists, since it reports
// the dispatcher's own tool count and version.
func Register(reg *Registry, deps Deps) {
	reg.Register("session", "Current session info (tempo, time signature, track count) from the DAW.",
		func(ctx context.Context) (any, error) {
			resp, err := deps.Pipeline.SendTCP(ctx, "get_session_info", nil, false, queryTimeout)
			if err != nil {
				return nil, err
			}
			return resp.Result, nil
		})

	reg.Register("tracks", "Current track list (name, type, color, mute/solo/arm state) from the DAW.",
		func(ctx context.Context) (any, error) {
			resp, err := deps.Pipeline.SendTCP(ctx, "get_tracks", nil, false, queryTimeout)
			if err != nil {
				return nil, err
			}
			return resp.Result, nil
		})

	reg.Register("catalog-status", "Browser catalog cache state and item count, read from memory only.",
		func(ctx context.Context) (any, error) {
			return catalogStatus{
				State: deps.Catalog.State().String(),
				Count: deps.Catalog.Count(),
			}, nil
		})
}

type catalogStatus struct {
	State string `json:"state"`
	Count int    `json:"count"`
}
