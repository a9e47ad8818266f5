package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/transport/tcp"
)

// TCPSender is the narrow slice of the command pipeline the catalog
// populator needs, kept as an interface so this package does not depend
// on the pipeline package's concrete type.
type TCPSender interface {
	SendTCP(ctx context.Context, commandType string, params map[string]any, isModifying bool, timeout time.Duration) (tcp.Response, error)
}

// browseTimeout bounds the single DAW round-trip a full catalog walk
// takes; 60s matches the pipeline's known-slow override for catalog
// loads.
const browseTimeout = 60 * time.Second

// NewDAWPopulator returns a Populator that asks the DAW for its full
// browser tree over the TCP command channel and decodes the result into
// catalog items.
func NewDAWPopulator(sender TCPSender) Populator {
	return func(ctx context.Context, depthCap, itemCap int) ([]Item, error) {
		resp, err := sender.SendTCP(ctx, "browse_catalog", map[string]any{
			"max_depth": depthCap,
			"max_items": itemCap,
		}, false, browseTimeout)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(resp.Result)
		if err != nil {
			return nil, bridgeerr.Wrap(bridgeerr.ProtocolError, "re-encoding browse_catalog response", err)
		}

		var decoded struct {
			Items []Item `json:"items"`
		}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, bridgeerr.Wrap(bridgeerr.ProtocolError, "decoding browse_catalog response", err)
		}
		return decoded.Items, nil
	}
}
