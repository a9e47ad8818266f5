package tools

import (
	"context"
	"encoding/json"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/transport/osc"
)

// registerDiscovery wires the OSC-backed deep-API calls: device
// parameter discovery, reassembled from multiple chunk envelopes when
// the response is large.
func registerDiscovery(reg *dispatcher.Registry, deps Deps) {
	reg.Register(dispatcher.ToolSpec{
		Name:        "discover_device_parameters",
		Description: "Enumerate every automatable parameter on a device via the OSC bridge.",
		Needs:       dispatcher.Needs{DAW: true, Bridge: true},
		ErrorPrefix: "discover_device_parameters failed",
		Validator: func(params map[string]any) error {
			if _, err := dispatcher.String(params, "track"); err != nil {
				return err
			}
			if _, err := dispatcher.String(params, "device"); err != nil {
				return err
			}
			return nil
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			track, _ := dispatcher.String(params, "track")
			device, _ := dispatcher.String(params, "device")

			// Parameter count is not known ahead of the call, so the
			// dynamic timeout is seeded on the caller's
			// expected_parameter_count hint (or a large device's worst case)
			// and the bridge still honors whatever it actually returns.
			timeout := osc.DynamicTimeout(estimatedParamCount(params))

			// Discovery is queueable on the bridge side, so busy
			// responses are retried at the helper level rather than
			// surfaced straight to the agent.
			raw, err := osc.RetryBusy(ctx, func(ctx context.Context) (json.RawMessage, error) {
				return deps.Pipeline.SendOSC(ctx, "/discover_params", []any{track, device}, timeout)
			})
			if err != nil {
				return nil, err
			}

			var decoded struct {
				Parameters []json.RawMessage `json:"parameters"`
			}
			if err := json.Unmarshal(raw, &decoded); err != nil {
				return nil, err
			}
			return decoded, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "get_parameter_map",
		Description: "Look up the friendly-name/category mapping for a known device kind.",
		ErrorPrefix: "get_parameter_map failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "device_kind")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			id, _ := dispatcher.String(params, "device_kind")
			m, ok := deps.ParamMaps.Get(id)
			if !ok {
				return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "unknown device kind %q", id)
			}
			return m, nil
		},
	})
}

// estimatedParamCount lets a caller hint the expected parameter count
// for timeout sizing; it defaults to a large device's worst case when
// absent.
func estimatedParamCount(params map[string]any) int {
	if hint, ok := params["expected_parameter_count"]; ok {
		if f, ok := asFloat(hint); ok && f > 0 {
			return int(f)
		}
	}
	return 93
}
