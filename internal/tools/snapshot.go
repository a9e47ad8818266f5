package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/store"
	"github.com/hidingwill/ableton-bridge/internal/transport/osc"
)

// registerSnapshotTools wires snapshot capture and restore: capture a
// device's parameter values now, return the device to them later as a
// group.
func registerSnapshotTools(reg *dispatcher.Registry, deps Deps) {
	reg.Register(dispatcher.ToolSpec{
		Name:        "snapshot_device",
		Description: "Capture the current parameter values of a device as a named, immutable snapshot.",
		Needs:       dispatcher.Needs{DAW: true, Bridge: true},
		ErrorPrefix: "snapshot_device failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "device_ref")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			deviceRef, _ := dispatcher.String(params, "device_ref")
			id, _ := params["id"].(string)

			raw, err := osc.RetryBusy(ctx, func(ctx context.Context) (json.RawMessage, error) {
				return deps.Pipeline.SendOSC(ctx, "/get_device_parameters", []any{deviceRef}, 0)
			})
			if err != nil {
				return nil, err
			}

			var decoded struct {
				Parameters []store.ParameterValue `json:"parameters"`
			}
			if err := json.Unmarshal(raw, &decoded); err != nil {
				return nil, bridgeerr.Wrap(bridgeerr.ProtocolError, "decoding device parameters", err)
			}

			snap := deps.Snapshots.Create(id, deviceRef, decoded.Parameters)
			return snap, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "restore_snapshot",
		Description: "Restore a device's parameters to a previously captured snapshot.",
		Needs:       dispatcher.Needs{DAW: true, Bridge: true},
		ErrorPrefix: "restore_snapshot failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "snapshot_id")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			id, _ := dispatcher.String(params, "snapshot_id")
			snap, err := deps.Snapshots.GetOrError(id)
			if err != nil {
				return nil, err
			}

			// Batch parameter restores travel as a URL-safe base64 JSON
			// string argument, the bridge's wire convention for
			// structured payloads, with the timeout scaled to the batch
			// size.
			encoded, err := json.Marshal(snap.Parameters)
			if err != nil {
				return nil, bridgeerr.Wrap(bridgeerr.Internal, "encoding snapshot parameters", err)
			}
			payload := base64.URLEncoding.EncodeToString(encoded)
			timeout := osc.DynamicTimeout(len(snap.Parameters))

			_, err = osc.RetryBusy(ctx, func(ctx context.Context) (json.RawMessage, error) {
				return deps.Pipeline.SendOSC(ctx, "/set_device_parameters", []any{snap.DeviceRef, payload}, timeout)
			})
			if err != nil {
				return nil, err
			}
			return snap, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "get_snapshot",
		Description: "Look up a previously captured snapshot by id.",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			id, err := dispatcher.String(params, "snapshot_id")
			if err != nil {
				return nil, err
			}
			return deps.Snapshots.GetOrError(id)
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "list_snapshots",
		Description: "List every captured snapshot.",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			return deps.Snapshots.List(), nil
		},
	})
}
