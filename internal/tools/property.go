package tools

import (
	"context"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
)

// registerPropertySetters wires the tier-0, single-command instant
// property setters: one TCP command each, no post-delay.
func registerPropertySetters(reg *dispatcher.Registry, deps Deps) {
	reg.Register(dispatcher.ToolSpec{
		Name:        "set_tempo",
		Description: "Set the session tempo in BPM.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "set_tempo failed",
		Validator: func(params map[string]any) error {
			bpm, ok := params["bpm"]
			if !ok {
				return bridgeerr.New(bridgeerr.InvalidInput, "missing field \"bpm\"")
			}
			f, ok := asFloat(bpm)
			if !ok || f <= 0 || f > 999 {
				return bridgeerr.New(bridgeerr.InvalidInput, "\"bpm\" must be a number in (0, 999]")
			}
			return nil
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			resp, err := deps.Pipeline.SendTCP(ctx, "set_tempo", params, false, 0)
			if err != nil {
				return nil, err
			}
			return resp.Result, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "set_track_name",
		Description: "Rename a track.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "set_track_name failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "name")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			resp, err := deps.Pipeline.SendTCP(ctx, "set_track_name", params, false, 0)
			if err != nil {
				return nil, err
			}
			return resp.Result, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "set_track_color",
		Description: "Set a track's display color index.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "set_track_color failed",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			resp, err := deps.Pipeline.SendTCP(ctx, "set_track_color", params, false, 0)
			if err != nil {
				return nil, err
			}
			return resp.Result, nil
		},
	})
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
