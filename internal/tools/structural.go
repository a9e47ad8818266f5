package tools

import (
	"context"

	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
)

// registerStructuralTools wires compound tools that issue several
// ordered TCP commands per call: create the track, load the resolved
// instrument, then name and color it.
func registerStructuralTools(reg *dispatcher.Registry, deps Deps) {
	reg.Register(dispatcher.ToolSpec{
		Name: "create_instrument_track",
		Description: "Create a MIDI track, load an instrument onto it by name, " +
			"and set its name and color in one call.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "create_instrument_track failed",
		Validator: func(params map[string]any) error {
			if _, err := dispatcher.String(params, "instrument_name"); err != nil {
				return err
			}
			if _, err := dispatcher.String(params, "track_name"); err != nil {
				return err
			}
			return nil
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			instrumentName, _ := dispatcher.String(params, "instrument_name")
			trackName, _ := dispatcher.String(params, "track_name")

			results := make(map[string]any, 4)

			created, err := deps.Pipeline.SendTCP(ctx, "create_midi_track", nil, true, 0)
			if err != nil {
				return nil, err
			}
			results["create_midi_track"] = created.Result

			uri := deps.Catalog.Resolve(ctx, instrumentName, catalogResolveTimeout)
			loaded, err := deps.Pipeline.SendTCP(ctx, "load_instrument_or_effect", map[string]any{"uri": uri}, true, 0)
			if err != nil {
				return nil, err
			}
			results["load_instrument_or_effect"] = loaded.Result

			named, err := deps.Pipeline.SendTCP(ctx, "set_track_name", map[string]any{"name": trackName}, false, 0)
			if err != nil {
				return nil, err
			}
			results["set_track_name"] = named.Result

			if color, ok := params["color"]; ok {
				colored, err := deps.Pipeline.SendTCP(ctx, "set_track_color", map[string]any{"color": color}, false, 0)
				if err != nil {
					return nil, err
				}
				results["set_track_color"] = colored.Result
			}

			return results, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "load_instrument_or_effect",
		Description: "Load a device onto a track, resolving the given name through the browser catalog.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "load_instrument_or_effect failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "name")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			name, err := dispatcher.String(params, "name")
			if err != nil {
				return nil, err
			}
			uri := deps.Catalog.Resolve(ctx, name, catalogResolveTimeout)

			sendParams := map[string]any{"uri": uri}
			if trackID, ok := params["track_id"]; ok {
				sendParams["track_id"] = trackID
			}
			resp, err := deps.Pipeline.SendTCP(ctx, "load_instrument_or_effect", sendParams, true, 0)
			if err != nil {
				return nil, err
			}
			return resp.Result, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "create_midi_track",
		Description: "Create a new, empty MIDI track.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "create_midi_track failed",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			resp, err := deps.Pipeline.SendTCP(ctx, "create_midi_track", params, true, 0)
			if err != nil {
				return nil, err
			}
			return resp.Result, nil
		},
	})
}
