package tools

import (
	"context"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/store"
)

// registerTemplateTools wires effect-chain template persistence: save a
// named device chain to disk, load it back later, optionally applying it
// to a track.
func registerTemplateTools(reg *dispatcher.Registry, deps Deps) {
	reg.Register(dispatcher.ToolSpec{
		Name:        "save_effect_chain_template",
		Description: "Persist an ordered list of devices and parameter overrides as a named, reusable template.",
		ErrorPrefix: "save_effect_chain_template failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "name")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			name, _ := dispatcher.String(params, "name")
			devices, err := decodeTemplateDevices(params)
			if err != nil {
				return nil, err
			}
			tmpl := store.Template{Name: name, Devices: devices}
			if err := deps.Templates.Save(tmpl); err != nil {
				return nil, err
			}
			return tmpl, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "load_effect_chain_template",
		Description: "Load a previously saved effect-chain template and, when track_id is given, apply its devices to that track.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "load_effect_chain_template failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "name")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			name, _ := dispatcher.String(params, "name")
			tmpl, err := deps.Templates.Load(name)
			if err != nil {
				return nil, err
			}

			if trackID, ok := params["track_id"]; ok {
				for _, device := range tmpl.Devices {
					sendParams := map[string]any{"uri": device.URI, "track_id": trackID}
					if _, err := deps.Pipeline.SendTCP(ctx, "load_instrument_or_effect", sendParams, true, 0); err != nil {
						return nil, err
					}
				}
			}
			return tmpl, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "list_effect_chain_templates",
		Description: "List every saved effect-chain template.",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			return deps.Templates.List(), nil
		},
	})
}

func decodeTemplateDevices(params map[string]any) ([]store.TemplateDevice, error) {
	raw, ok := params["devices"]
	if !ok {
		return nil, bridgeerr.New(bridgeerr.InvalidInput, "missing field \"devices\"")
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, bridgeerr.New(bridgeerr.InvalidInput, "\"devices\" must be an array")
	}

	out := make([]store.TemplateDevice, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, bridgeerr.New(bridgeerr.InvalidInput, "each device must be an object")
		}
		uri, _ := m["uri"].(string)
		overrides, _ := m["parameter_overrides"].(map[string]any)
		out = append(out, store.TemplateDevice{URI: uri, ParameterOverrides: overrides})
	}
	return out, nil
}
