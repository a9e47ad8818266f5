package tools

import (
	"context"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
	"github.com/hidingwill/ableton-bridge/internal/store"
)

// registerMacroTools wires macro-controller creation, update, and
// application: one 0..1 input mapped onto many device parameters through
// each binding's recorded curve.
func registerMacroTools(reg *dispatcher.Registry, deps Deps) {
	reg.Register(dispatcher.ToolSpec{
		Name:        "create_macro",
		Description: "Register a macro controller mapping one 0..1 input onto many device parameters.",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			id, _ := params["id"].(string)
			bindings, err := decodeBindings(params)
			if err != nil {
				return nil, err
			}
			return deps.Macros.Create(id, bindings), nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "update_macro",
		Description: "Replace an existing macro controller's bindings.",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "id")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			id, _ := dispatcher.String(params, "id")
			bindings, err := decodeBindings(params)
			if err != nil {
				return nil, err
			}
			if err := deps.Macros.Update(id, bindings); err != nil {
				return nil, err
			}
			macro, _ := deps.Macros.Get(id)
			return macro, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "apply_macro",
		Description: "Apply a macro controller's input value to its bound device parameters.",
		Needs:       dispatcher.Needs{DAW: true, Bridge: true},
		ErrorPrefix: "apply_macro failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "id")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			id, _ := dispatcher.String(params, "id")
			macro, ok := deps.Macros.Get(id)
			if !ok {
				return nil, bridgeerr.Newf(bridgeerr.InvalidInput, "unknown macro id %q", id)
			}
			input, ok := asFloat(params["input"])
			if !ok {
				return nil, bridgeerr.New(bridgeerr.InvalidInput, "\"input\" must be a number")
			}

			outputs := macro.Apply(input)
			for i, binding := range macro.Bindings {
				_, err := deps.Pipeline.SendOSC(ctx, "/set_device_parameter",
					[]any{binding.DeviceRef, binding.ParameterName, outputs[i]}, 0)
				if err != nil {
					return nil, err
				}
			}
			return outputs, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "list_macros",
		Description: "List every registered macro controller.",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			return deps.Macros.List(), nil
		},
	})
}

func decodeBindings(params map[string]any) ([]store.MacroBinding, error) {
	raw, ok := params["bindings"]
	if !ok {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, bridgeerr.New(bridgeerr.InvalidInput, "\"bindings\" must be an array")
	}

	out := make([]store.MacroBinding, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, bridgeerr.New(bridgeerr.InvalidInput, "each binding must be an object")
		}
		deviceRef, _ := m["device_ref"].(string)
		paramName, _ := m["parameter_name"].(string)
		minOut, _ := asFloat(m["min_out"])
		maxOut, _ := asFloat(m["max_out"])
		curve, _ := m["curve"].(string)
		out = append(out, store.MacroBinding{
			DeviceRef:     deviceRef,
			ParameterName: paramName,
			MinOut:        minOut,
			MaxOut:        maxOut,
			Curve:         curve,
		})
	}
	return out, nil
}
