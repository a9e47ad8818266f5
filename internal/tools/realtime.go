package tools

import (
	"context"

	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
)

// registerRealtimeTools wires the fire-and-forget real-time parameter
// channel, built for high-frequency parameter updates (50 Hz and
// beyond). Unlike every other tool in this package, the handler
// returns as soon as the datagram is written; it never waits on the DAW.
func registerRealtimeTools(reg *dispatcher.Registry, deps Deps) {
	reg.Register(dispatcher.ToolSpec{
		Name:        "set_parameter_realtime",
		Description: "Send a high-frequency parameter update over the fire-and-forget real-time channel. No acknowledgment, no ordering guarantee.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "set_parameter_realtime failed",
		Validator: func(params map[string]any) error {
			_, err := dispatcher.String(params, "parameter_type")
			return err
		},
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			paramType, _ := dispatcher.String(params, "parameter_type")
			if err := deps.Pipeline.SendRealtime(paramType, params); err != nil {
				return nil, err
			}
			return map[string]any{"sent": true}, nil
		},
	})
}
