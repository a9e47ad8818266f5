package tools

import (
	"context"

	"github.com/hidingwill/ableton-bridge/internal/catalog"
	"github.com/hidingwill/ableton-bridge/internal/dispatcher"
)

// registerCatalogTools wires the browser catalog's on-demand refresh and
// read-only listing; the cache itself never rescans unprompted
// mid-session.
func registerCatalogTools(reg *dispatcher.Registry, deps Deps) {
	populate := catalog.NewDAWPopulator(deps.Pipeline)

	reg.Register(dispatcher.ToolSpec{
		Name:        "refresh_catalog",
		Description: "Trigger an on-demand rescan of the DAW's browser catalog. A rescan already in flight is a no-op.",
		Needs:       dispatcher.Needs{DAW: true},
		ErrorPrefix: "refresh_catalog failed",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			if err := deps.Catalog.Populate(ctx, populate); err != nil {
				return nil, err
			}
			return map[string]any{
				"state": deps.Catalog.State().String(),
				"count": deps.Catalog.Count(),
			}, nil
		},
	})

	reg.Register(dispatcher.ToolSpec{
		Name:        "list_catalog",
		Description: "List browser catalog items, optionally filtered by category.",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			category, _ := params["category"].(string)
			return deps.Catalog.List(category), nil
		},
	})
}
