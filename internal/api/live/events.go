package live

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relieflab/assessdash/internal/analysis"
	"github.com/relieflab/assessdash/internal/service"
	"github.com/relieflab/assessdash/internal/templates"
)

// EventHandler streams resource change events to the dashboard via SSE.
type EventHandler struct {
	panels *PanelHandler
}

// NewEventHandler creates a new event handler.
func NewEventHandler(mapService *service.MapService, metricService *service.MetricService, analysisStore *analysis.Store, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		panels: NewPanelHandler(mapService, metricService, analysisStore, renderer),
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/live/events", h.Events,
		huma.OperationTags("live"),
	)
}

func (h *EventHandler) Events(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			ch := service.DefaultBus.Subscribe()
			defer service.DefaultBus.Unsubscribe(ch)

			// Prime the panels so a freshly connected client is current.
			sse.Patch(h.panels.renderLayerToggles(), "#layer-toggles")
			sse.Patch(h.panels.renderMetricCards(), "#metric-cards")
			sse.Patch(h.panels.renderAnalysisPanel(), "#analysis-panel")

			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-ch:
					switch ev.Resource {
					case "features", "map":
						sse.Patch(h.panels.renderMetricCards(), "#metric-cards")
						sse.Patch(h.panels.renderLayerToggles(), "#layer-toggles")
					case "analysis":
						sse.Patch(h.panels.renderAnalysisPanel(), "#analysis-panel")
					}
					sse.DispatchCustomEvent("resource-changed", map[string]any{
						"resource": ev.Resource,
						"action":   ev.Action,
						"id":       ev.ID,
					})
				}
			}
		},
	}, nil
}
