package live

import (
	"bytes"
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relieflab/assessdash/internal/analysis"
	"github.com/relieflab/assessdash/internal/mapcore"
	"github.com/relieflab/assessdash/internal/service"
	"github.com/relieflab/assessdash/internal/templates"
)

// layerLabels drives the order and labeling of the toggle panel.
var layerLabels = []struct {
	Name  string
	Label string
}{
	{mapcore.LayerDamage, "Damage reports"},
	{mapcore.LayerResources, "Resources"},
	{mapcore.LayerAlerts, "Alert zones"},
	{mapcore.LayerHeatmap, "Impact heatmap"},
}

// PanelHandler patches the metric card, layer toggle, and analysis
// summary panels.
type PanelHandler struct {
	mapService    *service.MapService
	metricService *service.MetricService
	analysisStore *analysis.Store
	renderer      *templates.Renderer
}

func NewPanelHandler(mapService *service.MapService, metricService *service.MetricService, analysisStore *analysis.Store, renderer *templates.Renderer) *PanelHandler {
	return &PanelHandler{
		mapService:    mapService,
		metricService: metricService,
		analysisStore: analysisStore,
		renderer:      renderer,
	}
}

func (h *PanelHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/live/panels", h.Panels, huma.OperationTags("live"))
	huma.Put(api, "/api/v1/live/layers", h.ToggleLayers, huma.OperationTags("live"))
}

func (h *PanelHandler) Panels(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			sse.Patch(h.renderLayerToggles(), "#layer-toggles")
			sse.Patch(h.renderMetricCards(), "#metric-cards")
			sse.Patch(h.renderAnalysisPanel(), "#analysis-panel")
		},
	}, nil
}

// ToggleLayers applies the checkbox signals to the map. Visibility is
// declared as a whole set; the widget reconciles the difference.
func (h *PanelHandler) ToggleLayers(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}

	var visible []string
	for _, l := range layerLabels {
		if signals.Bool("layer_" + l.Name) {
			visible = append(visible, l.Name)
		}
	}

	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)

			if err := h.mapService.SetVisibleLayers(visible); err != nil {
				sse.Error(err.Error())
				return
			}
			sse.Patch(h.renderLayerToggles(), "#layer-toggles")
		},
	}, nil
}

type layerToggleData struct {
	Name    string
	Label   string
	Visible bool
}

func (h *PanelHandler) renderLayerToggles() string {
	visible := h.mapService.VisibleLayers()

	var buf bytes.Buffer
	for _, l := range layerLabels {
		h.renderer.RenderToBuffer(&buf, "layer-toggle", layerToggleData{
			Name: l.Name, Label: l.Label, Visible: visible[l.Name],
		})
	}
	return buf.String()
}

func (h *PanelHandler) renderMetricCards() string {
	var buf bytes.Buffer

	active := h.mapService.ActiveAssessment()
	if active == "" || h.metricService == nil {
		h.renderer.RenderToBuffer(&buf, "empty-state", map[string]string{
			"Title": "No assessment active", "Message": "Activate an assessment to see metrics",
		})
		return buf.String()
	}

	cards, err := h.metricService.Cards(active)
	if err != nil || len(cards) == 0 {
		h.renderer.RenderToBuffer(&buf, "empty-state", map[string]string{
			"Title": "No metrics yet", "Message": "Import features to populate the dashboard",
		})
		return buf.String()
	}
	for _, card := range cards {
		h.renderer.RenderToBuffer(&buf, "metric-card", card)
	}
	return buf.String()
}

func (h *PanelHandler) renderAnalysisPanel() string {
	if h.analysisStore != nil {
		if result, ok := h.analysisStore.Latest(); ok {
			html, err := h.renderer.Render("analysis-summary", result)
			if err == nil {
				return html
			}
		}
	}

	var buf bytes.Buffer
	h.renderer.RenderToBuffer(&buf, "empty-state", map[string]string{
		"Title": "No analysis yet", "Message": "Upload a pre/post image pair to compare",
	})
	return buf.String()
}
