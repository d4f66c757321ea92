package live

import (
	"context"
	"strings"
	"testing"

	"github.com/relieflab/assessdash/internal/analysis"
	"github.com/relieflab/assessdash/internal/mapcore"
	"github.com/relieflab/assessdash/internal/service"
	"github.com/relieflab/assessdash/internal/templates"
)

func testRenderer(t *testing.T) *templates.Renderer {
	t.Helper()
	r, err := templates.New("../../../web/templates/fragments")
	if err != nil {
		t.Fatal("fragments failed to parse:", err)
	}
	return r
}

func testPanels(t *testing.T, store *analysis.Store) (*PanelHandler, *service.MapService) {
	t.Helper()
	mapService := service.NewMapService(mapcore.NewMemoryEngine(), nil)
	return NewPanelHandler(mapService, nil, store, testRenderer(t)), mapService
}

func TestRenderLayerToggles(t *testing.T) {
	h, mapService := testPanels(t, nil)

	err := mapService.Activate(service.Assessment{
		ID: "a",
		Map: service.MapSettings{
			BaseStyle:     "street",
			VisibleLayers: []string{mapcore.LayerDamage},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	html := h.renderLayerToggles()
	for _, l := range layerLabels {
		if !strings.Contains(html, "toggle-"+l.Name) {
			t.Fatalf("missing toggle for %s:\n%s", l.Name, html)
		}
	}
	if !strings.Contains(html, `data-bind="layer_damage"`) {
		t.Fatalf("damage toggle missing signal binding:\n%s", html)
	}
	// Only the damage toggle starts checked.
	if got := strings.Count(html, "checked"); got != 1 {
		t.Fatalf("checked toggles = %d, want 1:\n%s", got, html)
	}
}

func TestRenderMetricCardsWithoutAssessment(t *testing.T) {
	h, _ := testPanels(t, nil)

	html := h.renderMetricCards()
	if !strings.Contains(html, "No assessment active") {
		t.Fatalf("expected empty state:\n%s", html)
	}
}

func TestRenderAnalysisPanel(t *testing.T) {
	store := analysis.NewStore(nil)
	h, _ := testPanels(t, store)

	html := h.renderAnalysisPanel()
	if !strings.Contains(html, "No analysis yet") {
		t.Fatalf("expected empty state before any result:\n%s", html)
	}

	store.Put(context.Background(), &analysis.Result{
		Success:           true,
		AnalysisID:        "a1",
		ChangePercentage:  42.5,
		ImpactLevel:       "high",
		ImpactDescription: "Widespread flooding along the river",
		Recommendations:   []string{"evacuate low-lying areas"},
	})

	html = h.renderAnalysisPanel()
	if !strings.Contains(html, "analysis-a1") {
		t.Fatalf("missing analysis id:\n%s", html)
	}
	if !strings.Contains(html, "HIGH") {
		t.Fatalf("impact badge not uppercased:\n%s", html)
	}
	if !strings.Contains(html, "42.5% changed") {
		t.Fatalf("missing change percentage:\n%s", html)
	}
	if !strings.Contains(html, "evacuate low-lying areas") {
		t.Fatalf("missing recommendation:\n%s", html)
	}
}
