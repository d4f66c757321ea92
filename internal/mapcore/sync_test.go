package mapcore

import (
	"math"
	"testing"
)

func mountedWidget(t *testing.T) (*Widget, *MemoryEngine) {
	t.Helper()
	e := NewMemoryEngine()
	w := NewWidget(e)
	if err := w.Mount(baseConfig()); err != nil {
		t.Fatal(err)
	}
	return w, e
}

func TestPointSyncBuildsOneMarkerPerFeature(t *testing.T) {
	w, _ := mountedWidget(t)

	pts := []PointFeature{
		{ID: "1", Position: LatLng{Lat: 10, Lng: 20}, Category: "building", Severity: SeverityCritical},
		{ID: "2", Position: LatLng{Lat: 11, Lng: 21}, Category: "road", Severity: SeverityLow},
		{ID: "3", Position: LatLng{Lat: 12, Lng: 22}, Category: "bridge", Severity: "bogus"},
	}
	w.SetPoints(LayerDamage, pts)

	g := w.Group(LayerDamage)
	markers := g.Markers()
	if len(markers) != len(pts) {
		t.Fatalf("markers = %d, want %d", len(markers), len(pts))
	}
	if !g.Clustered() {
		t.Error("point layer should render through a clustering container")
	}
	for i, m := range markers {
		if m.Position != pts[i].Position {
			t.Errorf("marker %d at %v, want %v", i, m.Position, pts[i].Position)
		}
	}
	if markers[0].Icon.Color != "#ef4444" {
		t.Errorf("critical color = %s, want #ef4444", markers[0].Icon.Color)
	}
	if markers[1].Icon.Color != "#3b82f6" {
		t.Errorf("low color = %s, want #3b82f6", markers[1].Icon.Color)
	}
	// Unrecognized severity falls back to medium's color.
	if markers[2].Icon.Color != "#eab308" {
		t.Errorf("fallback color = %s, want #eab308", markers[2].Icon.Color)
	}
}

func TestPointSyncScenarioDamageLayer(t *testing.T) {
	w, e := mountedWidget(t)

	w.SetPoints(LayerDamage, []PointFeature{{
		ID:       "1",
		Position: LatLng{Lat: 10, Lng: 20},
		Category: "building",
		Severity: SeverityCritical,
	}})

	g := w.Group(LayerDamage)
	if !e.Surfaces()[0].Attached(g) {
		t.Fatal("damage layer should be attached")
	}
	markers := g.Markers()
	if len(markers) != 1 {
		t.Fatalf("markers = %d, want 1", len(markers))
	}
	m := markers[0]
	if m.Position != (LatLng{Lat: 10, Lng: 20}) {
		t.Errorf("position = %v, want (10,20)", m.Position)
	}
	if m.Icon.Color != "#ef4444" {
		t.Errorf("color = %s, want #ef4444", m.Icon.Color)
	}
}

func TestPointPopupFallbacks(t *testing.T) {
	w, _ := mountedWidget(t)

	w.SetPoints(LayerDamage, []PointFeature{
		{ID: "7", Position: LatLng{Lat: 1, Lng: 1}},
		{ID: "8", Position: LatLng{Lat: 2, Lng: 2}, Title: "Collapsed bridge", Description: "Span down", Severity: SeverityHigh},
	})

	markers := w.Group(LayerDamage).Markers()
	p0 := markers[0].Popup
	if p0.Title != "Point #7" {
		t.Errorf("title fallback = %q, want %q", p0.Title, "Point #7")
	}
	if p0.Description != "No description available" {
		t.Errorf("description fallback = %q", p0.Description)
	}
	if p0.SeverityBadge != "" {
		t.Errorf("badge = %q, want empty for absent severity", p0.SeverityBadge)
	}

	p1 := markers[1].Popup
	if p1.Title != "Collapsed bridge" || p1.Description != "Span down" {
		t.Errorf("popup = %+v", p1)
	}
	if p1.SeverityBadge != "HIGH" {
		t.Errorf("badge = %q, want HIGH", p1.SeverityBadge)
	}
}

func TestPointSyncRebuildIdempotent(t *testing.T) {
	w, _ := mountedWidget(t)

	pts := []PointFeature{
		{ID: "1", Position: LatLng{Lat: 1, Lng: 1}},
		{ID: "2", Position: LatLng{Lat: 2, Lng: 2}},
	}
	w.SetPoints(LayerDamage, pts)
	w.SetPoints(LayerDamage, pts)

	if got := len(w.Group(LayerDamage).Markers()); got != 2 {
		t.Fatalf("markers after double sync = %d, want 2 (no accumulation)", got)
	}
}

func TestPointSyncEmptyArrayClearsStaleMarkers(t *testing.T) {
	w, _ := mountedWidget(t)

	w.SetPoints(LayerResources, []PointFeature{{ID: "1", Position: LatLng{Lat: 1, Lng: 1}}})
	w.SetPoints(LayerResources, nil)

	if got := len(w.Group(LayerResources).Markers()); got != 0 {
		t.Fatalf("markers after empty sync = %d, want 0", got)
	}
}

func TestPolygonFillOpacityDerivation(t *testing.T) {
	cases := []struct {
		overlay float64
		want    float64
	}{
		{100, 0.4},
		{50, 0.2},
		{0, 0},
		{150, 0.4}, // out-of-range scalars land inside [0, 0.4]
		{-10, 0},
	}
	for _, tc := range cases {
		if got := FillOpacity(tc.overlay); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("FillOpacity(%v) = %v, want %v", tc.overlay, got, tc.want)
		}
	}
}

func TestPolygonSyncStylesAndPopups(t *testing.T) {
	w, _ := mountedWidget(t)

	w.SetPolygons([]PolygonFeature{
		{Ring: ring3(), Level: LevelMandatory},
		{Ring: ring3(), StrokeColor: "#123456", Name: "Zone A"},
		{Ring: ring3(), StrokeColor: "#123456", FillColor: "#654321", Description: "Voluntary area"},
	}, 50)

	polys := w.Group(LayerAlerts).Polygons()
	if len(polys) != 3 {
		t.Fatalf("polygons = %d, want 3", len(polys))
	}

	// Defaults: fixed red stroke, fill follows stroke.
	if polys[0].StrokeColor != "#ef4444" || polys[0].FillColor != "#ef4444" {
		t.Errorf("default colors = %s/%s, want #ef4444/#ef4444", polys[0].StrokeColor, polys[0].FillColor)
	}
	if polys[1].FillColor != "#123456" {
		t.Errorf("fill should default to stroke, got %s", polys[1].FillColor)
	}
	if polys[2].FillColor != "#654321" {
		t.Errorf("explicit fill = %s, want #654321", polys[2].FillColor)
	}

	for i, p := range polys {
		if math.Abs(p.FillOpacity-0.2) > 1e-9 {
			t.Errorf("polygon %d fillOpacity = %v, want 0.2", i, p.FillOpacity)
		}
	}

	// Popup only when name or description is present.
	if polys[0].Popup != nil {
		t.Error("polygon without name/description must have no popup")
	}
	if polys[1].Popup == nil || polys[1].Popup.Title != "Zone A" {
		t.Errorf("polygon popup = %+v", polys[1].Popup)
	}
	if polys[2].Popup == nil || polys[2].Popup.Description != "Voluntary area" {
		t.Errorf("polygon popup = %+v", polys[2].Popup)
	}
}

func TestPolygonSyncRebuildIdempotent(t *testing.T) {
	w, _ := mountedWidget(t)

	polys := []PolygonFeature{{Ring: ring3()}, {Ring: ring3()}}
	w.SetPolygons(polys, 100)
	w.SetPolygons(polys, 100)

	if got := len(w.Group(LayerAlerts).Polygons()); got != 2 {
		t.Fatalf("polygons after double sync = %d, want 2", got)
	}
}

func TestHeatSyncProjectionAndParameters(t *testing.T) {
	w, _ := mountedWidget(t)

	w.SetHeatmap([]HeatmapSample{
		{Position: LatLng{Lat: 1, Lng: 2}, Intensity: 0.5},
		{Position: LatLng{Lat: 3, Lng: 4}}, // intensity defaults to 1
	})

	h := w.Group(LayerHeatmap).Heat()
	if h == nil {
		t.Fatal("heat layer missing")
	}
	if len(h.Points) != 2 {
		t.Fatalf("heat points = %d, want 2", len(h.Points))
	}
	if h.Points[0] != (HeatPoint{Lat: 1, Lng: 2, Intensity: 0.5}) {
		t.Errorf("point 0 = %+v", h.Points[0])
	}
	if h.Points[1].Intensity != 1 {
		t.Errorf("default intensity = %v, want 1", h.Points[1].Intensity)
	}
	if h.Radius != 25 || h.Blur != 15 {
		t.Errorf("radius/blur = %d/%d, want 25/15", h.Radius, h.Blur)
	}
	wantStops := []float64{0.4, 0.6, 0.8, 1.0}
	if len(h.Gradient) != len(wantStops) {
		t.Fatalf("gradient stops = %d, want %d", len(h.Gradient), len(wantStops))
	}
	for _, stop := range wantStops {
		if _, ok := h.Gradient[stop]; !ok {
			t.Errorf("gradient missing stop %v", stop)
		}
	}
}

func TestHeatSyncReplacesNotAccumulates(t *testing.T) {
	w, _ := mountedWidget(t)

	w.SetHeatmap([]HeatmapSample{{Position: LatLng{Lat: 1, Lng: 1}}, {Position: LatLng{Lat: 2, Lng: 2}}})
	w.SetHeatmap([]HeatmapSample{{Position: LatLng{Lat: 5, Lng: 5}}})

	h := w.Group(LayerHeatmap).Heat()
	if len(h.Points) != 1 {
		t.Fatalf("heat points after second sync = %d, want 1", len(h.Points))
	}
	if h.Points[0].Lat != 5 {
		t.Errorf("stale heat point survived: %+v", h.Points[0])
	}
}
