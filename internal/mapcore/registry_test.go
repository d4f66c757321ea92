package mapcore

import "testing"

func TestReconcileAttachesIffVisible(t *testing.T) {
	sets := []map[string]bool{
		{},
		{LayerDamage: true},
		{LayerResources: true, LayerAlerts: true},
		{LayerDamage: true, LayerResources: true, LayerAlerts: true},
		{LayerAlerts: true, "unknown": true},
	}

	for _, visible := range sets {
		e := NewMemoryEngine()
		w := NewWidget(e)
		cfg := baseConfig()
		cfg.VisibleLayers = visible
		if err := w.ApplyConfig(cfg); err != nil {
			t.Fatal(err)
		}

		s := e.Surfaces()[0]
		for _, name := range []string{LayerDamage, LayerResources, LayerAlerts} {
			want := visible[name]
			if got := s.Attached(w.Group(name)); got != want {
				t.Errorf("set %v: layer %q attached = %v, want %v", visible, name, got, want)
			}
		}
	}
}

func TestReconcileIdempotentUnderRepeatedSet(t *testing.T) {
	e := NewMemoryEngine()
	w := NewWidget(e)
	cfg := baseConfig()
	cfg.VisibleLayers = map[string]bool{LayerDamage: true, LayerAlerts: true}

	for i := 0; i < 4; i++ {
		if err := w.ApplyConfig(cfg); err != nil {
			t.Fatal(err)
		}
	}

	s := e.Surfaces()[0]
	if got := s.AttachedCount(); got != 2 {
		t.Fatalf("attached groups = %d, want 2", got)
	}
}

func TestReconcileWithoutSurfaceIsNoOp(t *testing.T) {
	groups := map[string]*LayerGroup{LayerDamage: NewLayerGroup(LayerDamage)}
	// Must not panic and must not mutate anything.
	reconcileVisibility(nil, groups, map[string]bool{LayerDamage: true})
}

func TestHeatmapGroupJoinsReconciliationLazily(t *testing.T) {
	e := NewMemoryEngine()
	w := NewWidget(e)
	cfg := baseConfig()
	cfg.VisibleLayers = map[string]bool{LayerHeatmap: true}
	if err := w.ApplyConfig(cfg); err != nil {
		t.Fatal(err)
	}

	s := e.Surfaces()[0]
	if w.Group(LayerHeatmap) != nil {
		t.Fatal("heatmap group must not exist before data")
	}

	w.SetHeatmap([]HeatmapSample{{Position: LatLng{Lat: 3, Lng: 4}, Intensity: 2}})
	g := w.Group(LayerHeatmap)
	if g == nil {
		t.Fatal("heatmap group should be created on first non-empty data")
	}
	if !s.Attached(g) {
		t.Error("heatmap group should attach because it is in the visible set")
	}

	// Emptying the data clears the group but never removes it.
	w.SetHeatmap(nil)
	if w.Group(LayerHeatmap) == nil {
		t.Fatal("heatmap group must survive empty data")
	}
	if !s.Attached(g) {
		t.Error("cleared heatmap group stays attached")
	}
	if g.Heat() != nil {
		t.Error("heat layer should be cleared on empty data")
	}
}

func TestHeatmapHiddenWhenNotVisible(t *testing.T) {
	e := NewMemoryEngine()
	w := NewWidget(e)
	if err := w.ApplyConfig(baseConfig()); err != nil {
		t.Fatal(err)
	}

	w.SetHeatmap([]HeatmapSample{{Position: LatLng{Lat: 3, Lng: 4}}})
	g := w.Group(LayerHeatmap)
	if g == nil {
		t.Fatal("heatmap group should exist after data")
	}
	if e.Surfaces()[0].Attached(g) {
		t.Error("heatmap must stay detached while absent from the visible set")
	}
}
