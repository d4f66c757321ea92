package mapcore

// Widget owns one surface and its layer groups. All mutation funnels
// through ApplyConfig, the Set* synchronizer entry points, and
// Unmount; callers provide the single cooperative thread the widget
// assumes (no internal locking).
type Widget struct {
	engine      Engine
	cfg         MapConfig
	surface     Surface
	groups      map[string]*LayerGroup
	initialized bool

	// Latest data arrays, kept so a recreated surface resyncs to the
	// same declared state instead of replaying missed transitions.
	points         map[string][]PointFeature
	polygons       []PolygonFeature
	overlayOpacity float64
	heat           []HeatmapSample
}

// NewWidget creates an unmounted widget on the given engine.
func NewWidget(engine Engine) *Widget {
	return &Widget{
		engine: engine,
		points: make(map[string][]PointFeature),
		groups: make(map[string]*LayerGroup),
	}
}

// Initialized reports whether a live surface exists.
func (w *Widget) Initialized() bool { return w.initialized }

// Config returns the last applied configuration.
func (w *Widget) Config() MapConfig { return w.cfg }

// Group returns the named group from the non-owning index, or nil.
func (w *Widget) Group(name string) *LayerGroup { return w.groups[name] }

// Surface returns the live surface, or nil when not initialized.
func (w *Widget) Surface() Surface {
	if !w.initialized {
		return nil
	}
	return w.surface
}

// ApplyConfig drives the surface lifecycle. Identity-affecting fields
// (center, zoom, base style, labels) force a full teardown and
// recreation; a visible-layer change alone only reconciles
// attachment. Applying an identical config repeatedly is idempotent.
// If the engine reports no host target, the widget stays
// uninitialized and the next ApplyConfig retries.
func (w *Widget) ApplyConfig(cfg MapConfig) error {
	recreate := !w.initialized || !w.cfg.sameIdentity(cfg)
	w.cfg = cfg
	if recreate {
		w.teardown()
		if err := w.createSurface(); err != nil {
			return err
		}
		if !w.initialized {
			return nil
		}
		w.resync()
	}
	reconcileVisibility(w.Surface(), w.groups, w.cfg.VisibleLayers)
	return nil
}

// Mount is ApplyConfig under its lifecycle name; kept for hosts that
// distinguish first mount from reconfiguration.
func (w *Widget) Mount(cfg MapConfig) error { return w.ApplyConfig(cfg) }

// Unmount tears the surface down regardless of whether it was fully
// initialized, so no engine resources leak. Synchronizer calls after
// Unmount are detectable no-ops.
func (w *Widget) Unmount() {
	w.teardown()
}

// SetPoints replaces the named point layer's markers. Unknown layer
// names and an uninitialized surface are no-ops; the stored array is
// still updated so a later surface picks it up.
func (w *Widget) SetPoints(layer string, pts []PointFeature) {
	if !isPointLayer(layer) {
		return
	}
	w.points[layer] = pts
	if !w.initialized {
		return
	}
	if g := w.groups[layer]; g != nil {
		syncPoints(g, pts)
	}
}

// SetPolygons replaces the alert-zone polygons. overlayOpacity is the
// shared 0-100 fill scalar for the whole array.
func (w *Widget) SetPolygons(polys []PolygonFeature, overlayOpacity float64) {
	w.polygons = polys
	w.overlayOpacity = overlayOpacity
	if !w.initialized {
		return
	}
	if g := w.groups[LayerAlerts]; g != nil {
		syncPolygons(g, polys, overlayOpacity)
	}
}

// SetHeatmap replaces the kernel-density samples. The heatmap group
// is created on first non-empty data and then participates in
// visibility reconciliation like any other group.
func (w *Widget) SetHeatmap(samples []HeatmapSample) {
	w.heat = samples
	if !w.initialized {
		return
	}
	g := w.groups[LayerHeatmap]
	if g == nil {
		if len(samples) == 0 {
			return
		}
		g = NewLayerGroup(LayerHeatmap)
		w.groups[LayerHeatmap] = g
	}
	syncHeat(g, samples)
	reconcileVisibility(w.Surface(), w.groups, w.cfg.VisibleLayers)
}

func (w *Widget) createSurface() error {
	s, err := w.engine.NewSurface(w.cfg)
	if err != nil {
		return err
	}
	if s == nil {
		// Host target absent; retried by the next ApplyConfig.
		return nil
	}
	w.surface = s
	w.groups = make(map[string]*LayerGroup, len(eagerLayerNames)+1)
	for _, name := range eagerLayerNames {
		w.groups[name] = NewLayerGroup(name)
	}
	s.AddControl(ControlZoom)
	s.AddControl(ControlScale)
	s.AddControl(ControlAttribution)
	if w.cfg.ShowLabels && w.cfg.BaseStyle == BaseSatellite {
		s.AddLabelOverlay()
	}
	w.initialized = true
	return nil
}

// resync rebuilds every group from the latest stored data arrays.
func (w *Widget) resync() {
	for _, name := range PointLayerNames() {
		syncPoints(w.groups[name], w.points[name])
	}
	syncPolygons(w.groups[LayerAlerts], w.polygons, w.overlayOpacity)
	if len(w.heat) > 0 {
		g := NewLayerGroup(LayerHeatmap)
		w.groups[LayerHeatmap] = g
		syncHeat(g, w.heat)
	}
}

func (w *Widget) teardown() {
	if w.surface != nil {
		w.surface.Destroy()
	}
	w.surface = nil
	w.groups = make(map[string]*LayerGroup)
	w.initialized = false
}

func isPointLayer(name string) bool {
	for _, n := range PointLayerNames() {
		if n == name {
			return true
		}
	}
	return false
}
