package mapcore

// Engine creates surfaces on demand. An implementation may return
// (nil, nil) when its host rendering target is absent; the widget
// treats that as a legitimate no-op state and retries only on the
// next config application, never by polling.
type Engine interface {
	NewSurface(cfg MapConfig) (Surface, error)
}

// Surface is the live rendering engine instance plus its base imagery
// and chrome. A widget owns at most one live surface; all calls are
// synchronous and happen on the widget's single cooperative thread.
type Surface interface {
	AddLayer(g *LayerGroup)
	RemoveLayer(g *LayerGroup)
	HasLayer(g *LayerGroup) bool
	AddControl(c Control)
	// AddLabelOverlay adds the place-name overlay. Only called for
	// satellite base imagery with labels enabled.
	AddLabelOverlay()
	Destroy()
}

// Control is a chrome element added at surface creation.
type Control string

const (
	ControlZoom        Control = "zoom"
	ControlScale       Control = "scale"
	ControlAttribution Control = "attribution"
)

// Popup is the interaction content bound to a marker or polygon.
type Popup struct {
	Title         string
	Description   string
	SeverityBadge string // uppercased severity, "" when no badge
}

// Marker is a rendered point feature.
type Marker struct {
	Position LatLng
	Icon     IconDescriptor
	Popup    *Popup
}

// Polygon is a rendered zone ring with resolved style.
type Polygon struct {
	Ring        []LatLng
	StrokeColor string
	FillColor   string
	FillOpacity float64
	Popup       *Popup // nil when the zone has no name or description
}

// HeatPoint is one projected (lat, lng, intensity) triple.
type HeatPoint struct {
	Lat       float64
	Lng       float64
	Intensity float64
}

// HeatLayer is one kernel-density layer build.
type HeatLayer struct {
	Points   []HeatPoint
	Radius   int
	Blur     int
	Gradient map[float64]string
}

// LayerGroup is a named, togglable container of features. The surface
// owns attachment; the widget's name table is a non-owning index. A
// group's contents always equal a pure function of the latest data
// array synchronized into it.
type LayerGroup struct {
	name      string
	clustered bool
	markers   []Marker
	polygons  []Polygon
	heat      *HeatLayer
}

// NewLayerGroup creates an empty named group.
func NewLayerGroup(name string) *LayerGroup {
	return &LayerGroup{name: name}
}

// Name returns the group's registry name.
func (g *LayerGroup) Name() string { return g.name }

// Clustered reports whether the group's markers render through a
// clustering container.
func (g *LayerGroup) Clustered() bool { return g.clustered }

// Markers returns the group's markers in synchronization order.
func (g *LayerGroup) Markers() []Marker { return g.markers }

// Polygons returns the group's polygons in synchronization order.
func (g *LayerGroup) Polygons() []Polygon { return g.polygons }

// Heat returns the group's current kernel-density layer, or nil.
func (g *LayerGroup) Heat() *HeatLayer { return g.heat }

// Clear drops all contents. The group keeps its identity and any
// attachment to the surface.
func (g *LayerGroup) Clear() {
	g.markers = nil
	g.polygons = nil
	g.heat = nil
	g.clustered = false
}
