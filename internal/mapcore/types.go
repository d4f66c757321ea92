// Package mapcore implements the map widget's layer-synchronization
// state machine: surface lifecycle, layer visibility reconciliation,
// and feature synchronizers for points, polygons, and heat samples.
//
// The rendering engine is abstracted behind the Engine and Surface
// interfaces so the whole state machine is testable with the in-memory
// engine in memory.go; internal/render provides the real one.
package mapcore

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat" doc:"Latitude" example:"34.05"`
	Lng float64 `json:"lng" doc:"Longitude" example:"-118.24"`
}

// BaseStyle selects the base tile imagery for a surface.
type BaseStyle string

const (
	BaseSatellite BaseStyle = "satellite"
	BaseTerrain   BaseStyle = "terrain"
	BaseStreet    BaseStyle = "street"
)

// Severity is the damage-urgency level of a point feature.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityNone     Severity = "none"
)

// AlertLevel classifies an evacuation zone polygon.
type AlertLevel string

const (
	LevelMandatory AlertLevel = "mandatory"
	LevelVoluntary AlertLevel = "voluntary"
	LevelWarning   AlertLevel = "warning"
	LevelAlert     AlertLevel = "alert"
)

// MapConfig is the declared state of a surface. Center, Zoom,
// BaseStyle, and ShowLabels are identity-affecting: changing any of
// them tears the surface down and recreates it. VisibleLayers only
// drives attachment reconciliation and never recreates the surface.
type MapConfig struct {
	Center        LatLng          `json:"center" doc:"Map center"`
	Zoom          int             `json:"zoom" minimum:"0" maximum:"22" default:"12" doc:"Zoom level"`
	BaseStyle     BaseStyle       `json:"baseStyle" enum:"satellite,terrain,street" default:"satellite" doc:"Base tile imagery"`
	ShowLabels    bool            `json:"showLabels" doc:"Add the place-name label overlay (satellite only)"`
	VisibleLayers map[string]bool `json:"visibleLayers" doc:"Set of layer names to attach"`
}

// sameIdentity reports whether o would reuse the same surface.
func (c MapConfig) sameIdentity(o MapConfig) bool {
	return c.Center == o.Center &&
		c.Zoom == o.Zoom &&
		c.BaseStyle == o.BaseStyle &&
		c.ShowLabels == o.ShowLabels
}

// PointFeature is a single damage or resource marker. The ID is only
// unique within one render pass; it is never used as a persistent key.
type PointFeature struct {
	ID          string   `json:"id" doc:"Identifier, unique within one update"`
	Position    LatLng   `json:"position" doc:"Marker position"`
	Category    string   `json:"category" doc:"Feature category, styling only" example:"building"`
	Severity    Severity `json:"severity,omitempty" enum:"critical,high,medium,low,none" doc:"Damage severity"`
	Title       string   `json:"title,omitempty" doc:"Popup title"`
	Description string   `json:"description,omitempty" doc:"Popup description"`
}

// PolygonFeature is an evacuation-zone ring. The first and last ring
// points need not be duplicated; engines close the ring themselves.
type PolygonFeature struct {
	Ring        []LatLng   `json:"ring" minItems:"3" doc:"Ordered outer ring"`
	StrokeColor string     `json:"strokeColor,omitempty" doc:"Stroke color (CSS)"`
	FillColor   string     `json:"fillColor,omitempty" doc:"Fill color (CSS), defaults to stroke"`
	Name        string     `json:"name,omitempty" doc:"Popup title"`
	Description string     `json:"description,omitempty" doc:"Popup description"`
	Level       AlertLevel `json:"level,omitempty" enum:"mandatory,voluntary,warning,alert" doc:"Evacuation level"`
}

// HeatmapSample is one stateless input to the kernel-density layer.
// Intensity defaults to 1 when zero.
type HeatmapSample struct {
	Position  LatLng  `json:"position" doc:"Sample position"`
	Intensity float64 `json:"intensity,omitempty" doc:"Sample weight, defaults to 1"`
}
