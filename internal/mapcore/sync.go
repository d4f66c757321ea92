package mapcore

import "fmt"

// Synchronizers replace a group's entire contents on every update:
// clear, then rebuild in input order. Feature counts are small and
// bounded by an assessment area, and the only stable key is an
// externally supplied id that may repeat across updates, so diffing
// buys nothing here.

// Polygon fills are capped at 0.4 of full opacity so base imagery
// stays visible even at maximum overlay strength.
const fillOpacityCeiling = 0.4

// Default zone stroke when the feature specifies none.
const defaultZoneColor = "#ef4444"

// Heat layer build parameters.
const (
	heatRadius = 25
	heatBlur   = 15
)

// heatGradient returns the fixed kernel-density color stops.
func heatGradient() map[float64]string {
	return map[float64]string{
		0.4: "#3b82f6",
		0.6: "#22d3ee",
		0.8: "#facc15",
		1.0: "#ef4444",
	}
}

// syncPoints rebuilds g from pts. Markers go through a clustering
// container so they stay readable at low zoom.
func syncPoints(g *LayerGroup, pts []PointFeature) {
	g.Clear()
	g.clustered = true
	for _, p := range pts {
		title := p.Title
		if title == "" {
			title = fmt.Sprintf("Point #%s", p.ID)
		}
		desc := p.Description
		if desc == "" {
			desc = "No description available"
		}
		g.markers = append(g.markers, Marker{
			Position: p.Position,
			Icon:     MarkerIcon(p.Category, p.Severity),
			Popup: &Popup{
				Title:         title,
				Description:   desc,
				SeverityBadge: BadgeText(p.Severity),
			},
		})
	}
}

// syncPolygons rebuilds g from polys. overlayOpacity is the shared
// 0-100 scalar; every fill gets (overlayOpacity/100) * 0.4.
func syncPolygons(g *LayerGroup, polys []PolygonFeature, overlayOpacity float64) {
	g.Clear()
	opacity := FillOpacity(overlayOpacity)
	for _, z := range polys {
		stroke := z.StrokeColor
		if stroke == "" {
			stroke = defaultZoneColor
		}
		fill := z.FillColor
		if fill == "" {
			fill = stroke
		}
		var popup *Popup
		if z.Name != "" || z.Description != "" {
			popup = &Popup{Title: z.Name, Description: z.Description}
		}
		g.polygons = append(g.polygons, Polygon{
			Ring:        z.Ring,
			StrokeColor: stroke,
			FillColor:   fill,
			FillOpacity: opacity,
			Popup:       popup,
		})
	}
}

// FillOpacity derives the polygon fill opacity from the 0-100 overlay
// scalar, lands in [0, 0.4].
func FillOpacity(overlayOpacity float64) float64 {
	if overlayOpacity < 0 {
		overlayOpacity = 0
	}
	if overlayOpacity > 100 {
		overlayOpacity = 100
	}
	return overlayOpacity / 100 * fillOpacityCeiling
}

// syncHeat rebuilds g's kernel-density layer from samples. An empty
// update clears the previous layer but keeps the group itself; the
// lazily created heatmap group is never torn down once it exists.
func syncHeat(g *LayerGroup, samples []HeatmapSample) {
	g.Clear()
	if len(samples) == 0 {
		return
	}
	pts := make([]HeatPoint, 0, len(samples))
	for _, s := range samples {
		intensity := s.Intensity
		if intensity == 0 {
			intensity = 1
		}
		pts = append(pts, HeatPoint{Lat: s.Position.Lat, Lng: s.Position.Lng, Intensity: intensity})
	}
	g.heat = &HeatLayer{
		Points:   pts,
		Radius:   heatRadius,
		Blur:     heatBlur,
		Gradient: heatGradient(),
	}
}
