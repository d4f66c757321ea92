// Package render implements mapcore.Engine on top of go-staticmaps,
// turning the widget's attached layer groups into PNG snapshots.
package render

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	sm "github.com/flopp/go-staticmaps"
	"github.com/fogleman/gg"
	"github.com/golang/geo/s2"
	"github.com/google/uuid"
	"github.com/mazznoer/csscolorparser"

	"github.com/relieflab/assessdash/internal/mapcore"
)

const markerSize = 16.0

// Heat samples render as translucent circles; this is the ground
// radius in meters for an intensity-1 sample.
const heatBaseRadiusMeters = 250.0

// Engine creates static-map surfaces and renders the current one.
type Engine struct {
	width   int
	height  int
	current *surface
}

// NewEngine creates an engine producing width x height snapshots.
func NewEngine(width, height int) *Engine {
	return &Engine{width: width, height: height}
}

// NewSurface implements mapcore.Engine.
func (e *Engine) NewSurface(cfg mapcore.MapConfig) (mapcore.Surface, error) {
	s := &surface{engine: e, cfg: cfg, attached: make(map[*mapcore.LayerGroup]bool)}
	e.current = s
	return s, nil
}

// Snapshot renders the live surface's attached layers over its base
// imagery. Fails when no surface exists; callers treat that as the
// widget not being mounted yet.
func (e *Engine) Snapshot() (image.Image, error) {
	s := e.current
	if s == nil || s.destroyed {
		return nil, fmt.Errorf("no live map surface to render")
	}

	ctx := sm.NewContext()
	ctx.SetSize(e.width, e.height)
	ctx.SetCenter(s2.LatLngFromDegrees(s.cfg.Center.Lat, s.cfg.Center.Lng))
	ctx.SetZoom(s.cfg.Zoom)
	ctx.SetTileProvider(providerFor(s.cfg.BaseStyle))

	// Polygons under heat under markers, groups in attach order.
	for _, g := range s.attachedInOrder() {
		for _, p := range g.Polygons() {
			addArea(ctx, p)
		}
	}
	for _, g := range s.attachedInOrder() {
		if h := g.Heat(); h != nil {
			addHeat(ctx, h)
		}
	}
	for _, g := range s.attachedInOrder() {
		for _, m := range g.Markers() {
			pos := s2.LatLngFromDegrees(m.Position.Lat, m.Position.Lng)
			ctx.AddObject(sm.NewMarker(pos, parseColor(m.Icon.Color, 1), markerSize))
		}
	}

	img, err := ctx.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render map: %w", err)
	}
	if s.labelOverlay {
		return e.renderLabels(s.cfg, img)
	}
	return img, nil
}

// renderLabels draws the place-name reference tiles over the base
// image with a second transparent-background render pass.
func (e *Engine) renderLabels(cfg mapcore.MapConfig, base image.Image) (image.Image, error) {
	ctx := sm.NewContext()
	ctx.SetSize(e.width, e.height)
	ctx.SetCenter(s2.LatLngFromDegrees(cfg.Center.Lat, cfg.Center.Lng))
	ctx.SetZoom(cfg.Zoom)
	ctx.SetTileProvider(labelProvider())
	ctx.SetBackground(color.Transparent)

	labels, err := ctx.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render label tiles: %w", err)
	}
	return composite(base, labels), nil
}

// composite draws over onto base at the origin; both renders share
// center, zoom, and size, so the tiles line up.
func composite(base, over image.Image) image.Image {
	dc := gg.NewContextForImage(base)
	dc.DrawImage(over, 0, 0)
	return dc.Image()
}

// SaveSnapshot renders the live surface and writes it under dir with
// a unique file name, returning the name.
func (e *Engine) SaveSnapshot(dir string) (string, error) {
	img, err := e.Snapshot()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	fileName := fmt.Sprintf("map-snapshot-%s.png", uuid.New().String())
	if err := gg.SavePNG(filepath.Join(dir, fileName), img); err != nil {
		return "", fmt.Errorf("failed to save snapshot PNG: %w", err)
	}
	return fileName, nil
}

func addArea(ctx *sm.Context, p mapcore.Polygon) {
	if len(p.Ring) < 3 {
		return
	}
	positions := make([]s2.LatLng, 0, len(p.Ring)+1)
	for _, pt := range p.Ring {
		positions = append(positions, s2.LatLngFromDegrees(pt.Lat, pt.Lng))
	}
	// The ring arrives unclosed.
	positions = append(positions, positions[0])
	ctx.AddObject(sm.NewArea(positions,
		parseColor(p.StrokeColor, 1),
		parseColor(p.FillColor, p.FillOpacity),
		2.0))
}

func addHeat(ctx *sm.Context, h *mapcore.HeatLayer) {
	for _, pt := range h.Points {
		pos := s2.LatLngFromDegrees(pt.Lat, pt.Lng)
		col := gradientColor(h.Gradient, pt.Intensity)
		ctx.AddObject(sm.NewCircle(pos,
			parseColor(col, 0),
			parseColor(col, 0.35),
			heatRadiusMeters(pt.Intensity), 0))
	}
}

// heatRadiusMeters scales the base radius by sample intensity.
func heatRadiusMeters(intensity float64) float64 {
	if intensity <= 0 {
		intensity = 1
	}
	return heatBaseRadiusMeters * intensity
}

// gradientColor picks the color of the smallest gradient stop at or
// above the clamped intensity, falling back to the top stop.
func gradientColor(gradient map[float64]string, intensity float64) string {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	stops := make([]float64, 0, len(gradient))
	for stop := range gradient {
		stops = append(stops, stop)
	}
	sort.Float64s(stops)
	for _, stop := range stops {
		if intensity <= stop {
			return gradient[stop]
		}
	}
	if len(stops) > 0 {
		return gradient[stops[len(stops)-1]]
	}
	return "#ef4444"
}

// parseColor parses a CSS color and applies the given opacity. Bad
// input falls back to opaque gray rather than failing a render.
func parseColor(css string, opacity float64) color.Color {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c, err := csscolorparser.Parse(css)
	if err != nil {
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: uint8(opacity * 255)}
	}
	r, g, b, _ := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity * 255)}
}

// labelProvider is the place-name reference tile set composited over
// satellite imagery when the label overlay is requested.
func labelProvider() *sm.TileProvider {
	return &sm.TileProvider{
		Name:        "arcgis-world-reference",
		Attribution: "",
		TileSize:    256,
		URLPattern:  "https://server.arcgisonline.com/ArcGIS/rest/services/Reference/World_Boundaries_and_Places/MapServer/tile/%[2]d/%[4]d/%[3]d",
	}
}

// providerFor maps a base style to its tile source.
func providerFor(style mapcore.BaseStyle) *sm.TileProvider {
	switch style {
	case mapcore.BaseSatellite:
		return &sm.TileProvider{
			Name:        "arcgis-world-imagery",
			Attribution: "Source: Esri, Maxar, Earthstar Geographics",
			TileSize:    256,
			URLPattern:  "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/%[2]d/%[4]d/%[3]d",
		}
	case mapcore.BaseTerrain:
		return &sm.TileProvider{
			Name:        "opentopomap",
			Attribution: "Maps (c) OpenTopoMap, Data (c) OSM and contributors",
			TileSize:    256,
			URLPattern:  "https://tile.opentopomap.org/%[2]d/%[3]d/%[4]d.png",
		}
	default:
		return &sm.TileProvider{
			Name:        "osm",
			Attribution: "Maps and Data (c) OpenStreetMap and contributors",
			TileSize:    256,
			URLPattern:  "https://tile.openstreetmap.org/%[2]d/%[3]d/%[4]d.png",
		}
	}
}

// surface implements mapcore.Surface by recording attachment; actual
// drawing happens at snapshot time from the live group contents.
type surface struct {
	engine       *Engine
	cfg          mapcore.MapConfig
	attached     map[*mapcore.LayerGroup]bool
	order        []*mapcore.LayerGroup
	labelOverlay bool
	destroyed    bool
}

func (s *surface) AddLayer(g *mapcore.LayerGroup) {
	if s.destroyed || s.attached[g] {
		return
	}
	s.attached[g] = true
	s.order = append(s.order, g)
}

func (s *surface) RemoveLayer(g *mapcore.LayerGroup) {
	if s.destroyed || !s.attached[g] {
		return
	}
	delete(s.attached, g)
	for i, other := range s.order {
		if other == g {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *surface) HasLayer(g *mapcore.LayerGroup) bool {
	return !s.destroyed && s.attached[g]
}

// AddControl is a no-op: static snapshots have no interactive chrome,
// attribution comes from the tile provider.
func (s *surface) AddControl(mapcore.Control) {}

func (s *surface) AddLabelOverlay() {
	if s.destroyed {
		return
	}
	s.labelOverlay = true
}

func (s *surface) Destroy() {
	s.destroyed = true
	s.attached = make(map[*mapcore.LayerGroup]bool)
	s.order = nil
	if s.engine.current == s {
		s.engine.current = nil
	}
}

func (s *surface) attachedInOrder() []*mapcore.LayerGroup {
	return s.order
}
