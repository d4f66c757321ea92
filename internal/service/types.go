// Package service contains business logic for the assessment dashboard.
package service

import "github.com/relieflab/assessdash/internal/mapcore"

// Assessment represents one disaster-assessment workspace.
// Single source of truth: Huma reads the tags for OpenAPI + validation.
type Assessment struct {
	ID           string      `json:"id,omitempty" doc:"Unique assessment identifier" example:"palisades_fire"`
	Name         string      `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"Palisades Fire"`
	Description  string      `json:"description,omitempty" doc:"Free-form notes"`
	DisasterType string      `json:"disasterType,omitempty" enum:"flood,fire,earthquake,hurricane,landslide,unknown" default:"unknown" doc:"Disaster classification"`
	Map          MapSettings `json:"map" doc:"Default map view for this assessment"`
}

// MapSettings is the persisted map view of an assessment, converted
// to a mapcore.MapConfig when the assessment is activated.
type MapSettings struct {
	Center         mapcore.LatLng `json:"center" doc:"Map center"`
	Zoom           int            `json:"zoom" minimum:"0" maximum:"22" default:"12" doc:"Zoom level"`
	BaseStyle      string         `json:"baseStyle" enum:"satellite,terrain,street" default:"satellite" doc:"Base tile imagery"`
	ShowLabels     bool           `json:"showLabels" doc:"Show the place-name overlay on satellite imagery"`
	VisibleLayers  []string       `json:"visibleLayers,omitempty" doc:"Layer names visible by default"`
	OverlayOpacity float64        `json:"overlayOpacity,omitempty" minimum:"0" maximum:"100" default:"70" doc:"Zone fill strength (0-100)"`
}

// MapConfig converts the persisted settings to the core's config.
func (m MapSettings) MapConfig() mapcore.MapConfig {
	visible := make(map[string]bool, len(m.VisibleLayers))
	for _, name := range m.VisibleLayers {
		visible[name] = true
	}
	return mapcore.MapConfig{
		Center:        m.Center,
		Zoom:          m.Zoom,
		BaseStyle:     mapcore.BaseStyle(m.BaseStyle),
		ShowLabels:    m.ShowLabels,
		VisibleLayers: visible,
	}
}

// FeatureSet is everything drawn for one assessment.
type FeatureSet struct {
	Damage    []mapcore.PointFeature   `json:"damage" doc:"Damage point markers"`
	Resources []mapcore.PointFeature   `json:"resources" doc:"Deployed resource markers"`
	Zones     []mapcore.PolygonFeature `json:"zones" doc:"Evacuation zone polygons"`
	Heat      []mapcore.HeatmapSample  `json:"heat" doc:"Kernel-density samples"`
}

// ImportSummary reports what a GeoJSON import produced.
type ImportSummary struct {
	Points  int `json:"points" doc:"Point features imported"`
	Zones   int `json:"zones" doc:"Zone polygons imported"`
	Samples int `json:"samples" doc:"Heat samples imported"`
}

// MetricCard is one dashboard stat card.
type MetricCard struct {
	ID    string `json:"id" doc:"Card identifier" example:"damage_total"`
	Label string `json:"label" doc:"Display label" example:"Damage Points"`
	Value int    `json:"value" doc:"Card value"`
	Tone  string `json:"tone,omitempty" doc:"Accent tone for the card" example:"critical"`
}
