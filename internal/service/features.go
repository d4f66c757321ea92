package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/relieflab/assessdash/internal/mapcore"
)

// FeatureService stores per-assessment map features in DuckDB.
type FeatureService struct {
	db *sql.DB
}

// NewFeatureService creates a feature service on the given connection.
func NewFeatureService(db *sql.DB) *FeatureService {
	return &FeatureService{db: db}
}

// FeatureSet loads everything drawn for one assessment.
func (s *FeatureService) FeatureSet(assessmentID string) (FeatureSet, error) {
	var fs FeatureSet
	var err error

	if fs.Damage, err = s.points(assessmentID, mapcore.LayerDamage); err != nil {
		return FeatureSet{}, err
	}
	if fs.Resources, err = s.points(assessmentID, mapcore.LayerResources); err != nil {
		return FeatureSet{}, err
	}
	if fs.Zones, err = s.zones(assessmentID); err != nil {
		return FeatureSet{}, err
	}
	if fs.Heat, err = s.heat(assessmentID); err != nil {
		return FeatureSet{}, err
	}
	return fs, nil
}

// ReplaceAll swaps an assessment's entire feature set in one
// transaction, mirroring the widget's clear-then-rebuild policy.
func (s *FeatureService) ReplaceAll(assessmentID string, fs FeatureSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"feature_points", "feature_zones", "heat_samples"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE assessment_id = ?", assessmentID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertPoints(tx, assessmentID, mapcore.LayerDamage, fs.Damage); err != nil {
		return err
	}
	if err := insertPoints(tx, assessmentID, mapcore.LayerResources, fs.Resources); err != nil {
		return err
	}
	for i, z := range fs.Zones {
		ring, err := json.Marshal(z.Ring)
		if err != nil {
			return fmt.Errorf("failed to encode zone ring: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO feature_zones
			(assessment_id, seq, ring, stroke, fill, name, description, level)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			assessmentID, i, string(ring), z.StrokeColor, z.FillColor, z.Name, z.Description, string(z.Level))
		if err != nil {
			return fmt.Errorf("failed to insert zone: %w", err)
		}
	}
	for _, h := range fs.Heat {
		if _, err := tx.Exec(`INSERT INTO heat_samples (assessment_id, lat, lng, intensity)
			VALUES (?, ?, ?, ?)`,
			assessmentID, h.Position.Lat, h.Position.Lng, h.Intensity); err != nil {
			return fmt.Errorf("failed to insert heat sample: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteAll removes every feature of an assessment.
func (s *FeatureService) DeleteAll(assessmentID string) error {
	for _, table := range []string{"feature_points", "feature_zones", "heat_samples"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE assessment_id = ?", assessmentID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// ImportGeoJSON parses a GeoJSON feature collection and replaces the
// assessment's features with its contents.
func (s *FeatureService) ImportGeoJSON(assessmentID string, data []byte) (ImportSummary, error) {
	fs, err := ParseGeoJSON(data)
	if err != nil {
		return ImportSummary{}, err
	}
	if err := s.ReplaceAll(assessmentID, fs); err != nil {
		return ImportSummary{}, err
	}
	DefaultBus.Publish(Event{Resource: "features", Action: "imported", ID: assessmentID})
	return ImportSummary{
		Points:  len(fs.Damage) + len(fs.Resources),
		Zones:   len(fs.Zones),
		Samples: len(fs.Heat),
	}, nil
}

func insertPoints(tx *sql.Tx, assessmentID, layer string, pts []mapcore.PointFeature) error {
	for _, p := range pts {
		_, err := tx.Exec(`INSERT INTO feature_points
			(assessment_id, layer, point_id, lat, lng, category, severity, title, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			assessmentID, layer, p.ID, p.Position.Lat, p.Position.Lng,
			p.Category, string(p.Severity), p.Title, p.Description)
		if err != nil {
			return fmt.Errorf("failed to insert point %q: %w", p.ID, err)
		}
	}
	return nil
}

func (s *FeatureService) points(assessmentID, layer string) ([]mapcore.PointFeature, error) {
	rows, err := s.db.Query(`SELECT point_id, lat, lng, category, severity, title, description
		FROM feature_points WHERE assessment_id = ? AND layer = ?`, assessmentID, layer)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	var pts []mapcore.PointFeature
	for rows.Next() {
		var p mapcore.PointFeature
		var category, severity, title, description sql.NullString
		if err := rows.Scan(&p.ID, &p.Position.Lat, &p.Position.Lng,
			&category, &severity, &title, &description); err != nil {
			return nil, err
		}
		p.Category = category.String
		p.Severity = mapcore.Severity(severity.String)
		p.Title = title.String
		p.Description = description.String
		pts = append(pts, p)
	}
	return pts, rows.Err()
}

func (s *FeatureService) zones(assessmentID string) ([]mapcore.PolygonFeature, error) {
	rows, err := s.db.Query(`SELECT ring, stroke, fill, name, description, level
		FROM feature_zones WHERE assessment_id = ? ORDER BY seq`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	var zs []mapcore.PolygonFeature
	for rows.Next() {
		var z mapcore.PolygonFeature
		var ring string
		var stroke, fill, name, description, level sql.NullString
		if err := rows.Scan(&ring, &stroke, &fill, &name, &description, &level); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ring), &z.Ring); err != nil {
			return nil, fmt.Errorf("failed to decode zone ring: %w", err)
		}
		z.StrokeColor = stroke.String
		z.FillColor = fill.String
		z.Name = name.String
		z.Description = description.String
		z.Level = mapcore.AlertLevel(level.String)
		zs = append(zs, z)
	}
	return zs, rows.Err()
}

func (s *FeatureService) heat(assessmentID string) ([]mapcore.HeatmapSample, error) {
	rows, err := s.db.Query(`SELECT lat, lng, intensity
		FROM heat_samples WHERE assessment_id = ?`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query heat samples: %w", err)
	}
	defer rows.Close()

	var hs []mapcore.HeatmapSample
	for rows.Next() {
		var h mapcore.HeatmapSample
		if err := rows.Scan(&h.Position.Lat, &h.Position.Lng, &h.Intensity); err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}

// ParseGeoJSON maps a GeoJSON feature collection onto the dashboard's
// data model. The "kind" property routes a feature: "resource" points
// become resource markers, "heat" points become density samples, and
// everything else lands on the damage layer. Polygons and the outer
// rings of multipolygons become evacuation zones.
func ParseGeoJSON(data []byte) (FeatureSet, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return FeatureSet{}, fmt.Errorf("failed to parse geojson: %w", err)
	}

	var fs FeatureSet
	seq := 0
	for _, f := range fc.Features {
		props := f.Properties
		switch geom := f.Geometry.(type) {
		case orb.Point:
			seq++
			pos := mapcore.LatLng{Lat: geom.Lat(), Lng: geom.Lon()}
			switch props.MustString("kind", "") {
			case "heat":
				fs.Heat = append(fs.Heat, mapcore.HeatmapSample{
					Position:  pos,
					Intensity: props.MustFloat64("intensity", 1),
				})
			case "resource":
				fs.Resources = append(fs.Resources, pointFeature(seq, pos, props))
			default:
				fs.Damage = append(fs.Damage, pointFeature(seq, pos, props))
			}
		case orb.Polygon:
			if len(geom) > 0 {
				fs.Zones = append(fs.Zones, zoneFeature(geom[0], props))
			}
		case orb.MultiPolygon:
			for _, poly := range geom {
				if len(poly) > 0 {
					fs.Zones = append(fs.Zones, zoneFeature(poly[0], props))
				}
			}
		}
	}
	return fs, nil
}

func pointFeature(seq int, pos mapcore.LatLng, props geojson.Properties) mapcore.PointFeature {
	id := props.MustString("id", "")
	if id == "" {
		id = strconv.Itoa(seq)
	}
	title := props.MustString("title", "")
	if title == "" {
		title = props.MustString("name", "")
	}
	return mapcore.PointFeature{
		ID:          id,
		Position:    pos,
		Category:    props.MustString("category", ""),
		Severity:    mapcore.Severity(props.MustString("severity", "")),
		Title:       title,
		Description: props.MustString("description", ""),
	}
}

func zoneFeature(ring orb.Ring, props geojson.Properties) mapcore.PolygonFeature {
	pts := make([]mapcore.LatLng, 0, len(ring))
	for i, pt := range ring {
		// GeoJSON rings duplicate the first point at the end; the data
		// model leaves the ring open.
		if i == len(ring)-1 && len(ring) > 1 && pt == ring[0] {
			break
		}
		pts = append(pts, mapcore.LatLng{Lat: pt.Lat(), Lng: pt.Lon()})
	}
	return mapcore.PolygonFeature{
		Ring:        pts,
		StrokeColor: props.MustString("stroke", ""),
		FillColor:   props.MustString("fill", ""),
		Name:        props.MustString("name", ""),
		Description: props.MustString("description", ""),
		Level:       mapcore.AlertLevel(props.MustString("level", "")),
	}
}
