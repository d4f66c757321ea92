package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relieflab/assessdash/internal/mapcore"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [20.0, 10.0]},
      "properties": {"id": "d1", "category": "building", "severity": "critical", "title": "Collapsed block"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [21.0, 11.0]},
      "properties": {"kind": "resource", "category": "shelter", "name": "Shelter North"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [22.0, 12.0]},
      "properties": {"kind": "heat", "intensity": 0.7}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [23.0, 13.0]},
      "properties": {"kind": "heat"}
    },
    {
      "type": "Feature",
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[0.0, 0.0], [1.0, 0.0], [1.0, 1.0], [0.0, 0.0]]]
      },
      "properties": {"name": "Zone A", "level": "mandatory", "stroke": "#dc2626"}
    },
    {
      "type": "Feature",
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[2.0, 2.0], [3.0, 2.0], [3.0, 3.0], [2.0, 2.0]]],
          [[[4.0, 4.0], [5.0, 4.0], [5.0, 5.0], [4.0, 4.0]]]
        ]
      },
      "properties": {"level": "voluntary"}
    }
  ]
}`

func TestParseGeoJSON(t *testing.T) {
	fs, err := ParseGeoJSON([]byte(sampleGeoJSON))
	require.NoError(t, err)

	require.Len(t, fs.Damage, 1)
	d := fs.Damage[0]
	assert.Equal(t, "d1", d.ID)
	// GeoJSON coordinates are [lng, lat].
	assert.Equal(t, mapcore.LatLng{Lat: 10, Lng: 20}, d.Position)
	assert.Equal(t, mapcore.SeverityCritical, d.Severity)
	assert.Equal(t, "Collapsed block", d.Title)

	require.Len(t, fs.Resources, 1)
	r := fs.Resources[0]
	assert.Equal(t, mapcore.LatLng{Lat: 11, Lng: 21}, r.Position)
	assert.Equal(t, "Shelter North", r.Title, "name property should back-fill the title")
	assert.NotEmpty(t, r.ID, "missing id property gets a synthesized one")

	require.Len(t, fs.Heat, 2)
	assert.Equal(t, 0.7, fs.Heat[0].Intensity)
	assert.Equal(t, 1.0, fs.Heat[1].Intensity, "intensity defaults to 1")

	require.Len(t, fs.Zones, 3)
	zone := fs.Zones[0]
	assert.Equal(t, "Zone A", zone.Name)
	assert.Equal(t, mapcore.LevelMandatory, zone.Level)
	assert.Equal(t, "#dc2626", zone.StrokeColor)
	// The closing point is dropped; the data model keeps rings open.
	assert.Len(t, zone.Ring, 3)
	assert.Equal(t, mapcore.LatLng{Lat: 0, Lng: 0}, zone.Ring[0])

	assert.Equal(t, mapcore.LevelVoluntary, fs.Zones[1].Level)
	assert.Len(t, fs.Zones[2].Ring, 3)
}

func TestParseGeoJSONRejectsGarbage(t *testing.T) {
	_, err := ParseGeoJSON([]byte("{not json"))
	require.Error(t, err)
}

func TestParseGeoJSONEmptyCollection(t *testing.T) {
	fs, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Empty(t, fs.Damage)
	assert.Empty(t, fs.Zones)
	assert.Empty(t, fs.Heat)
}
