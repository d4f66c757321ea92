package service

import (
	"database/sql"
	"fmt"

	"github.com/relieflab/assessdash/internal/mapcore"
)

// MetricService computes dashboard stat cards with SQL aggregates.
type MetricService struct {
	db *sql.DB
}

// NewMetricService creates a metric service on the given connection.
func NewMetricService(db *sql.DB) *MetricService {
	return &MetricService{db: db}
}

// Cards returns the dashboard metric cards for an assessment.
func (s *MetricService) Cards(assessmentID string) ([]MetricCard, error) {
	bySeverity, err := s.CountsBySeverity(assessmentID)
	if err != nil {
		return nil, err
	}
	zones, err := s.count(
		"SELECT COUNT(*) FROM feature_zones WHERE assessment_id = ?", assessmentID)
	if err != nil {
		return nil, err
	}
	resources, err := s.count(
		"SELECT COUNT(*) FROM feature_points WHERE assessment_id = ? AND layer = ?",
		assessmentID, mapcore.LayerResources)
	if err != nil {
		return nil, err
	}
	samples, err := s.count(
		"SELECT COUNT(*) FROM heat_samples WHERE assessment_id = ?", assessmentID)
	if err != nil {
		return nil, err
	}

	return buildCards(bySeverity, zones, resources, samples), nil
}

// buildCards assembles the card list from the aggregates. The damage
// totals all derive from the per-severity breakdown.
func buildCards(bySeverity map[string]int, zones, resources, samples int) []MetricCard {
	damage := 0
	for _, n := range bySeverity {
		damage += n
	}
	return []MetricCard{
		{ID: "damage_total", Label: "Damage Points", Value: damage},
		{ID: "damage_critical", Label: "Critical Damage", Value: bySeverity[string(mapcore.SeverityCritical)], Tone: "critical"},
		{ID: "damage_high", Label: "High Severity", Value: bySeverity[string(mapcore.SeverityHigh)], Tone: "warning"},
		{ID: "zones", Label: "Evacuation Zones", Value: zones, Tone: "warning"},
		{ID: "resources", Label: "Resources Deployed", Value: resources, Tone: "ok"},
		{ID: "heat_samples", Label: "Density Samples", Value: samples},
	}
}

// CountsBySeverity returns damage point counts keyed by severity.
func (s *MetricService) CountsBySeverity(assessmentID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT severity, COUNT(*)
		FROM feature_points
		WHERE assessment_id = ? AND layer = ?
		GROUP BY severity`, assessmentID, mapcore.LayerDamage)
	if err != nil {
		return nil, fmt.Errorf("failed to query severity counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var severity sql.NullString
		var n int
		if err := rows.Scan(&severity, &n); err != nil {
			return nil, err
		}
		counts[severity.String] = n
	}
	return counts, rows.Err()
}

func (s *MetricService) count(query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}
