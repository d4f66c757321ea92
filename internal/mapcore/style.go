package mapcore

import (
	"fmt"
	"strings"
)

// Marker icon geometry: 24x24 visual size anchored at its center.
const (
	iconSize   = 24
	iconAnchor = iconSize / 2
)

// severityColors is the fixed marker palette. Unrecognized severities
// fall back to medium's color.
var severityColors = map[Severity]string{
	SeverityCritical: "#ef4444",
	SeverityHigh:     "#f59e0b",
	SeverityMedium:   "#eab308",
	SeverityLow:      "#3b82f6",
	SeverityNone:     "#10b981",
}

// ColorForSeverity maps a severity to its marker color.
func ColorForSeverity(s Severity) string {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return severityColors[SeverityMedium]
}

// IconDescriptor describes a marker's visual: color from the severity
// palette and a class key for CSS authored outside this package.
type IconDescriptor struct {
	Color    string `json:"color"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	AnchorX  int    `json:"anchorX"`
	AnchorY  int    `json:"anchorY"`
	ClassKey string `json:"classKey"`
}

// MarkerIcon resolves a category + severity pair to an icon descriptor.
func MarkerIcon(category string, s Severity) IconDescriptor {
	return IconDescriptor{
		Color:    ColorForSeverity(s),
		Width:    iconSize,
		Height:   iconSize,
		AnchorX:  iconAnchor,
		AnchorY:  iconAnchor,
		ClassKey: fmt.Sprintf("marker-%s-%s", category, s),
	}
}

// BadgeColors is a background/text color pair for a popup badge.
type BadgeColors struct {
	Background string `json:"background"`
	Text       string `json:"text"`
}

// SeverityBadges are the presentation constants for severity badges.
var SeverityBadges = map[Severity]BadgeColors{
	SeverityCritical: {Background: "#fee2e2", Text: "#991b1b"},
	SeverityHigh:     {Background: "#ffedd5", Text: "#9a3412"},
	SeverityMedium:   {Background: "#fef9c3", Text: "#854d0e"},
	SeverityLow:      {Background: "#dbeafe", Text: "#1e40af"},
	SeverityNone:     {Background: "#d1fae5", Text: "#065f46"},
}

// LevelBadges are the presentation constants for evacuation levels.
// There is deliberately no fallback for unrecognized levels: a polygon
// with an unknown level gets no badge and no default color.
var LevelBadges = map[AlertLevel]BadgeColors{
	LevelMandatory: {Background: "#fee2e2", Text: "#991b1b"},
	LevelVoluntary: {Background: "#ffedd5", Text: "#9a3412"},
	LevelWarning:   {Background: "#fef9c3", Text: "#854d0e"},
	LevelAlert:     {Background: "#fecaca", Text: "#7f1d1d"},
}

// BadgeText renders the uppercased severity badge label, or "" when
// the severity is absent.
func BadgeText(s Severity) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s))
}
