package mapcore

import "testing"

func TestSeverityPalette(t *testing.T) {
	cases := []struct {
		sev  Severity
		want string
	}{
		{SeverityCritical, "#ef4444"},
		{SeverityHigh, "#f59e0b"},
		{SeverityMedium, "#eab308"},
		{SeverityLow, "#3b82f6"},
		{SeverityNone, "#10b981"},
		{"catastrophic", "#eab308"}, // unrecognized -> medium
		{"", "#eab308"},
	}
	for _, tc := range cases {
		if got := ColorForSeverity(tc.sev); got != tc.want {
			t.Errorf("ColorForSeverity(%q) = %s, want %s", tc.sev, got, tc.want)
		}
	}
}

func TestMarkerIconGeometry(t *testing.T) {
	icon := MarkerIcon("building", SeverityHigh)
	if icon.Width != 24 || icon.Height != 24 {
		t.Errorf("size = %dx%d, want 24x24", icon.Width, icon.Height)
	}
	if icon.AnchorX != 12 || icon.AnchorY != 12 {
		t.Errorf("anchor = (%d,%d), want center (12,12)", icon.AnchorX, icon.AnchorY)
	}
	if icon.ClassKey != "marker-building-high" {
		t.Errorf("class key = %q", icon.ClassKey)
	}
	if icon.Color != "#f59e0b" {
		t.Errorf("color = %s, want #f59e0b", icon.Color)
	}
}

func TestBadgeConstants(t *testing.T) {
	if len(SeverityBadges) != 5 {
		t.Errorf("severity badge pairs = %d, want 5", len(SeverityBadges))
	}
	if len(LevelBadges) != 4 {
		t.Errorf("level badge pairs = %d, want 4", len(LevelBadges))
	}
	// Levels have no fallback: an unknown level simply has no badge.
	if _, ok := LevelBadges[AlertLevel("unknown")]; ok {
		t.Error("unexpected badge for unrecognized level")
	}
}

func TestBadgeText(t *testing.T) {
	if got := BadgeText(SeverityCritical); got != "CRITICAL" {
		t.Errorf("BadgeText = %q, want CRITICAL", got)
	}
	if got := BadgeText(""); got != "" {
		t.Errorf("BadgeText(\"\") = %q, want empty", got)
	}
}
