package mapcore

// Registry layer names. The first three are created with the surface;
// the heatmap group is created lazily on first non-empty heat data
// because it is optional and more memory-costly.
const (
	LayerDamage    = "damage"
	LayerResources = "resources"
	LayerAlerts    = "alerts"
	LayerHeatmap   = "heatmap"
)

// eagerLayerNames are the groups registered at surface creation.
var eagerLayerNames = []string{LayerDamage, LayerResources, LayerAlerts}

// PointLayerNames lists the groups that accept point features.
func PointLayerNames() []string {
	return []string{LayerDamage, LayerResources}
}

// reconcileVisibility makes surface attachment match the visible set:
// each known group is attached iff its name is in the set. The pass is
// order-independent and touches each group at most once, so repeated
// identical sets are no-ops. With no surface the pass does nothing;
// it re-runs against the current set once a surface exists.
func reconcileVisibility(s Surface, groups map[string]*LayerGroup, visible map[string]bool) {
	if s == nil {
		return
	}
	for name, g := range groups {
		want := visible[name]
		has := s.HasLayer(g)
		switch {
		case want && !has:
			s.AddLayer(g)
		case !want && has:
			s.RemoveLayer(g)
		}
	}
}
