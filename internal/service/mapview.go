package service

import (
	"fmt"
	"image"
	"sync"

	"github.com/relieflab/assessdash/internal/mapcore"
)

// FeatureSource is the slice of FeatureService the map view needs;
// tests substitute an in-memory implementation. Callers holding a
// concrete *FeatureService that may be nil must pass a nil interface,
// not the nil pointer.
type FeatureSource interface {
	FeatureSet(assessmentID string) (FeatureSet, error)
}

// Snapshotter is implemented by engines that can render the live
// surface to an image.
type Snapshotter interface {
	Snapshot() (image.Image, error)
	SaveSnapshot(dir string) (string, error)
}

// MapService hosts the dashboard's single map widget. The widget's
// state machine is single-threaded by design; the mutex here is what
// provides that single cooperative thread under a concurrent server.
type MapService struct {
	mu       sync.Mutex
	widget   *mapcore.Widget
	engine   mapcore.Engine
	features FeatureSource

	active  string
	opacity float64
}

// NewMapService creates a map service around the given engine.
func NewMapService(engine mapcore.Engine, features FeatureSource) *MapService {
	return &MapService{
		widget:   mapcore.NewWidget(engine),
		engine:   engine,
		features: features,
	}
}

// Activate mounts the map for an assessment: applies its persisted
// view and synchronizes its stored features onto the layers.
func (s *MapService) Activate(a Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = a.ID
	s.opacity = a.Map.OverlayOpacity
	if err := s.widget.Mount(a.Map.MapConfig()); err != nil {
		return fmt.Errorf("failed to mount map for %q: %w", a.ID, err)
	}
	if err := s.loadFeatures(); err != nil {
		return err
	}
	DefaultBus.Publish(Event{Resource: "map", Action: "activated", ID: a.ID})
	return nil
}

// ApplyConfig applies a new declared map configuration. Identity
// changes recreate the surface; visibility changes only reconcile.
func (s *MapService) ApplyConfig(cfg mapcore.MapConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.widget.ApplyConfig(cfg); err != nil {
		return err
	}
	DefaultBus.Publish(Event{Resource: "map", Action: "updated", ID: s.active})
	return nil
}

// SetVisibleLayers reconciles layer attachment against the given set
// without touching the rest of the configuration.
func (s *MapService) SetVisibleLayers(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.widget.Config()
	cfg.VisibleLayers = make(map[string]bool, len(names))
	for _, n := range names {
		cfg.VisibleLayers[n] = true
	}
	if err := s.widget.ApplyConfig(cfg); err != nil {
		return err
	}
	DefaultBus.Publish(Event{Resource: "map", Action: "updated", ID: s.active})
	return nil
}

// SetOverlayOpacity changes the shared zone fill scalar and resyncs
// the alert layer.
func (s *MapService) SetOverlayOpacity(opacity float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opacity = opacity
	return s.loadFeatures()
}

// Refresh re-pulls the active assessment's features from the store,
// e.g. after an import.
func (s *MapService) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFeatures()
}

// Config returns the widget's current declared configuration.
func (s *MapService) Config() mapcore.MapConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widget.Config()
}

// ActiveAssessment returns the ID of the activated assessment.
func (s *MapService) ActiveAssessment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// VisibleLayers returns the current visible-layer set.
func (s *MapService) VisibleLayers() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := make(map[string]bool)
	for name, on := range s.widget.Config().VisibleLayers {
		if on {
			visible[name] = true
		}
	}
	return visible
}

// Snapshot renders the live surface through the engine.
func (s *MapService) Snapshot() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.engine.(Snapshotter)
	if !ok {
		return nil, fmt.Errorf("map engine does not support snapshots")
	}
	return snap.Snapshot()
}

// SaveSnapshot renders and persists a snapshot, returning its name.
func (s *MapService) SaveSnapshot(dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.engine.(Snapshotter)
	if !ok {
		return "", fmt.Errorf("map engine does not support snapshots")
	}
	return snap.SaveSnapshot(dir)
}

// Shutdown unmounts the widget, releasing the engine surface.
func (s *MapService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widget.Unmount()
}

// loadFeatures synchronizes the widget's layers from the feature
// store. No store or no active assessment are legitimate no-ops.
func (s *MapService) loadFeatures() error {
	if s.features == nil || s.active == "" {
		return nil
	}
	fs, err := s.features.FeatureSet(s.active)
	if err != nil {
		return fmt.Errorf("failed to load features for %q: %w", s.active, err)
	}
	s.widget.SetPoints(mapcore.LayerDamage, fs.Damage)
	s.widget.SetPoints(mapcore.LayerResources, fs.Resources)
	s.widget.SetPolygons(fs.Zones, s.opacity)
	s.widget.SetHeatmap(fs.Heat)
	return nil
}
