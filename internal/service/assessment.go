package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AssessmentService manages assessment workspaces.
type AssessmentService struct {
	dataDir     string
	assessments map[string]Assessment
	mu          sync.RWMutex
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(dataDir string) *AssessmentService {
	s := &AssessmentService{
		dataDir:     dataDir,
		assessments: make(map[string]Assessment),
	}
	s.loadFromDisk()
	return s
}

// List returns all assessments.
func (s *AssessmentService) List() map[string]Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]Assessment, len(s.assessments))
	for k, v := range s.assessments {
		result[k] = v
	}
	return result
}

// Get returns an assessment by ID.
func (s *AssessmentService) Get(id string) (Assessment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assessments[id]
	return a, ok
}

// Create adds a new assessment.
func (s *AssessmentService) Create(a Assessment) (Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = generateID(a.Name)
	}
	if _, exists := s.assessments[a.ID]; exists {
		return Assessment{}, fmt.Errorf("assessment with ID %q already exists", a.ID)
	}
	if a.DisasterType == "" {
		a.DisasterType = "unknown"
	}

	s.assessments[a.ID] = a
	if err := s.saveToDisk(); err != nil {
		return Assessment{}, err
	}

	DefaultBus.Publish(Event{Resource: "assessments", Action: "created", ID: a.ID})
	return a, nil
}

// Update replaces an assessment by ID.
func (s *AssessmentService) Update(id string, a Assessment) (Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assessments[id]; !exists {
		return Assessment{}, fmt.Errorf("assessment %q not found", id)
	}

	a.ID = id
	s.assessments[id] = a
	if err := s.saveToDisk(); err != nil {
		return Assessment{}, err
	}

	DefaultBus.Publish(Event{Resource: "assessments", Action: "updated", ID: id})
	return a, nil
}

// Delete removes an assessment by ID.
func (s *AssessmentService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assessments[id]; !exists {
		return fmt.Errorf("assessment %q not found", id)
	}

	delete(s.assessments, id)
	if err := s.saveToDisk(); err != nil {
		return err
	}

	DefaultBus.Publish(Event{Resource: "assessments", Action: "deleted", ID: id})
	return nil
}

// configFile returns the path to the assessments config file.
func (s *AssessmentService) configFile() string {
	return filepath.Join(s.dataDir, "assessments.json")
}

// loadFromDisk loads assessments from disk.
func (s *AssessmentService) loadFromDisk() {
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // File doesn't exist yet, start empty
	}

	var assessments map[string]Assessment
	if err := json.Unmarshal(data, &assessments); err != nil {
		return // Invalid JSON, start empty
	}

	s.assessments = assessments
}

// saveToDisk persists assessments to disk.
func (s *AssessmentService) saveToDisk() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.assessments, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configFile(), data, 0644)
}

// generateID creates a URL-safe ID from a name.
func generateID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "_")
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
