package mapcore

// MemoryEngine is an in-memory Engine for tests and for hosts that
// only need the declared layer state without rendering anything.
type MemoryEngine struct {
	// HostAbsent simulates a missing host rendering target: NewSurface
	// returns no surface and no error until it is cleared.
	HostAbsent bool

	surfaces []*MemorySurface
}

// NewMemoryEngine creates an in-memory engine.
func NewMemoryEngine() *MemoryEngine { return &MemoryEngine{} }

// NewSurface implements Engine.
func (e *MemoryEngine) NewSurface(cfg MapConfig) (Surface, error) {
	if e.HostAbsent {
		return nil, nil
	}
	s := &MemorySurface{cfg: cfg, attached: make(map[*LayerGroup]bool)}
	e.surfaces = append(e.surfaces, s)
	return s, nil
}

// Surfaces returns every surface the engine ever created, live or
// destroyed, in creation order.
func (e *MemoryEngine) Surfaces() []*MemorySurface { return e.surfaces }

// Live returns the surfaces not yet destroyed.
func (e *MemoryEngine) Live() []*MemorySurface {
	var live []*MemorySurface
	for _, s := range e.surfaces {
		if !s.destroyed {
			live = append(live, s)
		}
	}
	return live
}

// MemorySurface records every call made against it so tests can check
// attachment state, chrome, and use-after-destroy.
type MemorySurface struct {
	cfg              MapConfig
	attached         map[*LayerGroup]bool
	controls         []Control
	labelOverlay     bool
	destroyed        bool
	usedAfterDestroy bool
}

// AddLayer implements Surface.
func (s *MemorySurface) AddLayer(g *LayerGroup) {
	if s.noteDestroyed() {
		return
	}
	s.attached[g] = true
}

// RemoveLayer implements Surface.
func (s *MemorySurface) RemoveLayer(g *LayerGroup) {
	if s.noteDestroyed() {
		return
	}
	delete(s.attached, g)
}

// HasLayer implements Surface.
func (s *MemorySurface) HasLayer(g *LayerGroup) bool {
	if s.noteDestroyed() {
		return false
	}
	return s.attached[g]
}

// AddControl implements Surface.
func (s *MemorySurface) AddControl(c Control) {
	if s.noteDestroyed() {
		return
	}
	s.controls = append(s.controls, c)
}

// AddLabelOverlay implements Surface.
func (s *MemorySurface) AddLabelOverlay() {
	if s.noteDestroyed() {
		return
	}
	s.labelOverlay = true
}

// Destroy implements Surface.
func (s *MemorySurface) Destroy() {
	s.destroyed = true
	s.attached = make(map[*LayerGroup]bool)
}

func (s *MemorySurface) noteDestroyed() bool {
	if s.destroyed {
		s.usedAfterDestroy = true
		return true
	}
	return false
}

// Config returns the config the surface was created with.
func (s *MemorySurface) Config() MapConfig { return s.cfg }

// Attached reports whether g is currently attached.
func (s *MemorySurface) Attached(g *LayerGroup) bool { return s.attached[g] }

// AttachedCount returns the number of attached groups.
func (s *MemorySurface) AttachedCount() int { return len(s.attached) }

// Controls returns the chrome added at creation.
func (s *MemorySurface) Controls() []Control { return s.controls }

// HasLabelOverlay reports whether the label overlay was added.
func (s *MemorySurface) HasLabelOverlay() bool { return s.labelOverlay }

// Destroyed reports whether Destroy was called.
func (s *MemorySurface) Destroyed() bool { return s.destroyed }

// UsedAfterDestroy reports whether any surface call arrived after
// Destroy. The widget's initialized guard must keep this false.
func (s *MemorySurface) UsedAfterDestroy() bool { return s.usedAfterDestroy }
