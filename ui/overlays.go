package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlaySightLines     OverlayID = "sight_lines"
	OverlaySpeciesColors  OverlayID = "species_colors"
	OverlayCollisionBoxes OverlayID = "collision_boxes"
	OverlaySpeciesPanel   OverlayID = "species_panel"
	OverlayPerfPanel      OverlayID = "perf_panel"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID
	Name     string
	Key      int32  // toggle key, 0 for none
	KeyLabel string // e.g. "L"
	Category string // "visual" | "debug"
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:       OverlaySightLines,
		Name:     "Sight Lines",
		Key:      rl.KeyL,
		KeyLabel: "L",
		Category: "visual",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlaySpeciesColors,
		Name:     "Species Colors",
		Key:      rl.KeyC,
		KeyLabel: "C",
		Category: "visual",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlaySpeciesPanel,
		Name:     "Species",
		Key:      rl.KeyS,
		KeyLabel: "S",
		Category: "visual",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayCollisionBoxes,
		Name:     "Bounding Boxes",
		Key:      rl.KeyB,
		KeyLabel: "B",
		Category: "debug",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayPerfPanel,
		Name:     "Performance",
		Key:      rl.KeyF,
		KeyLabel: "F",
		Category: "debug",
	})
}

// Register adds an overlay to the registry, initially disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if _, ok := r.byID[id]; ok {
		r.enabled[id] = enabled
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
