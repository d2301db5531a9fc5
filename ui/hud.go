package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flappy/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Score        int
	Generation   int
	Alive        int
	Tick         int
	Speed        int
	FPS          int32
	Paused       bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the score in the top right corner and the generation and
// survivor counts in the top left.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	size := r.Theme.ScoreFontSize

	score := fmt.Sprintf("Score: %d", data.Score)
	r.DrawShadowText(score, data.ScreenWidth-15-rl.MeasureText(score, size), 10, size, rl.White)

	r.DrawShadowText(fmt.Sprintf("Gens: %d", data.Generation), 10, 10, size, rl.White)
	r.DrawShadowText(fmt.Sprintf("Alive: %d", data.Alive), 10, 10+size, size, rl.White)

	status := fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS)
	if data.Paused {
		status += " | PAUSED"
	}
	r.DrawShadowText(status, 10, 20+size*2, 16, rl.Yellow)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	h.renderer.DrawShadowText(controls, 10, screenHeight-25, 14, rl.LightGray)
}

// PerfPanel renders the per-phase tick timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, phases []telemetry.Phase) {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	height := int32(len(phases)+3)*lineHeight + padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding

	y = r.DrawSectionHeader(x, y, "Step Performance")
	y = r.DrawLabelValue(x, y, "Tick", stats.AvgTick.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))

	for _, ph := range phases {
		pct := stats.Pct(ph)
		color := rl.Color{R: 100, G: 150, B: 200, A: 255}
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		y = r.DrawBar(x, y, ph.String(), pct, p.width-padding*2, color)
	}
}

// SpeciesInfo is the number of live birds of one species.
type SpeciesInfo struct {
	ID    int
	Alive int
	Color rl.Color
}

// SpeciesPanel lists the species that still have birds in the air.
type SpeciesPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewSpeciesPanel creates a new species panel.
func NewSpeciesPanel(x, y, width int32) *SpeciesPanel {
	return &SpeciesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders up to eight species, largest first.
func (s *SpeciesPanel) Draw(species []SpeciesInfo) {
	r := s.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	sort.SliceStable(species, func(i, j int) bool {
		if species[i].Alive != species[j].Alive {
			return species[i].Alive > species[j].Alive
		}
		return species[i].ID < species[j].ID
	})
	shown := min(len(species), 8)

	r.DrawPanel(s.x, s.y, s.width, int32(shown+1)*lineHeight+padding*2)
	y := r.DrawSectionHeader(s.x+padding, s.y+padding, fmt.Sprintf("Species (%d)", len(species)))
	for _, sp := range species[:shown] {
		y = r.DrawColorSwatch(s.x+padding, y, sp.Color, fmt.Sprintf("#%d: %d alive", sp.ID, sp.Alive))
	}
}
