package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel is the toggleable panel holding the simulation speed, the
// pause switch and the overlay checkboxes.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	speed    int
	maxSpeed int
	paused   bool
}

// NewControlsPanel creates a hidden controls panel simulating speed ticks per frame.
func NewControlsPanel(x, y, width int32, speed, maxSpeed int) *ControlsPanel {
	if maxSpeed < 1 {
		maxSpeed = 1
	}
	c := &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		maxSpeed: maxSpeed,
	}
	c.SetSpeed(speed)
	return c
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Speed returns the ticks simulated per frame while running.
func (c *ControlsPanel) Speed() int {
	return c.speed
}

// SetSpeed clamps and sets the ticks simulated per frame.
func (c *ControlsPanel) SetSpeed(speed int) {
	c.speed = min(max(speed, 1), c.maxSpeed)
}

// Paused reports whether the simulation is paused.
func (c *ControlsPanel) Paused() bool {
	return c.paused
}

// StepsPerFrame is zero while paused.
func (c *ControlsPanel) StepsPerFrame() int {
	if c.paused {
		return 0
	}
	return c.speed
}

// HandleKeys applies the keyboard shortcuts: Tab shows the panel, Space
// pauses, Up and Down change the speed.
func (c *ControlsPanel) HandleKeys() {
	if rl.IsKeyPressed(rl.KeyTab) {
		c.Toggle()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		c.paused = !c.paused
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		c.SetSpeed(c.speed + 1)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		c.SetSpeed(c.speed - 1)
	}
}

// Draw renders the panel and applies any changes made through it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) {
	if !c.visible {
		return
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	categories := overlays.Categories()
	rows := 0
	for _, cat := range categories {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(rows)*(lineHeight+4) + lineHeight*6 + padding*3
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := c.x + padding
	y := c.y + padding

	rl.DrawText("Controls", x, y, 16, rl.White)
	y += lineHeight + 6

	rl.DrawText(fmt.Sprintf("Speed: %dx", c.speed), x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	speed := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: inner - 30, Height: 14},
		"", fmt.Sprint(c.maxSpeed),
		float32(c.speed), 1, float32(c.maxSpeed),
	)
	c.SetSpeed(int(speed + 0.5))
	y += lineHeight + 6

	label := "Pause"
	if c.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 100, Height: 20}, label) {
		c.paused = !c.paused
	}
	y += lineHeight + 12

	for _, category := range categories {
		y = r.DrawSectionHeader(x, y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			text := desc.Name
			if desc.KeyLabel != "" {
				text = fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			}
			enabled := overlays.IsEnabled(desc.ID)
			checked := gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 12, Height: 12}, text, enabled)
			if checked != enabled {
				overlays.SetEnabled(desc.ID, checked)
			}
			y += lineHeight + 4
		}
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
