package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawShadowText draws text with a one pixel drop shadow so it stays legible
// over the scrolling background.
func (r *Renderer) DrawShadowText(text string, x, y, size int32, color rl.Color) {
	rl.DrawText(text, x+2, y+2, size, r.Theme.TextShadow)
	rl.DrawText(text, x, y, size, color)
}

// DrawBar draws a horizontal percentage bar with its value.
func (r *Renderer) DrawBar(x, y int32, label string, pct float64, width int32, color rl.Color) int32 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.FontSize-2, rl.Color{R: 40, G: 40, B: 40, A: 255})
	rl.DrawRectangle(barX, y+2, int32(float64(barWidth)*pct/100), r.Theme.FontSize-2, color)
	rl.DrawText(fmt.Sprintf("%.1f%%", pct), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight
}

// DrawColorSwatch draws a small colour square followed by text.
func (r *Renderer) DrawColorSwatch(x, y int32, color rl.Color, text string) int32 {
	swatchSize := int32(10)
	rl.DrawRectangle(x, y+2, swatchSize, swatchSize, color)
	rl.DrawText(text, x+swatchSize+6, y, r.Theme.FontSize, r.Theme.LabelColor)
	return y + r.Theme.LineHeight
}
