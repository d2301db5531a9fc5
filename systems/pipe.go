package systems

import (
	"math/rand"

	"github.com/pthm-cable/flappy/config"
)

// PipeGeometry holds the constants shared by every pipe pair.
type PipeGeometry struct {
	Gap       float64
	Velocity  float64
	MinHeight int
	MaxHeight int // exclusive
	Width     int // sprite width
	TopHeight int // height of the top sprite
}

// PipeGeometryFromConfig combines pipe configuration with the pipe sprite size.
func PipeGeometryFromConfig(cfg *config.Config, spriteW, spriteH int) PipeGeometry {
	return PipeGeometry{
		Gap:       cfg.Pipe.Gap,
		Velocity:  cfg.Pipe.Velocity,
		MinHeight: cfg.Pipe.MinHeight,
		MaxHeight: cfg.Pipe.MaxHeight,
		Width:     spriteW,
		TopHeight: spriteH,
	}
}

// Pipe is a top and bottom pipe with a gap between them.
type Pipe struct {
	X      float64
	Height float64 // y of the gap's upper edge
	Top    float64 // y of the top sprite
	Bottom float64 // y of the bottom sprite, the gap's lower edge
	Passed bool

	geo *PipeGeometry
}

// NewPipe creates a pipe pair at x with a random gap height in [MinHeight, MaxHeight).
func NewPipe(x float64, geo *PipeGeometry, rng *rand.Rand) *Pipe {
	p := &Pipe{X: x, geo: geo}
	p.SetHeight(float64(geo.MinHeight + rng.Intn(geo.MaxHeight-geo.MinHeight)))
	return p
}

// SetHeight places the gap's upper edge at h and derives the sprite positions.
func (p *Pipe) SetHeight(h float64) {
	p.Height = h
	p.Top = h - float64(p.geo.TopHeight)
	p.Bottom = h + p.geo.Gap
}

// Move scrolls the pipe left by one tick.
func (p *Pipe) Move() {
	p.X -= p.geo.Velocity
}

// Right returns the x of the pipe's right edge.
func (p *Pipe) Right() float64 {
	return p.X + float64(p.geo.Width)
}

// OffScreen reports whether the pipe has scrolled fully past the left edge.
func (p *Pipe) OffScreen() bool {
	return p.Right() < 0
}

// Geometry returns the shared pipe constants.
func (p *Pipe) Geometry() *PipeGeometry {
	return p.geo
}
