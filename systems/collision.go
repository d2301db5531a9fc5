package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/sprites"
)

// Collider decides whether a bird, drawn with the given animation frame, hits a pipe pair.
type Collider interface {
	Collide(b *components.Bird, frame int, p *Pipe) bool
}

// pipeOffsets returns the top and bottom sprite positions relative to the bird's
// sprite origin. The bird's y is rounded half to even, like the reference renderer.
func pipeOffsets(b *components.Bird, p *Pipe) (dx, topDY, bottomDY int) {
	by := math.RoundToEven(b.Y)
	dx = int(p.X - b.X)
	topDY = int(p.Top - by)
	bottomDY = int(p.Bottom - by)
	return dx, topDY, bottomDY
}

// MaskCollider tests per-pixel overlap of sprite alpha masks.
type MaskCollider struct {
	Birds  [sprites.BirdFrames]*sprites.Mask
	Top    *sprites.Mask
	Bottom *sprites.Mask
}

// NewMaskCollider takes its masks from a sprite sheet.
func NewMaskCollider(s *sprites.Sheet) *MaskCollider {
	return &MaskCollider{Birds: s.BirdMasks, Top: s.PipeTopMask, Bottom: s.PipeBottomMask}
}

// Collide implements Collider.
func (c *MaskCollider) Collide(b *components.Bird, frame int, p *Pipe) bool {
	mask := c.Birds[frame%sprites.BirdFrames]
	dx, topDY, bottomDY := pipeOffsets(b, p)

	if _, hit := mask.Overlap(c.Bottom, dx, bottomDY); hit {
		return true
	}
	_, hit := mask.Overlap(c.Top, dx, topDY)
	return hit
}

// BoxCollider tests overlap of the full sprite rectangles. It reports every
// collision the mask test reports, and may report one up to the bird sprite's
// transparent margin earlier.
type BoxCollider struct {
	BirdW, BirdH int
	PipeW, PipeH int
}

// NewBoxCollider takes its rectangles from a sprite sheet.
func NewBoxCollider(s *sprites.Sheet) *BoxCollider {
	bw, bh := s.BirdSize()
	pw, ph := s.PipeSize()
	return &BoxCollider{BirdW: bw, BirdH: bh, PipeW: pw, PipeH: ph}
}

// Collide implements Collider.
func (c *BoxCollider) Collide(b *components.Bird, _ int, p *Pipe) bool {
	dx, topDY, bottomDY := pipeOffsets(b, p)
	return c.overlaps(dx, topDY) || c.overlaps(dx, bottomDY)
}

func (c *BoxCollider) overlaps(dx, dy int) bool {
	return dx < c.BirdW && dx+c.PipeW > 0 && dy < c.BirdH && dy+c.PipeH > 0
}

// NewCollider builds the collider named by mode ("mask" or "box").
func NewCollider(mode string, s *sprites.Sheet) (Collider, error) {
	switch mode {
	case "mask":
		return NewMaskCollider(s), nil
	case "box":
		return NewBoxCollider(s), nil
	default:
		return nil, fmt.Errorf("unknown collision mode %q", mode)
	}
}
