package sprites

import (
	"image"
)

// AlphaThreshold is the alpha value a pixel must exceed to be solid.
const AlphaThreshold = 127

// Mask is a per-pixel solidity map of a sprite.
type Mask struct {
	W, H int
	bits []bool
	box  image.Rectangle // tight bounds of solid pixels
}

// NewMask creates an empty mask of the given size.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, bits: make([]bool, w*h)}
}

// FromImage builds a mask from the alpha channel of img.
func FromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a>>8 > AlphaThreshold {
				m.bits[y*m.W+x] = true
			}
		}
	}
	m.recomputeBounds()
	return m
}

// Set marks a pixel solid. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	m.bits[y*m.W+x] = true
	m.box = m.box.Union(image.Rect(x, y, x+1, y+1))
}

// Get reports whether a pixel is solid. Out-of-range coordinates are empty.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.bits[y*m.W+x]
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Bounds returns the tight bounding rectangle of the solid pixels.
func (m *Mask) Bounds() image.Rectangle {
	return m.box
}

// FlipV returns a vertically mirrored copy.
func (m *Mask) FlipV() *Mask {
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		copy(out.bits[(m.H-1-y)*m.W:(m.H-y)*m.W], m.bits[y*m.W:(y+1)*m.W])
	}
	out.recomputeBounds()
	return out
}

// Overlap reports the first solid pixel shared by m and other when other's
// top-left corner is placed at (dx, dy) in m's coordinates.
// The returned point is in m's coordinates.
func (m *Mask) Overlap(other *Mask, dx, dy int) (image.Point, bool) {
	if other == nil {
		return image.Point{}, false
	}
	area := m.box.Intersect(other.box.Add(image.Pt(dx, dy)))
	if area.Empty() {
		return image.Point{}, false
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := m.bits[y*m.W : (y+1)*m.W]
		orow := other.bits[(y-dy)*other.W : (y-dy+1)*other.W]
		for x := area.Min.X; x < area.Max.X; x++ {
			if row[x] && orow[x-dx] {
				return image.Pt(x, y), true
			}
		}
	}
	return image.Point{}, false
}

func (m *Mask) recomputeBounds() {
	m.box = image.Rectangle{}
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.bits[y*m.W+x] {
				m.box = m.box.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
}
