package systems

// Ground is the scrolling floor: two segments that leapfrog each other.
// It is cosmetic and has no effect on the simulation.
type Ground struct {
	Y        float64
	X1, X2   float64
	Width    float64
	Velocity float64
}

// NewGround creates a ground at y made of segments of the given width.
func NewGround(y, width, velocity float64) *Ground {
	return &Ground{Y: y, X1: 0, X2: width, Width: width, Velocity: velocity}
}

// Move scrolls both segments and wraps any that left the screen.
func (g *Ground) Move() {
	g.X1 -= g.Velocity
	g.X2 -= g.Velocity

	if g.X1+g.Width < 0 {
		g.X1 = g.X2 + g.Width
	}
	if g.X2+g.Width < 0 {
		g.X2 = g.X1 + g.Width
	}
}
