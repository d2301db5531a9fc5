package renderer

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Particle is a short-lived feather spawned where a bird was retired.
type Particle struct {
	X, Y    float32
	VX, VY  float32
	Life    int
	MaxLife int
	Size    float32
	Color   rl.Color
}

// ParticleRenderer owns and renders feather particles.
type ParticleRenderer struct {
	particles []Particle
	rng       *rand.Rand
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(seed int64) *ParticleRenderer {
	return &ParticleRenderer{rng: rand.New(rand.NewSource(seed))}
}

// Burst spawns n particles around (x, y).
func (r *ParticleRenderer) Burst(x, y float32, n int, color rl.Color) {
	for i := 0; i < n; i++ {
		angle := r.rng.Float64() * 2 * math.Pi
		speed := 1 + r.rng.Float64()*3
		life := 20 + r.rng.Intn(20)
		r.particles = append(r.particles, Particle{
			X:       x,
			Y:       y,
			VX:      float32(math.Cos(angle) * speed),
			VY:      float32(math.Sin(angle)*speed) - 1,
			Life:    life,
			MaxLife: life,
			Size:    2 + r.rng.Float32()*3,
			Color:   color,
		})
	}
}

// Update advances every particle one frame and drops expired ones.
func (r *ParticleRenderer) Update() {
	live := r.particles[:0]
	for _, p := range r.particles {
		p.Life--
		if p.Life <= 0 {
			continue
		}
		p.X += p.VX
		p.Y += p.VY
		p.VY += 0.15
		live = append(live, p)
	}
	r.particles = live
}

// Clear drops every particle.
func (r *ParticleRenderer) Clear() {
	r.particles = r.particles[:0]
}

// Draw renders all particles.
func (r *ParticleRenderer) Draw() {
	for i := range r.particles {
		p := &r.particles[i]

		lifeRatio := float32(p.Life) / float32(p.MaxLife)
		color := p.Color
		color.A = uint8(lifeRatio * 220)

		size := p.Size * lifeRatio
		if size < 0.5 {
			size = 0.5
		}
		rl.DrawCircle(int32(p.X), int32(p.Y), size, color)
	}
}
