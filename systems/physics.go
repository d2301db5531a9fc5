// Package systems contains the per-tick simulation rules: flight, pipes, ground and collision.
package systems

import (
	"math"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
)

// Flight holds the bird flight model constants.
type Flight struct {
	JumpVelocity     float64
	Gravity          float64
	TerminalVelocity float64 // cap on |displacement| per tick
	RiseBoost        float64 // extra upward displacement while rising
	MaxRotation      float64
	MinRotation      float64
	RotationVelocity float64 // tilt lost per tick while falling
	TiltMargin       float64 // below Height+TiltMargin the bird keeps its nose up
}

// FlightFromConfig builds the flight model from configuration.
func FlightFromConfig(cfg *config.Config) Flight {
	b := cfg.Bird
	return Flight{
		JumpVelocity:     b.JumpVelocity,
		Gravity:          b.Gravity,
		TerminalVelocity: b.TerminalVelocity,
		RiseBoost:        b.RiseBoost,
		MaxRotation:      b.MaxRotation,
		MinRotation:      b.MinRotation,
		RotationVelocity: b.RotationVelocity,
		TiltMargin:       b.TiltMargin,
	}
}

// Displacement returns the kinematic displacement after t ticks from an impulse
// of velocity vel, capped to the terminal velocity in both directions.
func (f Flight) Displacement(vel float64, t int) float64 {
	ft := float64(t)
	d := vel*ft + 0.5*f.Gravity*ft*ft
	if math.Abs(d) >= f.TerminalVelocity {
		d = math.Copysign(f.TerminalVelocity, d)
	}
	return d
}

// Move advances a bird by one tick and returns the displacement applied to Y.
func Move(b *components.Bird, f Flight) float64 {
	b.TickCount++

	d := f.Displacement(b.Vel, b.TickCount)
	if d < 0 {
		d -= f.RiseBoost
	}
	b.Y += d

	if d < 0 || b.Y < b.Height+f.TiltMargin {
		if b.Tilt < f.MaxRotation {
			b.Tilt = f.MaxRotation
		}
	} else if b.Tilt > f.MinRotation {
		b.Tilt = math.Max(b.Tilt-f.RotationVelocity, f.MinRotation)
	}

	return d
}

// Jump gives the bird an upward impulse from its current position.
func Jump(b *components.Bird, f Flight) {
	b.Vel = f.JumpVelocity
	b.TickCount = 0
	b.Height = b.Y
}
