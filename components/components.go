// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/flappy/neural"
)

// Bird is the flight state of one agent. X never changes after spawn.
type Bird struct {
	X, Y      float64
	Vel       float64 // vertical velocity set at the last jump
	TickCount int     // ticks since the last jump
	Tilt      float64 // degrees, positive = nose up
	Height    float64 // y at the last jump
}

// Wings tracks the flap animation. Frame selects the sprite and therefore the collision mask.
type Wings struct {
	Count int
	Frame int
}

// Pilot binds an agent to its decision function and fitness accumulator.
type Pilot struct {
	ID      int // candidate id assigned by the evolver
	Seq     int // spawn order within the generation; lowest live Seq is the lead bird
	Species int
	Brain   neural.Decider
	Fitness *float64 // owned by the evolver
}

// Reward adds delta to the pilot's fitness accumulator.
func (p *Pilot) Reward(delta float64) {
	*p.Fitness += delta
}
