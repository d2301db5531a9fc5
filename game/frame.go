package game

import (
	"context"
	"errors"
)

// ErrQuit is returned by a Presenter when the user asks to stop the run.
var ErrQuit = errors.New("quit requested")

// Presenter shows frames of a running generation. Present may block to pace
// the simulation and returns ErrQuit to abort the whole run.
type Presenter interface {
	Present(ctx context.Context, f *Frame) error
}

// Pacer is implemented by presenters that choose how many ticks to simulate
// between frames. Zero pauses the simulation.
type Pacer interface {
	StepsPerFrame() int
}

// Presenters fans a frame out to several presenters in order, stopping at the
// first error.
type Presenters []Presenter

// Present implements Presenter.
func (ps Presenters) Present(ctx context.Context, f *Frame) error {
	for _, p := range ps {
		if err := p.Present(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// StepsPerFrame implements Pacer using the first member that paces.
func (ps Presenters) StepsPerFrame() int {
	for _, p := range ps {
		if pacer, ok := p.(Pacer); ok {
			return pacer.StepsPerFrame()
		}
	}
	return 1
}

// Events counts what happened since the previous frame.
type Events struct {
	Jumps   int
	Passes  int
	Crashes int // pipe collisions
	Falls   int // left the play area
}

// BirdView is a read-only copy of one live bird.
type BirdView struct {
	X, Y    float64
	Tilt    float64
	Wing    int // sprite frame
	Species int
	Seq     int
}

// PipeView is a read-only copy of one pipe pair.
type PipeView struct {
	X      float64
	Height float64
	Top    float64
	Bottom float64
}

// GroundView is a read-only copy of the scrolling floor.
type GroundView struct {
	Y, X1, X2 float64
}

// Frame is a snapshot of a generation for presentation.
type Frame struct {
	Generation int
	Tick       int
	Score      int
	Alive      int
	Active     int // index into Pipes of the pipe the birds observe
	State      State
	Reason     Reason

	Birds  []BirdView // ordered by spawn sequence
	Pipes  []PipeView
	Ground GroundView
	Events Events
}
