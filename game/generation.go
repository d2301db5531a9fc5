// Package game runs generations of birds: the per-tick simulation and the
// training loop around it.
package game

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/systems"
	"github.com/pthm-cable/flappy/telemetry"
)

// State is the lifecycle stage of a generation.
type State int

const (
	StateInit State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Reason tells why a generation terminated.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonAllDead
	ReasonScoreThreshold
	ReasonTickLimit
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonAllDead:
		return "all_dead"
	case ReasonScoreThreshold:
		return "score_threshold"
	case ReasonTickLimit:
		return "tick_limit"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Champion identifies the bird that carried a generation over the score threshold.
type Champion struct {
	ID      int
	Seq     int
	Species int
	Fitness float64
}

// Generation is one evaluation of a set of candidates: a flock of birds flying
// until all have died or the score threshold is exceeded.
type Generation struct {
	rules *Rules
	rng   *rand.Rand
	perf  *telemetry.PerfCollector

	world      *ecs.World
	birdMapper *ecs.Map3[components.Bird, components.Wings, components.Pilot]
	birdFilter *ecs.Filter3[components.Bird, components.Wings, components.Pilot]

	pipes  []*systems.Pipe
	ground *systems.Ground

	index    int
	tick     int
	score    int
	alive    int
	active   int
	state    State
	reason   Reason
	champion *Champion
	events   Events

	// Scratch buffers reused across ticks
	retired []ecs.Entity
	inputs  []float64
}

// NewGeneration spawns one bird per candidate and the first pipe. Every
// fitness accumulator is reset to zero.
func NewGeneration(rules *Rules, index int, cands []neural.Candidate, rng *rand.Rand) *Generation {
	world := ecs.NewWorld()

	g := &Generation{
		rules: rules,
		rng:   rng,
		world: world,
		birdMapper: ecs.NewMap3[
			components.Bird,
			components.Wings,
			components.Pilot,
		](world),
		birdFilter: ecs.NewFilter3[
			components.Bird,
			components.Wings,
			components.Pilot,
		](world),
		index:  index,
		state:  StateInit,
		inputs: make([]float64, neural.BrainInputs),
	}

	for seq, c := range cands {
		*c.Fitness = 0
		bird := components.Bird{
			X:      rules.World.SpawnX,
			Y:      rules.World.SpawnY,
			Height: rules.World.SpawnY,
		}
		wings := components.Wings{}
		pilot := components.Pilot{
			ID:      c.ID,
			Seq:     seq,
			Species: c.Species,
			Brain:   c.Brain,
			Fitness: c.Fitness,
		}
		g.birdMapper.NewEntity(&bird, &wings, &pilot)
		g.alive++
	}

	g.pipes = []*systems.Pipe{systems.NewPipe(rules.World.PipeSpawnX, &g.rules.Pipes, rng)}
	g.ground = systems.NewGround(rules.World.Floor, rules.GroundWidth, rules.GroundVelocity)

	return g
}

// SetPerf attaches a collector that times the phases of each step.
func (g *Generation) SetPerf(p *telemetry.PerfCollector) {
	g.perf = p
}

// Step advances the generation by one tick. It is a no-op once terminated.
// A decision function error aborts the tick and is returned.
func (g *Generation) Step() error {
	if g.state == StateTerminated {
		return nil
	}
	g.state = StateRunning

	if g.alive == 0 {
		g.terminate(ReasonAllDead)
		return nil
	}

	g.perf.StartTick()
	defer g.perf.EndTick()
	g.tick++

	g.perf.StartPhase(telemetry.PhaseFlight)
	g.active = g.activePipe()
	if err := g.fly(g.pipes[g.active]); err != nil {
		return err
	}
	g.ground.Move()

	g.perf.StartPhase(telemetry.PhasePipes)
	addPipe := false
	offscreen := 0
	for _, p := range g.pipes {
		p.Move()
		g.collide(p)

		if p.OffScreen() {
			offscreen++
		}
		if !p.Passed {
			if lead, ok := g.lead(); ok && p.X < lead.X {
				p.Passed = true
				addPipe = true
			}
		}
	}

	if addPipe {
		g.score++
		g.events.Passes++
		g.rewardAll(g.rules.Fitness.PassReward)
		g.pipes = append(g.pipes, systems.NewPipe(g.rules.World.PipeRespawnX, &g.rules.Pipes, g.rng))
	}

	g.perf.StartPhase(telemetry.PhaseCleanup)
	if offscreen > 0 {
		g.removeOffscreenPipes()
	}
	g.retireOutOfBounds()

	g.perf.StartPhase(telemetry.PhaseAnimation)
	g.flap()

	switch {
	case g.score > g.rules.ScoreThreshold:
		g.champion = g.pickChampion()
		g.terminate(ReasonScoreThreshold)
	case g.rules.MaxTicks > 0 && g.tick >= g.rules.MaxTicks:
		g.terminate(ReasonTickLimit)
	}
	return nil
}

// activePipe picks the pipe the birds observe: the second one once the lead
// bird is past the first pipe's right edge.
func (g *Generation) activePipe() int {
	if len(g.pipes) > 1 {
		if lead, ok := g.lead(); ok && lead.X > g.pipes[0].Right() {
			return 1
		}
	}
	return 0
}

// fly rewards, moves and consults every live bird.
func (g *Generation) fly(target *systems.Pipe) error {
	query := g.birdFilter.Query()
	for query.Next() {
		bird, _, pilot := query.Get()

		pilot.Reward(g.rules.Fitness.AliveReward)
		systems.Move(bird, g.rules.Flight)

		outputs, err := pilot.Brain.Decide(Observe(bird.Y, target, g.inputs))
		if err == nil {
			err = neural.CheckOutputs(outputs, neural.BrainOutputs)
		}
		if err != nil {
			query.Close()
			return fmt.Errorf("bird %d decision at tick %d: %w", pilot.ID, g.tick, err)
		}

		if outputs[0] > g.rules.JumpThreshold {
			systems.Jump(bird, g.rules.Flight)
			g.events.Jumps++
		}
	}
	return nil
}

// Observe fills buf with a bird's view of a pipe: its y and the vertical
// distances to the gap's upper and lower edges.
func Observe(y float64, p *systems.Pipe, buf []float64) []float64 {
	if cap(buf) < neural.BrainInputs {
		buf = make([]float64, neural.BrainInputs)
	}
	buf = buf[:neural.BrainInputs]
	buf[0] = y
	buf[1] = math.Abs(y - p.Height)
	buf[2] = math.Abs(y - p.Bottom)
	return buf
}

// collide retires every live bird that hits p, with the crash penalty.
func (g *Generation) collide(p *systems.Pipe) {
	g.retired = g.retired[:0]

	query := g.birdFilter.Query()
	for query.Next() {
		bird, wings, pilot := query.Get()
		if g.rules.Collider.Collide(bird, wings.Frame, p) {
			pilot.Reward(-g.rules.Fitness.CrashPenalty)
			g.retired = append(g.retired, query.Entity())
		}
	}

	g.events.Crashes += len(g.retired)
	g.retire(g.retired)
}

// retireOutOfBounds retires birds that touched the floor or flew off the top.
func (g *Generation) retireOutOfBounds() {
	g.retired = g.retired[:0]
	floor := g.rules.World.Floor
	ceiling := g.rules.World.Ceiling
	h := float64(g.rules.BirdHeight)

	query := g.birdFilter.Query()
	for query.Next() {
		bird, _, _ := query.Get()
		if bird.Y+h-g.rules.FloorInset >= floor || bird.Y < ceiling {
			g.retired = append(g.retired, query.Entity())
		}
	}

	g.events.Falls += len(g.retired)
	g.retire(g.retired)
}

// retire removes whole entities, so a bird never outlives its pilot.
func (g *Generation) retire(entities []ecs.Entity) {
	for _, e := range entities {
		g.world.RemoveEntity(e)
		g.alive--
	}
}

// lead returns the live bird with the lowest spawn sequence.
func (g *Generation) lead() (components.Bird, bool) {
	var lead components.Bird
	seq := -1

	query := g.birdFilter.Query()
	for query.Next() {
		bird, _, pilot := query.Get()
		if seq < 0 || pilot.Seq < seq {
			seq = pilot.Seq
			lead = *bird
		}
	}
	return lead, seq >= 0
}

func (g *Generation) rewardAll(delta float64) {
	query := g.birdFilter.Query()
	for query.Next() {
		_, _, pilot := query.Get()
		pilot.Reward(delta)
	}
}

func (g *Generation) removeOffscreenPipes() {
	kept := g.pipes[:0]
	for _, p := range g.pipes {
		if !p.OffScreen() {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(g.pipes); i++ {
		g.pipes[i] = nil
	}
	g.pipes = kept
}

func (g *Generation) flap() {
	query := g.birdFilter.Query()
	for query.Next() {
		bird, wings, _ := query.Get()
		systems.Flap(wings, bird.Tilt, g.rules.AnimationTime)
	}
}

// pickChampion returns the fittest live bird, ties going to the lowest spawn sequence.
func (g *Generation) pickChampion() *Champion {
	var best *Champion

	query := g.birdFilter.Query()
	for query.Next() {
		_, _, pilot := query.Get()
		f := *pilot.Fitness
		if best == nil || f > best.Fitness || (f == best.Fitness && pilot.Seq < best.Seq) {
			best = &Champion{ID: pilot.ID, Seq: pilot.Seq, Species: pilot.Species, Fitness: f}
		}
	}
	return best
}

func (g *Generation) terminate(r Reason) {
	g.state = StateTerminated
	g.reason = r
}

// Done reports whether the generation has terminated.
func (g *Generation) Done() bool { return g.state == StateTerminated }

// Index returns the generation number.
func (g *Generation) Index() int { return g.index }

// Tick returns the number of ticks simulated.
func (g *Generation) Tick() int { return g.tick }

// Score returns the number of pipes passed.
func (g *Generation) Score() int { return g.score }

// Alive returns the number of live birds.
func (g *Generation) Alive() int { return g.alive }

// State returns the lifecycle stage.
func (g *Generation) State() State { return g.state }

// Reason returns why the generation terminated, or ReasonNone.
func (g *Generation) Reason() Reason { return g.reason }

// Champion returns the score-threshold champion, or nil.
func (g *Generation) Champion() *Champion { return g.champion }

// Frame snapshots the generation for presentation. Events accumulated since
// the previous call are moved into the frame.
func (g *Generation) Frame() *Frame {
	f := &Frame{
		Generation: g.index,
		Tick:       g.tick,
		Score:      g.score,
		Alive:      g.alive,
		State:      g.state,
		Reason:     g.reason,
		Birds:      make([]BirdView, 0, g.alive),
		Pipes:      make([]PipeView, 0, len(g.pipes)),
		Ground:     GroundView{Y: g.ground.Y, X1: g.ground.X1, X2: g.ground.X2},
		Events:     g.events,
	}
	g.events = Events{}

	query := g.birdFilter.Query()
	for query.Next() {
		bird, wings, pilot := query.Get()
		f.Birds = append(f.Birds, BirdView{
			X:       bird.X,
			Y:       bird.Y,
			Tilt:    bird.Tilt,
			Wing:    wings.Frame,
			Species: pilot.Species,
			Seq:     pilot.Seq,
		})
	}
	sort.Slice(f.Birds, func(i, j int) bool { return f.Birds[i].Seq < f.Birds[j].Seq })

	for _, p := range g.pipes {
		f.Pipes = append(f.Pipes, PipeView{X: p.X, Height: p.Height, Top: p.Top, Bottom: p.Bottom})
	}
	f.Active = g.active
	if f.Active >= len(f.Pipes) {
		f.Active = 0
	}
	return f
}
