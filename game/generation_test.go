package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/sprites"
	"github.com/pthm-cable/flappy/systems"
)

// deciderFunc adapts a function to neural.Decider.
type deciderFunc func(inputs []float64) ([]float64, error)

func (f deciderFunc) Decide(inputs []float64) ([]float64, error) { return f(inputs) }

var (
	neverJump = deciderFunc(func([]float64) ([]float64, error) { return []float64{-1}, nil })

	// hover jumps whenever the bird sinks below its spawn height
	hover = deciderFunc(func(in []float64) ([]float64, error) {
		if in[0] > 350 {
			return []float64{1}, nil
		}
		return []float64{0}, nil
	})
)

type noCollider struct{}

func (noCollider) Collide(*components.Bird, int, *systems.Pipe) bool { return false }

func testRules(t *testing.T) *Rules {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	sheet, err := sprites.Load("", cfg.Sprites.Scale, cfg.Screen.Width, 900)
	if err != nil {
		t.Fatalf("loading sprites: %v", err)
	}
	rules, err := NewRules(cfg, sheet)
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}
	return rules
}

func testCandidates(deciders ...neural.Decider) []neural.Candidate {
	fitness := make([]float64, len(deciders))
	cands := make([]neural.Candidate, len(deciders))
	for i, d := range deciders {
		fitness[i] = 99 // must be reset at spawn
		cands[i] = neural.Candidate{ID: 100 + i, Brain: d, Fitness: &fitness[i]}
	}
	return cands
}

func runUntilDone(t *testing.T, g *Generation, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks && !g.Done(); i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !g.Done() {
		t.Fatalf("generation still running after %d ticks", maxTicks)
	}
}

func TestNewGeneration(t *testing.T) {
	rules := testRules(t)
	cands := testCandidates(neverJump, hover)
	g := NewGeneration(rules, 3, cands, rand.New(rand.NewSource(1)))

	if g.State() != StateInit {
		t.Errorf("state = %v, want init", g.State())
	}
	if g.Alive() != 2 {
		t.Errorf("alive = %d, want 2", g.Alive())
	}
	for i, c := range cands {
		if *c.Fitness != 0 {
			t.Errorf("candidate %d fitness %v, want 0", i, *c.Fitness)
		}
	}

	f := g.Frame()
	if len(f.Pipes) != 1 || f.Pipes[0].X != 700 {
		t.Errorf("expected one pipe at 700, got %+v", f.Pipes)
	}
	for _, b := range f.Birds {
		if b.X != 230 || b.Y != 350 {
			t.Errorf("bird spawned at (%v, %v), want (230, 350)", b.X, b.Y)
		}
	}
	if f.Generation != 3 || f.Ground.Y != 730 {
		t.Errorf("frame generation %d ground %v", f.Generation, f.Ground.Y)
	}
}

func TestObserve(t *testing.T) {
	rules := testRules(t)
	p := systems.NewPipe(700, &rules.Pipes, rand.New(rand.NewSource(1)))
	p.SetHeight(200)

	got := Observe(350, p, nil)
	want := []float64{350, 150, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("input %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStepFeedsObservation(t *testing.T) {
	rules := testRules(t)
	var seen []float64
	rec := deciderFunc(func(in []float64) ([]float64, error) {
		seen = append([]float64(nil), in...)
		return []float64{0}, nil
	})

	g := NewGeneration(rules, 0, testCandidates(rec), rand.New(rand.NewSource(2)))
	h := g.pipes[0].Height
	if err := g.Step(); err != nil {
		t.Fatal(err)
	}

	// The bird moves before it decides
	y := 351.5
	want := []float64{y, math.Abs(y - h), math.Abs(y - (h + 160))}
	for i := range want {
		if math.Abs(seen[i]-want[i]) > 1e-9 {
			t.Errorf("input %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestNeverJumpingBirdHitsFloor(t *testing.T) {
	rules := testRules(t)
	cands := testCandidates(neverJump)
	g := NewGeneration(rules, 0, cands, rand.New(rand.NewSource(3)))

	for tick := 1; tick <= 23; tick++ {
		if err := g.Step(); err != nil {
			t.Fatal(err)
		}
		if g.Alive() != 1 {
			t.Fatalf("bird retired early at tick %d", tick)
		}
	}
	if err := g.Step(); err != nil {
		t.Fatal(err)
	}
	if g.Alive() != 0 {
		t.Fatal("bird should be retired at the floor on tick 24")
	}
	if g.Done() {
		t.Fatal("termination happens on the next tick")
	}

	if err := g.Step(); err != nil {
		t.Fatal(err)
	}
	if g.State() != StateTerminated || g.Reason() != ReasonAllDead {
		t.Errorf("state %v reason %v, want terminated all_dead", g.State(), g.Reason())
	}

	// No penalty for leaving the play area
	if math.Abs(*cands[0].Fitness-2.4) > 1e-9 {
		t.Errorf("fitness = %v, want 2.4", *cands[0].Fitness)
	}
	if g.Champion() != nil {
		t.Error("no champion without reaching the score threshold")
	}
}

func TestCollisionRetiresWithPenalty(t *testing.T) {
	rules := testRules(t)
	cands := testCandidates(hover)
	g := NewGeneration(rules, 0, cands, rand.New(rand.NewSource(4)))

	// Gap from 100 to 260 puts the bottom pipe across the bird
	g.pipes[0].X = 230
	g.pipes[0].SetHeight(100)

	if err := g.Step(); err != nil {
		t.Fatal(err)
	}
	if g.Alive() != 0 {
		t.Fatal("bird should have crashed into the bottom pipe")
	}
	if math.Abs(*cands[0].Fitness-(0.1-1)) > 1e-9 {
		t.Errorf("fitness = %v, want -0.9", *cands[0].Fitness)
	}
	if ev := g.Frame().Events; ev.Crashes != 1 || ev.Falls != 0 {
		t.Errorf("events = %+v, want one crash", ev)
	}
}

func TestActivePipeFollowsLeadBird(t *testing.T) {
	rules := testRules(t)
	rules.Collider = noCollider{}
	var seen []float64
	rec := deciderFunc(func(in []float64) ([]float64, error) {
		seen = append(seen[:0], in...)
		return hover(in)
	})
	g := NewGeneration(rules, 0, testCandidates(rec), rand.New(rand.NewSource(4)))

	step := func() {
		t.Helper()
		if err := g.Step(); err != nil {
			t.Fatal(err)
		}
		if g.Done() {
			t.Fatalf("generation ended at tick %d (%v)", g.Tick(), g.Reason())
		}
	}
	checkInputs := func(p *systems.Pipe) {
		t.Helper()
		y := seen[0]
		if math.Abs(seen[1]-math.Abs(y-p.Height)) > 1e-9 || math.Abs(seen[2]-math.Abs(y-p.Bottom)) > 1e-9 {
			t.Errorf("tick %d inputs %v, want distances to gap %v..%v", g.Tick(), seen, p.Height, p.Bottom)
		}
	}

	// The first pipe is passed once it is left of the bird; its
	// successor spawns at the right edge.
	for len(g.pipes) < 2 {
		step()
		if g.Frame().Active != 0 {
			t.Fatalf("tick %d: active %d with a single pipe", g.Tick(), g.Frame().Active)
		}
	}
	if g.Tick() != 95 || g.pipes[1].X != 600 {
		t.Errorf("second pipe at x=%v after tick %d, want 600 after tick 95", g.pipes[1].X, g.Tick())
	}
	first, second := g.pipes[0], g.pipes[1]

	// Still observing the first pipe while its right edge covers the bird
	for first.Right() >= 230 {
		step()
		if g.Frame().Active != 0 {
			t.Fatalf("tick %d: switched pipes with right edge at %v", g.Tick(), first.Right())
		}
		checkInputs(first)
	}

	step()
	if g.Frame().Active != 1 {
		t.Fatalf("tick %d: active = %d, want 1 once the bird is past the first pipe", g.Tick(), g.Frame().Active)
	}
	checkInputs(second)

	for len(g.pipes) == 2 && g.pipes[0] == first {
		step()
	}
	if g.pipes[0] != second || first.Right() >= 0 {
		t.Fatalf("tick %d: first pipe (right edge %v) not removed cleanly, pipes %d", g.Tick(), first.Right(), len(g.pipes))
	}
	if len(g.Frame().Pipes) != 1 {
		t.Errorf("frame shows %d pipes after removal, want 1", len(g.Frame().Pipes))
	}

	step()
	if g.Frame().Active != 0 {
		t.Errorf("active = %d after removal, want 0", g.Frame().Active)
	}
	checkInputs(second)
}

func TestScoreThresholdPicksChampion(t *testing.T) {
	rules := testRules(t)
	rules.Collider = noCollider{}
	cands := testCandidates(hover, hover, hover, neverJump)
	g := NewGeneration(rules, 0, cands, rand.New(rand.NewSource(5)))

	prevScore := 0
	for i := 0; i < 5000 && !g.Done(); i++ {
		if err := g.Step(); err != nil {
			t.Fatal(err)
		}

		// Every live bird keeps its decision function and accumulator
		n := 0
		query := g.birdFilter.Query()
		for query.Next() {
			_, _, pilot := query.Get()
			if pilot.Brain == nil || pilot.Fitness == nil {
				t.Errorf("tick %d: bird %d lost its pilot", g.Tick(), pilot.ID)
			}
			n++
		}
		if n != g.Alive() {
			t.Fatalf("tick %d: %d entities, alive counter %d", g.Tick(), n, g.Alive())
		}

		if g.Score() != prevScore {
			if g.Score() == 1 && g.Tick() != 95 {
				t.Errorf("first pipe passed at tick %d, want 95", g.Tick())
			}
			prevScore = g.Score()
		}
	}

	if g.Reason() != ReasonScoreThreshold {
		t.Fatalf("reason = %v, want score_threshold", g.Reason())
	}
	if g.Score() != 26 {
		t.Errorf("score = %d, want 26", g.Score())
	}
	if g.Tick() != 95+25*75 {
		t.Errorf("tick = %d, want %d", g.Tick(), 95+25*75)
	}
	if g.Alive() != 3 {
		t.Errorf("alive = %d, want 3 hovering birds", g.Alive())
	}

	champ := g.Champion()
	if champ == nil {
		t.Fatal("expected a champion")
	}
	if champ.Seq != 0 || champ.ID != cands[0].ID {
		t.Errorf("champion = %+v, want the first-spawned bird", champ)
	}

	want := 0.1*float64(g.Tick()) + 5*26
	if math.Abs(champ.Fitness-want) > 1e-6 {
		t.Errorf("champion fitness = %v, want %v", champ.Fitness, want)
	}
	if math.Abs(*cands[3].Fitness-2.4) > 1e-9 {
		t.Errorf("floor bird fitness = %v, want 2.4 with no pass rewards", *cands[3].Fitness)
	}

	// Terminated generations ignore further steps
	tick := g.Tick()
	if err := g.Step(); err != nil || g.Tick() != tick {
		t.Error("Step after termination should be a no-op")
	}
}

func TestChampionPrefersFitness(t *testing.T) {
	rules := testRules(t)
	rules.Collider = noCollider{}
	cands := testCandidates(hover, hover)
	g := NewGeneration(rules, 0, cands, rand.New(rand.NewSource(6)))

	if err := g.Step(); err != nil {
		t.Fatal(err)
	}
	*cands[1].Fitness += 3

	champ := g.pickChampion()
	if champ == nil || champ.ID != cands[1].ID {
		t.Errorf("champion = %+v, want candidate %d", champ, cands[1].ID)
	}
}

func TestTickLimit(t *testing.T) {
	rules := testRules(t)
	rules.Collider = noCollider{}
	rules.MaxTicks = 10
	g := NewGeneration(rules, 0, testCandidates(hover), rand.New(rand.NewSource(7)))

	runUntilDone(t, g, 100)
	if g.Reason() != ReasonTickLimit || g.Tick() != 10 {
		t.Errorf("reason %v at tick %d, want tick_limit at 10", g.Reason(), g.Tick())
	}
}

func TestDecisionErrorsAbortStep(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		decider neural.Decider
		want    error
	}{
		{"decider error", deciderFunc(func([]float64) ([]float64, error) { return nil, boom }), boom},
		{"nan output", deciderFunc(func([]float64) ([]float64, error) { return []float64{math.NaN()}, nil }), neural.ErrBadOutput},
		{"no outputs", deciderFunc(func([]float64) ([]float64, error) { return []float64{}, nil }), neural.ErrBadOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGeneration(testRules(t), 0, testCandidates(hover, tt.decider), rand.New(rand.NewSource(8)))
			err := g.Step()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Step() error = %v, want %v", err, tt.want)
			}
			// The world must be usable after an aborted tick
			if f := g.Frame(); len(f.Birds) != 2 {
				t.Errorf("frame has %d birds, want 2", len(f.Birds))
			}
		})
	}
}

func TestFrameDrainsEvents(t *testing.T) {
	rules := testRules(t)
	rules.Collider = noCollider{}
	g := NewGeneration(rules, 0, testCandidates(hover, hover, neverJump), rand.New(rand.NewSource(9)))

	for i := 0; i < 30; i++ {
		if err := g.Step(); err != nil {
			t.Fatal(err)
		}
	}

	f := g.Frame()
	if f.Events.Jumps == 0 {
		t.Error("hovering birds should have jumped")
	}
	if f.Events.Falls != 1 {
		t.Errorf("falls = %d, want 1", f.Events.Falls)
	}
	for i := 1; i < len(f.Birds); i++ {
		if f.Birds[i-1].Seq >= f.Birds[i].Seq {
			t.Error("birds should be ordered by spawn sequence")
		}
	}

	if again := g.Frame(); again.Events != (Events{}) {
		t.Errorf("events not drained: %+v", again.Events)
	}
}
