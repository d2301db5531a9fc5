package game

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/telemetry"
)

// stubEvolver hands out fixed deciders and counts generations.
type stubEvolver struct {
	deciders []neural.Decider
	fitness  []float64
	gen      int
	advances int
	genome   *genetics.Genome
}

func newStubEvolver(deciders ...neural.Decider) *stubEvolver {
	return &stubEvolver{
		deciders: deciders,
		fitness:  make([]float64, len(deciders)),
		genome:   neural.CreateSeedGenome(1, rand.New(rand.NewSource(1))),
	}
}

func (s *stubEvolver) Generation() int { return s.gen }

func (s *stubEvolver) Candidates() ([]neural.Candidate, error) {
	cands := make([]neural.Candidate, len(s.deciders))
	for i, d := range s.deciders {
		cands[i] = neural.Candidate{ID: i, Brain: d, Fitness: &s.fitness[i]}
	}
	return cands, nil
}

func (s *stubEvolver) Advance(ctx context.Context) error {
	s.gen++
	s.advances++
	return ctx.Err()
}

func (s *stubEvolver) Genome(id int) (*genetics.Genome, error) {
	if id < 0 || id >= len(s.deciders) {
		return nil, neural.ErrUnknownCandidate
	}
	return s.genome, nil
}

func (s *stubEvolver) Best() (*genetics.Genome, float64) { return s.genome, s.fitness[0] }

// framePresenter records frames and can fail after a number of them.
type framePresenter struct {
	steps  int
	frames int
	failAt int
	err    error
}

func (p *framePresenter) Present(_ context.Context, f *Frame) error {
	p.frames++
	if p.err != nil && p.frames >= p.failAt {
		return p.err
	}
	return nil
}

func (p *framePresenter) StepsPerFrame() int { return p.steps }

func TestTrainerRunsGenerations(t *testing.T) {
	ev := newStubEvolver(neverJump, neverJump)
	tr := NewTrainer(testRules(t), ev, nil, nil, rand.New(rand.NewSource(1)), TrainerOptions{Generations: 3})

	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Generations != 3 {
		t.Errorf("generations = %d, want 3", res.Generations)
	}
	// No reproduction after the last generation
	if ev.advances != 2 {
		t.Errorf("advances = %d, want 2", ev.advances)
	}
	if res.Solved {
		t.Error("no threshold configured, run cannot be solved")
	}
}

func TestTrainerFitnessThresholdStopsEarly(t *testing.T) {
	ev := newStubEvolver(neverJump)
	tr := NewTrainer(testRules(t), ev, nil, nil, rand.New(rand.NewSource(2)), TrainerOptions{
		Generations:      10,
		FitnessThreshold: 2, // a floor bird collects 2.4
	})

	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Solved || res.Generations != 1 || ev.advances != 0 {
		t.Errorf("result %+v after %d advances, want solved in one generation", res, ev.advances)
	}
}

func TestTrainerSavesChampion(t *testing.T) {
	rules := testRules(t)
	rules.Collider = noCollider{}
	dir := t.TempDir()
	path := filepath.Join(dir, "best.genome")
	out, err := telemetry.NewOutputManager(filepath.Join(dir, "run"))
	if err != nil {
		t.Fatal(err)
	}

	ev := newStubEvolver(hover, neverJump)
	tr := NewTrainer(rules, ev, nil, out, rand.New(rand.NewSource(3)), TrainerOptions{
		Generations:  1,
		ChampionPath: path,
	})

	stats, gen, err := tr.RunGeneration(context.Background())
	if err != nil {
		t.Fatalf("RunGeneration failed: %v", err)
	}
	if gen.Reason() != ReasonScoreThreshold {
		t.Fatalf("reason = %v, want score_threshold", gen.Reason())
	}
	if stats.Score != 26 || stats.Population != 2 {
		t.Errorf("stats score %d population %d", stats.Score, stats.Population)
	}
	if stats.ChampionLinks != len(ev.genome.Genes) {
		t.Errorf("champion links = %d, want %d", stats.ChampionLinks, len(ev.genome.Genes))
	}

	if _, err := neural.LoadGenome(path); err != nil {
		t.Errorf("champion file not readable: %v", err)
	}

	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(out.Dir(), telemetry.ChampionsFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("champions.csv has %d lines, want header + 1:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[1], "0,") || !strings.HasSuffix(lines[1], ","+path) {
		t.Errorf("champion row %q, want generation 0 saved to %s", lines[1], path)
	}
}

func TestTrainerPresentsFrames(t *testing.T) {
	ev := newStubEvolver(neverJump)
	p := &framePresenter{steps: 5}
	tr := NewTrainer(testRules(t), ev, p, nil, rand.New(rand.NewSource(4)), TrainerOptions{Generations: 1})

	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// 24 ticks of flight plus the terminating step, five per frame
	if p.frames != 5 {
		t.Errorf("frames = %d, want 5", p.frames)
	}
}

func TestTrainerQuit(t *testing.T) {
	ev := newStubEvolver(neverJump)
	p := &framePresenter{steps: 1, failAt: 3, err: ErrQuit}
	tr := NewTrainer(testRules(t), ev, p, nil, rand.New(rand.NewSource(5)), TrainerOptions{Generations: 5})

	_, err := tr.Run(context.Background())
	if !errors.Is(err, ErrQuit) {
		t.Fatalf("Run error = %v, want ErrQuit", err)
	}
	if ev.advances != 0 {
		t.Error("quit must abort the whole run, not just the generation")
	}
}

func TestTrainerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTrainer(testRules(t), newStubEvolver(hover), nil, nil, rand.New(rand.NewSource(6)), TrainerOptions{Generations: 1})
	if _, err := tr.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}
