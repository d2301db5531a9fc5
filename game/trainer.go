package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/telemetry"
)

// ctxCheckInterval is how often, in ticks, a headless run polls for cancellation.
const ctxCheckInterval = 256

// Bester is implemented by evolvers that remember their fittest genome.
type Bester interface {
	Best() (*genetics.Genome, float64)
}

// TrainerOptions configures a Trainer.
type TrainerOptions struct {
	Generations      int     // 0 runs until the fitness threshold or a quit
	FitnessThreshold float64 // 0 disables the early stop
	ChampionPath     string  // empty disables saving
	StepsPerFrame    int     // used when the presenter does not pace itself
	PerfWindow       int
}

// Result summarises a training run.
type Result struct {
	Generations int
	Solved      bool // best fitness reached the threshold
	BestFitness float64
	BestScore   int
	Champion    string // path the final champion was written to, if any
}

// Trainer drives an Evolver through generations of simulation.
type Trainer struct {
	rules     *Rules
	evolver   neural.Evolver
	presenter Presenter
	opts      TrainerOptions
	rng       *rand.Rand

	output    *telemetry.OutputManager
	perf      *telemetry.PerfCollector
	bookmarks *telemetry.BookmarkDetector
	hof       *telemetry.HallOfFame
}

// NewTrainer creates a trainer. presenter and output may be nil for a
// headless run without files.
func NewTrainer(rules *Rules, ev neural.Evolver, presenter Presenter, output *telemetry.OutputManager, rng *rand.Rand, opts TrainerOptions) *Trainer {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	return &Trainer{
		rules:     rules,
		evolver:   ev,
		presenter: presenter,
		opts:      opts,
		rng:       rng,
		output:    output,
		perf:      telemetry.NewPerfCollector(opts.PerfWindow),
		bookmarks: telemetry.NewBookmarkDetector(10),
		hof:       telemetry.NewHallOfFame(10),
	}
}

// Perf returns the step timing collector shared by every generation.
func (t *Trainer) Perf() *telemetry.PerfCollector {
	return t.perf
}

// HallOfFame returns the best candidates recorded so far.
func (t *Trainer) HallOfFame() *telemetry.HallOfFame {
	return t.hof
}

// Run evaluates generations until the configured count, the fitness threshold
// or an error. ErrQuit and context cancellation abort the run immediately.
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	var res Result

	for n := 0; t.opts.Generations == 0 || n < t.opts.Generations; n++ {
		stats, gen, err := t.RunGeneration(ctx)
		if err != nil {
			return res, err
		}
		res.Generations++
		if stats.BestFitness > res.BestFitness || res.Generations == 1 {
			res.BestFitness = stats.BestFitness
		}
		if gen.Score() > res.BestScore {
			res.BestScore = gen.Score()
		}

		if t.opts.FitnessThreshold > 0 && stats.BestFitness >= t.opts.FitnessThreshold {
			slog.Info("fitness threshold reached",
				"generation", gen.Index(),
				"best_fitness", stats.BestFitness,
				"threshold", t.opts.FitnessThreshold,
			)
			res.Solved = true
			break
		}
		if t.opts.Generations > 0 && n == t.opts.Generations-1 {
			break
		}

		if err := t.evolver.Advance(ctx); err != nil {
			return res, fmt.Errorf("advancing generation %d: %w", gen.Index(), err)
		}
	}

	path, err := t.saveWinner()
	if err != nil {
		return res, err
	}
	res.Champion = path

	if err := t.output.WriteHallOfFame(t.hof); err != nil {
		slog.Warn("writing hall of fame", "error", err)
	}
	return res, nil
}

// RunGeneration evaluates the evolver's current generation and records its stats.
func (t *Trainer) RunGeneration(ctx context.Context) (telemetry.GenerationStats, *Generation, error) {
	cands, err := t.evolver.Candidates()
	if err != nil {
		return telemetry.GenerationStats{}, nil, fmt.Errorf("building candidates: %w", err)
	}
	if len(cands) == 0 {
		return telemetry.GenerationStats{}, nil, errors.New("generation has no candidates")
	}

	gen := NewGeneration(t.rules, t.evolver.Generation(), cands, t.rng)
	gen.SetPerf(t.perf)

	start := time.Now()
	if err := t.play(ctx, gen); err != nil {
		return telemetry.GenerationStats{}, gen, err
	}

	fitness := make([]float64, len(cands))
	species := make(map[int]struct{})
	bestIdx := 0
	for i, c := range cands {
		fitness[i] = *c.Fitness
		species[c.Species] = struct{}{}
		if fitness[i] > fitness[bestIdx] {
			bestIdx = i
		}
	}

	stats := telemetry.ComputeGenerationStats(telemetry.GenerationStats{
		Generation: gen.Index(),
		Species:    len(species),
		Score:      gen.Score(),
		Ticks:      gen.Tick(),
		Reason:     gen.Reason().String(),
		Elapsed:    time.Since(start),
	}, fitness)

	if champ := gen.Champion(); champ != nil {
		if genome, err := t.evolver.Genome(champ.ID); err == nil {
			stats.ChampionNodes = len(genome.Nodes)
			stats.ChampionLinks = len(genome.Genes)
			t.saveChampion(gen, genome, champ)
		}
	}

	t.record(stats, gen, cands[bestIdx])
	return stats, gen, nil
}

// play steps the generation to termination, presenting frames when a
// presenter is attached.
func (t *Trainer) play(ctx context.Context, gen *Generation) error {
	if t.presenter == nil {
		for !gen.Done() {
			if gen.Tick()%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := gen.Step(); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		steps := t.opts.StepsPerFrame
		if pacer, ok := t.presenter.(Pacer); ok {
			steps = pacer.StepsPerFrame()
		}
		for i := 0; i < steps && !gen.Done(); i++ {
			if err := gen.Step(); err != nil {
				return err
			}
		}

		t.perf.RecordFrame()
		if err := t.presenter.Present(ctx, gen.Frame()); err != nil {
			return err
		}
		if gen.Done() {
			return nil
		}
	}
}

// record logs and writes per-generation telemetry.
func (t *Trainer) record(stats telemetry.GenerationStats, gen *Generation, best neural.Candidate) {
	slog.Info("generation", "stats", stats)

	perf := t.perf.Stats()
	if t.output != nil {
		if err := t.output.WriteGeneration(stats); err != nil {
			slog.Warn("writing generation stats", "error", err)
		}
		if err := t.output.WritePerf(perf, gen.Index()); err != nil {
			slog.Warn("writing perf stats", "error", err)
		}
	}
	slog.Debug("perf", "stats", perf)

	for _, b := range t.bookmarks.Check(stats, gen.Reason() == ReasonScoreThreshold) {
		b.LogBookmark()
		if err := t.output.WriteBookmark(b); err != nil {
			slog.Warn("writing bookmark", "error", err)
		}
	}

	entry := telemetry.HallEntry{
		Generation:  gen.Index(),
		CandidateID: best.ID,
		Species:     best.Species,
		Fitness:     *best.Fitness,
		Score:       gen.Score(),
	}
	if genome, err := t.evolver.Genome(best.ID); err == nil {
		entry.Nodes = len(genome.Nodes)
		entry.Links = len(genome.Genes)
	}
	t.hof.Consider(entry)
}

// saveChampion persists the bird that exceeded the score threshold and
// records it in champions.csv.
func (t *Trainer) saveChampion(gen *Generation, genome *genetics.Genome, champ *Champion) {
	rec := telemetry.ChampionRecord{
		Generation:  gen.Index(),
		CandidateID: champ.ID,
		Species:     champ.Species,
		Fitness:     champ.Fitness,
		Score:       gen.Score(),
		Nodes:       len(genome.Nodes),
		Links:       len(genome.Genes),
	}
	if t.opts.ChampionPath != "" {
		if err := neural.SaveGenome(t.opts.ChampionPath, genome); err != nil {
			slog.Error("saving champion", "path", t.opts.ChampionPath, "error", err)
		} else {
			rec.Path = t.opts.ChampionPath
			slog.Info("champion saved",
				"path", rec.Path,
				"candidate", champ.ID,
				"fitness", champ.Fitness,
			)
		}
	}
	if err := t.output.WriteChampion(rec); err != nil {
		slog.Warn("writing champion record", "error", err)
	}
}

// saveWinner overwrites the champion file with the fittest genome of the run.
func (t *Trainer) saveWinner() (string, error) {
	bester, ok := t.evolver.(Bester)
	if !ok || t.opts.ChampionPath == "" {
		return "", nil
	}
	genome, fitness := bester.Best()
	if genome == nil {
		return "", errors.New("no winner recorded")
	}
	if err := neural.SaveGenome(t.opts.ChampionPath, genome); err != nil {
		return "", fmt.Errorf("saving winner: %w", err)
	}
	slog.Info("winner saved", "path", t.opts.ChampionPath, "fitness", fitness, "nodes", len(genome.Nodes), "links", len(genome.Genes))
	return t.opts.ChampionPath, nil
}
