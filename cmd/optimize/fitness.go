package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/yaricom/goNEAT/v4/neat"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/sprites"
	"github.com/pthm-cable/flappy/telemetry"
)

// FitnessEvaluator runs headless training runs and scores how quickly they
// reach the fitness threshold.
type FitnessEvaluator struct {
	params         *ParamVector
	baseConfig     *config.Config
	baseOptions    *neat.Options
	sheet          *sprites.Sheet
	seeds          []int64
	maxGenerations int
	maxTicks       int

	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastSolved     int // seeds solved in the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Every run is capped at
// maxGenerations generations of at most maxTicks ticks.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, baseOpts *neat.Options, sheet *sprites.Sheet, seeds []int64, maxGenerations, maxTicks int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:         params,
		baseConfig:     baseCfg,
		baseOptions:    baseOpts,
		sheet:          sheet,
		seeds:          seeds,
		maxGenerations: maxGenerations,
		maxTicks:       maxTicks,
		bestFitness:    math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastSolved returns how many seeds of the most recent evaluation were solved.
func (fe *FitnessEvaluator) LastSolved() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSolved
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	solved     bool
	hallOfFame *telemetry.HallOfFame
	err        error
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// mean number of generations needed to reach the fitness threshold.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runTraining(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	solved := 0
	bestSeed := math.Inf(1)
	var bestHoF *telemetry.HallOfFame
	for _, r := range results {
		if r.err != nil {
			// A broken run scores worst possible
			total += float64(fe.maxGenerations + 1)
			continue
		}
		total += r.fitness
		if r.solved {
			solved++
		}
		if r.fitness < bestSeed {
			bestSeed = r.fitness
			bestHoF = r.hallOfFame
		}
	}
	avg := total / float64(len(fe.seeds))

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		fe.bestHallOfFame = bestHoF
	}
	fe.lastSolved = solved
	fe.mu.Unlock()

	return avg
}

// runTraining executes one headless training run.
func (fe *FitnessEvaluator) runTraining(x []float64, seed int64) seedResult {
	cfg := fe.copyConfig()
	opts := *fe.baseOptions
	fe.params.Apply(cfg, &opts, x)
	cfg.Training.MaxTicks = fe.maxTicks

	rules, err := game.NewRules(cfg, fe.sheet)
	if err != nil {
		return seedResult{err: err}
	}

	rng := rand.New(rand.NewSource(seed))
	ev, err := neural.NewNEATEvolver(&opts, neural.CreateSeedGenome(1, rng))
	if err != nil {
		return seedResult{err: fmt.Errorf("seed %d: %w", seed, err)}
	}

	tr := game.NewTrainer(rules, ev, nil, nil, rng, game.TrainerOptions{
		Generations:      fe.maxGenerations,
		FitnessThreshold: cfg.Training.FitnessThreshold,
	})
	res, err := tr.Run(context.Background())
	if err != nil {
		return seedResult{err: fmt.Errorf("seed %d: %w", seed, err)}
	}

	return seedResult{
		fitness:    scoreRun(res, fe.maxGenerations, cfg.Training.FitnessThreshold),
		solved:     res.Solved,
		hallOfFame: tr.HallOfFame(),
	}
}

// scoreRun is the generations used when solved. Unsolved runs score past
// the cap by how far their best fitness fell short of the threshold, so
// near misses still rank above flat failures.
func scoreRun(res game.Result, maxGenerations int, threshold float64) float64 {
	if res.Solved {
		return float64(res.Generations)
	}
	shortfall := 1.0
	if threshold > 0 {
		shortfall = clamp01(1 - res.BestFitness/threshold)
	}
	return float64(maxGenerations) + shortfall
}

// copyConfig creates a copy of the base config. Config holds only value
// fields, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
