package neural

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// Candidate is one member of a generation as handed to the simulation: an id,
// its decision function and the accumulator its fitness is written into.
type Candidate struct {
	ID      int
	Species int
	Brain   Decider
	Fitness *float64
}

// Evolver produces generations of candidates and breeds the next generation
// from their accumulated fitness.
type Evolver interface {
	// Generation is the zero-based index of the current generation.
	Generation() int
	// Candidates returns the current generation in a stable order with every
	// fitness accumulator reset to zero.
	Candidates() ([]Candidate, error)
	// Advance replaces the current generation with its offspring.
	Advance(ctx context.Context) error
	// Genome resolves a candidate id of the current generation.
	Genome(id int) (*genetics.Genome, error)
}

// ErrUnknownCandidate is returned by Genome for ids outside the current generation.
var ErrUnknownCandidate = errors.New("unknown candidate")

// NEATEvolver runs a goNEAT population with the sequential epoch executor.
type NEATEvolver struct {
	opts       *neat.Options
	pop        *genetics.Population
	executor   genetics.PopulationEpochExecutor
	generation int

	best        *genetics.Genome
	bestFitness float64
}

// NewNEATEvolver spawns opts.PopSize organisms from the seed genome.
func NewNEATEvolver(opts *neat.Options, seed *genetics.Genome) (*NEATEvolver, error) {
	pop, err := genetics.NewPopulation(seed, opts)
	if err != nil {
		return nil, fmt.Errorf("creating population: %w", err)
	}
	return &NEATEvolver{
		opts:     opts,
		pop:      pop,
		executor: &genetics.SequentialPopulationEpochExecutor{},
	}, nil
}

// Generation implements Evolver.
func (e *NEATEvolver) Generation() int {
	return e.generation
}

// Candidates implements Evolver. Ids are indexes into the population's organisms.
func (e *NEATEvolver) Candidates() ([]Candidate, error) {
	cands := make([]Candidate, 0, len(e.pop.Organisms))
	for i, org := range e.pop.Organisms {
		brain, err := NewBrainController(org.Genotype)
		if err != nil {
			return nil, fmt.Errorf("organism %d: %w", i, err)
		}
		org.Fitness = 0
		species := 0
		if org.Species != nil {
			species = org.Species.Id
		}
		cands = append(cands, Candidate{
			ID:      i,
			Species: species,
			Brain:   brain,
			Fitness: &org.Fitness,
		})
	}
	return cands, nil
}

// Advance implements Evolver. The fittest organism seen so far is remembered
// before the population is replaced.
func (e *NEATEvolver) Advance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, org := range e.pop.Organisms {
		if e.best == nil || org.Fitness > e.bestFitness {
			e.best = org.Genotype
			e.bestFitness = org.Fitness
		}
	}

	neatCtx := neat.NewContext(ctx, e.opts)
	if err := e.executor.NextEpoch(neatCtx, e.generation, e.pop); err != nil {
		return fmt.Errorf("epoch %d: %w", e.generation, err)
	}
	e.generation++
	return nil
}

// Genome implements Evolver.
func (e *NEATEvolver) Genome(id int) (*genetics.Genome, error) {
	if id < 0 || id >= len(e.pop.Organisms) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCandidate, id)
	}
	return e.pop.Organisms[id].Genotype, nil
}

// Best returns the fittest genome of all completed generations, including the
// current one, and its fitness. It is nil before any fitness was recorded.
func (e *NEATEvolver) Best() (*genetics.Genome, float64) {
	best, fitness := e.best, e.bestFitness
	for _, org := range e.pop.Organisms {
		if best == nil || org.Fitness > fitness {
			best, fitness = org.Genotype, org.Fitness
		}
	}
	return best, fitness
}

// FixedEvolver replays a single genome every generation without learning.
type FixedEvolver struct {
	genome     *genetics.Genome
	fitness    float64
	generation int
}

// NewFixedEvolver wraps a stored genome.
func NewFixedEvolver(genome *genetics.Genome) *FixedEvolver {
	return &FixedEvolver{genome: genome}
}

// Generation implements Evolver.
func (e *FixedEvolver) Generation() int {
	return e.generation
}

// Candidates implements Evolver.
func (e *FixedEvolver) Candidates() ([]Candidate, error) {
	brain, err := NewBrainController(e.genome)
	if err != nil {
		return nil, err
	}
	e.fitness = 0
	return []Candidate{{ID: 0, Brain: brain, Fitness: &e.fitness}}, nil
}

// Advance implements Evolver.
func (e *FixedEvolver) Advance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.generation++
	return nil
}

// Genome implements Evolver.
func (e *FixedEvolver) Genome(id int) (*genetics.Genome, error) {
	if id != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCandidate, id)
	}
	return e.genome, nil
}

// Fitness returns the fitness accumulated by the last replay.
func (e *FixedEvolver) Fitness() float64 {
	return e.fitness
}
