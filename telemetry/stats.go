package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one finished generation.
type GenerationStats struct {
	Generation int    `csv:"generation"`
	Population int    `csv:"population"`
	Species    int    `csv:"species"`
	Score      int    `csv:"score"`
	Ticks      int    `csv:"ticks"`
	Reason     string `csv:"reason"`

	// Fitness distribution
	BestFitness float64 `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	StdFitness  float64 `csv:"std_fitness"`
	P10Fitness  float64 `csv:"p10_fitness"`
	P50Fitness  float64 `csv:"p50_fitness"`
	P90Fitness  float64 `csv:"p90_fitness"`

	// Champion network size (0 when there is no champion)
	ChampionNodes int `csv:"champion_nodes"`
	ChampionLinks int `csv:"champion_links"`

	Elapsed   time.Duration `csv:"-"`
	ElapsedMS int64         `csv:"elapsed_ms"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats calculates best, mean, population standard deviation and
// percentiles from fitness values.
func ComputeFitnessStats(values []float64) (best, mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	best = floats.Max(values)
	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return best, mean, std, p10, p50, p90
}

// ComputeGenerationStats fills the fitness distribution of s from values.
func ComputeGenerationStats(s GenerationStats, values []float64) GenerationStats {
	s.Population = len(values)
	s.BestFitness, s.MeanFitness, s.StdFitness, s.P10Fitness, s.P50Fitness, s.P90Fitness = ComputeFitnessStats(values)
	s.ElapsedMS = s.Elapsed.Milliseconds()
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Int("species", s.Species),
		slog.Int("score", s.Score),
		slog.Int("ticks", s.Ticks),
		slog.String("reason", s.Reason),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Float64("p50_fitness", s.P50Fitness),
		slog.Int("champion_nodes", s.ChampionNodes),
		slog.Int("champion_links", s.ChampionLinks),
		slog.Duration("elapsed", s.Elapsed),
	)
}
