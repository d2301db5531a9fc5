// Package main provides CMA-ES optimization of the NEAT hyper-parameters and
// the jump threshold, minimising the generations needed to train a bird.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/sprites"
)

// formatDuration formats a duration as HhMMmSSs or MmSSs for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalRow is one line of optimize_log.csv.
type evalRow struct {
	Eval    int     `csv:"eval"`
	Fitness float64 `csv:"fitness"`
	Solved  int     `csv:"solved_seeds"`
	Params  string  `csv:"params"` // JSON object of the clamped values
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	maxGens := flag.Int("max-generations", 30, "Generation cap per training run")
	maxTicks := flag.Int("max-ticks", 20000, "Tick cap per generation")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Training runs log every generation; keep only problems.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	baseOpts, err := neural.LoadNEATOptions(baseCfg.NEAT.OptionsFile, baseCfg.NEAT.PopSize)
	if err != nil {
		log.Fatalf("failed to load NEAT options: %v", err)
	}
	sheet, err := sprites.Load(baseCfg.Sprites.Dir, baseCfg.Sprites.Scale, baseCfg.Screen.Width, baseCfg.Screen.Height)
	if err != nil {
		log.Fatalf("failed to load sprites: %v", err)
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, baseCfg, baseOpts, sheet, evalSeeds, *maxGens, *maxTicks)

	dim := params.Dim()
	initX := params.Normalize(params.Extract(baseCfg, baseOpts))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = append([]float64(nil), clamped...)
		}

		named := make(map[string]float64, len(clamped))
		for i, ps := range params.Specs {
			named[ps.Name] = clamped[i]
		}
		encoded, _ := json.Marshal(named)
		row := []evalRow{{Eval: evalCount, Fitness: fitness, Solved: evaluator.LastSolved(), Params: string(encoded)}}
		if evalCount == 1 {
			err = gocsv.Marshal(row, logFile)
		} else {
			err = gocsv.MarshalWithoutHeaders(row, logFile)
		}
		if err != nil {
			log.Printf("failed to log evaluation %d: %v", evalCount, err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: generations=%.2f solved=%d/%d (best=%.2f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, fitness, evaluator.LastSolved(), len(evalSeeds), bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generation cap: %d, ticks per generation: %d\n", *seeds, *maxGens, *maxTicks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.2f generations\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, ps := range params.Specs {
		fmt.Printf("  %s (%s): %s\n", ps.Name, ps.Path, strconv.FormatFloat(bestParams[i], 'f', 6, 64))
	}

	bestCfg, _ := config.Load(*configPath)
	bestOpts := *baseOpts
	params.Apply(bestCfg, &bestOpts, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	optsOutPath := filepath.Join(*outputDir, "best_neat.json")
	if data, err := json.MarshalIndent(&bestOpts, "", "  "); err != nil {
		log.Printf("failed to marshal NEAT options: %v", err)
	} else if err := os.WriteFile(optsOutPath, data, 0644); err != nil {
		log.Printf("failed to write NEAT options: %v", err)
	} else {
		fmt.Printf("NEAT options saved to: %s\n", optsOutPath)
	}

	if hof := evaluator.BestHallOfFame(); hof != nil {
		hofPath := filepath.Join(*outputDir, "hall_of_fame.json")
		hofData, err := json.MarshalIndent(hof, "", "  ")
		if err != nil {
			log.Printf("failed to marshal hall of fame: %v", err)
		} else if err := os.WriteFile(hofPath, hofData, 0644); err != nil {
			log.Printf("failed to write hall of fame: %v", err)
		} else {
			fmt.Printf("Hall of fame saved to: %s\n", hofPath)
		}
	}
}
