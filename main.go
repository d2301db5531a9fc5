package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pthm-cable/flappy/audio"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
	"github.com/pthm-cable/flappy/renderer"
	"github.com/pthm-cable/flappy/sprites"
	"github.com/pthm-cable/flappy/telemetry"
	"github.com/pthm-cable/flappy/tui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics or sound")
	useTUI := flag.Bool("tui", false, "Render in the terminal instead of a window")
	replay := flag.Bool("replay", false, "Replay the saved champion instead of training")
	generations := flag.Int("generations", -1, "Generations to train (-1 = use config, 0 = until solved)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	mute := flag.Bool("mute", false, "Disable sound effects")
	championPath := flag.String("champion", "", "Champion genome file (empty = use config)")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *generations >= 0 {
		cfg.Training.Generations = *generations
	}
	if *championPath != "" {
		cfg.Training.ChampionPath = *championPath
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Structured JSON logs on stdout; the terminal view owns the screen, so
	// its logs go to the output directory or nowhere.
	logOut := io.Writer(os.Stdout)
	if *useTUI && !*headless {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "flappy.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := run(cfg, runOptions{
		seed:      rngSeed,
		headless:  *headless,
		tui:       *useTUI,
		replay:    *replay,
		mute:      *mute,
		outputDir: *outputDir,
	}); err != nil {
		if errors.Is(err, game.ErrQuit) || errors.Is(err, context.Canceled) {
			slog.Info("stopped", "reason", err.Error())
			return
		}
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	seed      int64
	headless  bool
	tui       bool
	replay    bool
	mute      bool
	outputDir string
}

func run(cfg *config.Config, opts runOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheet, err := sprites.Load(cfg.Sprites.Dir, cfg.Sprites.Scale, cfg.Screen.Width, cfg.Screen.Height)
	if err != nil {
		return err
	}
	rules, err := game.NewRules(cfg, sheet)
	if err != nil {
		return err
	}

	output, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("writing config snapshot", "error", err)
	}

	v, closeView, err := openView(cfg, sheet, opts)
	if err != nil {
		return err
	}
	defer closeView()

	rng := rand.New(rand.NewSource(opts.seed))
	slog.Info("starting",
		"seed", opts.seed,
		"mode", modeName(opts),
		"generations", cfg.Training.Generations,
		"pop_size", cfg.NEAT.PopSize,
	)

	if opts.replay {
		return replayChampion(ctx, cfg, rules, v, rng)
	}

	neatOpts, err := neural.LoadNEATOptions(cfg.NEAT.OptionsFile, cfg.NEAT.PopSize)
	if err != nil {
		return err
	}
	ev, err := neural.NewNEATEvolver(neatOpts, neural.CreateSeedGenome(1, rng))
	if err != nil {
		return err
	}

	tr := game.NewTrainer(rules, ev, v.presenter, output, rng, game.TrainerOptions{
		Generations:      cfg.Training.Generations,
		FitnessThreshold: cfg.Training.FitnessThreshold,
		ChampionPath:     cfg.Training.ChampionPath,
		StepsPerFrame:    cfg.Render.StepsPerFrame,
		PerfWindow:       cfg.Telemetry.PerfWindow,
	})
	if v.window != nil {
		v.window.SetPerf(tr.Perf())
	}

	res, err := tr.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("training finished",
		"generations", res.Generations,
		"solved", res.Solved,
		"best_fitness", res.BestFitness,
		"best_score", res.BestScore,
		"champion", res.Champion,
	)

	if cfg.Training.ReplayAfter && v.presenter != nil && res.Champion != "" {
		return replayChampion(ctx, cfg, rules, v, rng)
	}
	return nil
}

// replayChampion flies the saved champion alone for one generation.
func replayChampion(ctx context.Context, cfg *config.Config, rules *game.Rules, v view, rng *rand.Rand) error {
	genome, err := neural.LoadGenome(cfg.Training.ChampionPath)
	if err != nil {
		return err
	}
	ev := neural.NewFixedEvolver(genome)

	tr := game.NewTrainer(rules, ev, v.presenter, nil, rng, game.TrainerOptions{
		Generations:   1,
		StepsPerFrame: cfg.Render.StepsPerFrame,
	})
	res, err := tr.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("replay finished", "score", res.BestScore, "fitness", ev.Fitness())
	return nil
}

// view bundles the presenters of the chosen mode.
type view struct {
	presenter game.Presenter // nil when headless
	window    *renderer.Window
}

func openView(cfg *config.Config, sheet *sprites.Sheet, opts runOptions) (view, func(), error) {
	if opts.headless {
		return view{}, func() {}, nil
	}

	var (
		v       view
		members game.Presenters
		closers []func()
	)
	birdW, birdH := sheet.BirdSize()
	pipeW, _ := sheet.PipeSize()

	if opts.tui {
		t, err := tui.Open(tui.Options{
			WorldWidth:       float64(cfg.Screen.Width),
			WorldHeight:      float64(cfg.Screen.Height),
			BirdWidth:        float64(birdW),
			BirdHeight:       float64(birdH),
			PipeWidth:        float64(pipeW),
			FrameInterval:    time.Second / time.Duration(max(cfg.Screen.TargetFPS, 1)),
			StepsPerFrame:    cfg.Render.StepsPerFrame,
			MaxStepsPerFrame: cfg.Render.MaxStepsPerFrame,
			DrawLines:        cfg.Render.DrawLines,
			SpeciesColors:    cfg.Render.SpeciesColors,
		})
		if err != nil {
			return view{}, nil, err
		}
		members = append(members, t)
		closers = append(closers, t.Close)
	} else {
		w := renderer.OpenWindow(sheet, renderer.WindowOptions{
			Width:            cfg.Screen.Width,
			Height:           cfg.Screen.Height,
			Title:            cfg.Screen.Title,
			TargetFPS:        cfg.Screen.TargetFPS,
			DrawLines:        cfg.Render.DrawLines,
			SpeciesColors:    cfg.Render.SpeciesColors,
			StepsPerFrame:    cfg.Render.StepsPerFrame,
			MaxStepsPerFrame: cfg.Render.MaxStepsPerFrame,
			Seed:             opts.seed,
		})
		v.window = w
		members = append(members, w)
		closers = append(closers, w.Close)
	}

	if cfg.Audio.Enabled && !opts.mute {
		sm := audio.NewSoundManager(cfg.Audio)
		if err := sm.Initialize(); err != nil {
			// Non-fatal, the game runs without sound
			slog.Warn("audio unavailable", "error", err)
		} else {
			members = append(members, sm)
			closers = append(closers, sm.Close)
		}
	}

	v.presenter = members
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return v, closeAll, nil
}

func modeName(opts runOptions) string {
	switch {
	case opts.headless:
		return "headless"
	case opts.tui:
		return "tui"
	default:
		return "window"
	}
}
