// Package config provides configuration loading and access for the game and trainer.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Bird      BirdConfig      `yaml:"bird"`
	Pipe      PipeConfig      `yaml:"pipe"`
	Ground    GroundConfig    `yaml:"ground"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Training  TrainingConfig  `yaml:"training"`
	NEAT      NEATConfig      `yaml:"neat"`
	Sprites   SpritesConfig   `yaml:"sprites"`
	Render    RenderConfig    `yaml:"render"`
	Audio     AudioConfig     `yaml:"audio"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// WorldConfig holds play-field geometry.
type WorldConfig struct {
	Floor        float64 `yaml:"floor"`
	Ceiling      float64 `yaml:"ceiling"`
	SpawnX       float64 `yaml:"spawn_x"`
	SpawnY       float64 `yaml:"spawn_y"`
	PipeSpawnX   float64 `yaml:"pipe_spawn_x"`
	PipeRespawnX float64 `yaml:"pipe_respawn_x"`
}

// BirdConfig holds the flight model constants.
type BirdConfig struct {
	JumpVelocity     float64 `yaml:"jump_velocity"`
	Gravity          float64 `yaml:"gravity"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`
	RiseBoost        float64 `yaml:"rise_boost"`
	MaxRotation      float64 `yaml:"max_rotation"`
	MinRotation      float64 `yaml:"min_rotation"`
	RotationVelocity float64 `yaml:"rotation_velocity"`
	TiltMargin       float64 `yaml:"tilt_margin"`
	AnimationTime    int     `yaml:"animation_time"`
	FloorInset       float64 `yaml:"floor_inset"`
}

// PipeConfig holds obstacle parameters.
type PipeConfig struct {
	Gap       float64 `yaml:"gap"`
	Velocity  float64 `yaml:"velocity"`
	MinHeight int     `yaml:"min_height"`
	MaxHeight int     `yaml:"max_height"` // exclusive
}

// GroundConfig holds the scrolling floor parameters.
type GroundConfig struct {
	Velocity float64 `yaml:"velocity"`
}

// FitnessConfig holds the reward shaping applied by the population controller.
type FitnessConfig struct {
	AliveReward  float64 `yaml:"alive_reward"`  // per tick survived
	PassReward   float64 `yaml:"pass_reward"`   // per pipe passed, survivors only
	CrashPenalty float64 `yaml:"crash_penalty"` // on hitting a pipe
}

// TrainingConfig holds generation loop parameters.
type TrainingConfig struct {
	Generations      int     `yaml:"generations"`
	ScoreThreshold   int     `yaml:"score_threshold"`   // generation ends when score exceeds this
	FitnessThreshold float64 `yaml:"fitness_threshold"` // training ends when best fitness reaches this (0 = off)
	JumpThreshold    float64 `yaml:"jump_threshold"`
	MaxTicks         int     `yaml:"max_ticks"`
	ChampionPath     string  `yaml:"champion_path"`
	ReplayAfter      bool    `yaml:"replay_after"`
}

// NEATConfig holds overrides for the evolutionary algorithm.
type NEATConfig struct {
	PopSize     int    `yaml:"pop_size"`
	OptionsFile string `yaml:"options_file"`
}

// SpritesConfig holds sprite sourcing and collision settings.
type SpritesConfig struct {
	Dir       string `yaml:"dir"`
	Scale     int    `yaml:"scale"`
	Collision string `yaml:"collision"`
}

// RenderConfig holds presentation settings.
type RenderConfig struct {
	DrawLines        bool `yaml:"draw_lines"`
	SpeciesColors    bool `yaml:"species_colors"` // tint birds by species at startup
	StepsPerFrame    int  `yaml:"steps_per_frame"`
	MaxStepsPerFrame int  `yaml:"max_steps_per_frame"`
}

// AudioConfig holds sound effect settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	UseMasks  bool    // Sprites.Collision == "mask"
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.Pipe.MaxHeight <= c.Pipe.MinHeight {
		return fmt.Errorf("pipe: max_height (%d) must exceed min_height (%d)", c.Pipe.MaxHeight, c.Pipe.MinHeight)
	}
	if c.Sprites.Scale < 1 {
		return fmt.Errorf("sprites: scale must be >= 1, got %d", c.Sprites.Scale)
	}
	switch c.Sprites.Collision {
	case "mask", "box":
	default:
		return fmt.Errorf("sprites: unknown collision mode %q (want mask or box)", c.Sprites.Collision)
	}
	if c.NEAT.PopSize < 1 {
		return fmt.Errorf("neat: pop_size must be >= 1, got %d", c.NEAT.PopSize)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.UseMasks = c.Sprites.Collision == "mask"

	if c.Render.StepsPerFrame < 1 {
		c.Render.StepsPerFrame = 1
	}
	if c.Render.MaxStepsPerFrame < c.Render.StepsPerFrame {
		c.Render.MaxStepsPerFrame = c.Render.StepsPerFrame
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
