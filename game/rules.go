package game

import (
	"fmt"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/sprites"
	"github.com/pthm-cable/flappy/systems"
)

// Rules are the per-run constants shared by every generation.
type Rules struct {
	Flight   systems.Flight
	Pipes    systems.PipeGeometry
	Collider systems.Collider

	World   config.WorldConfig
	Fitness config.FitnessConfig

	GroundWidth    float64
	GroundVelocity float64

	BirdHeight     int // sprite height used by the floor test
	FloorInset     float64
	AnimationTime  int
	JumpThreshold  float64
	ScoreThreshold int
	MaxTicks       int // 0 disables the tick limit
}

// NewRules combines configuration with sprite dimensions and builds the
// configured collider.
func NewRules(cfg *config.Config, sheet *sprites.Sheet) (*Rules, error) {
	collider, err := systems.NewCollider(cfg.Sprites.Collision, sheet)
	if err != nil {
		return nil, fmt.Errorf("building collider: %w", err)
	}

	pipeW, pipeH := sheet.PipeSize()
	_, birdH := sheet.BirdSize()

	return &Rules{
		Flight:         systems.FlightFromConfig(cfg),
		Pipes:          systems.PipeGeometryFromConfig(cfg, pipeW, pipeH),
		Collider:       collider,
		World:          cfg.World,
		Fitness:        cfg.Fitness,
		GroundWidth:    float64(sheet.BaseWidth()),
		GroundVelocity: cfg.Ground.Velocity,
		BirdHeight:     birdH,
		FloorInset:     cfg.Bird.FloorInset,
		AnimationTime:  cfg.Bird.AnimationTime,
		JumpThreshold:  cfg.Training.JumpThreshold,
		ScoreThreshold: cfg.Training.ScoreThreshold,
		MaxTicks:       cfg.Training.MaxTicks,
	}, nil
}
