// Package neural wraps the goNEAT library: genomes, phenotype networks and the
// evolutionary driver that turns fitness-annotated genomes into the next generation.
package neural

import (
	"errors"
	"fmt"
	"math"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// ErrBadOutput is returned when a network produces output that cannot drive a bird.
var ErrBadOutput = errors.New("malformed network output")

// Decider maps an observation to action signals.
type Decider interface {
	Decide(inputs []float64) ([]float64, error)
}

// BrainController wraps a goNEAT network for runtime evaluation.
type BrainController struct {
	Genome  *genetics.Genome
	network *network.Network
}

// NewBrainController creates a controller from a genome.
func NewBrainController(genome *genetics.Genome) (*BrainController, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome: %w", err)
	}

	return &BrainController{
		Genome:  genome,
		network: phenotype,
	}, nil
}

// Decide loads BrainInputs sensor values (bias is implicit), activates the
// network to full depth and returns its outputs.
func (b *BrainController) Decide(inputs []float64) ([]float64, error) {
	if len(inputs) != BrainInputs {
		return nil, fmt.Errorf("expected %d inputs, got %d", BrainInputs, len(inputs))
	}

	if err := b.network.LoadSensors(inputs); err != nil {
		return nil, fmt.Errorf("failed to load sensors: %w", err)
	}

	depth, err := b.network.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = 5 // Fallback for simple networks
	}

	for i := 0; i < depth; i++ {
		if _, err := b.network.Activate(); err != nil {
			return nil, fmt.Errorf("activation failed: %w", err)
		}
	}

	outputs := append([]float64(nil), b.network.ReadOutputs()...)

	// Networks are stateless between ticks
	if _, err := b.network.Flush(); err != nil {
		return nil, fmt.Errorf("flush failed: %w", err)
	}

	if err := CheckOutputs(outputs, BrainOutputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// NodeCount returns the number of nodes in the network.
func (b *BrainController) NodeCount() int {
	return b.network.NodeCount()
}

// LinkCount returns the number of links (connections) in the network.
func (b *BrainController) LinkCount() int {
	return b.network.LinkCount()
}

// CheckOutputs verifies an output vector has at least want finite values.
func CheckOutputs(outputs []float64, want int) error {
	if len(outputs) < want {
		return fmt.Errorf("%w: got %d outputs, want %d", ErrBadOutput, len(outputs), want)
	}
	for i, v := range outputs[:want] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: output %d is %v", ErrBadOutput, i, v)
		}
	}
	return nil
}
