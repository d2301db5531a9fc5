package neural

import (
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
)

// DefaultNEATOptions returns NEAT options tuned for a three-input, one-output controller.
func DefaultNEATOptions() *neat.Options {
	return &neat.Options{
		// Trait mutation stays off: the seed genome carries one shared trait
		TraitParamMutProb:     0.0,
		TraitMutationPower:    1.0,
		MutateRandomTraitProb: 0.0,
		MutateLinkTraitProb:   0.0,
		MutateNodeTraitProb:   0.0,

		// Weight mutation
		WeightMutPower:        2.5,
		MutateLinkWeightsProb: 0.8,
		MutateOnlyProb:        0.25,

		// Structural mutation rates
		MutateAddNodeProb:      0.03,
		MutateAddLinkProb:      0.08,
		MutateToggleEnableProb: 0.01,
		MutateGeneReenableProb: 0.01,
		NewLinkTries:           20,

		// Mating probabilities
		MateMultipointProb:    0.6,
		MateMultipointAvgProb: 0.4,
		MateSinglepointProb:   0.0,
		MateOnlyProb:          0.2,
		RecurOnlyProb:         0.0,
		InterspeciesMateRate:  0.001,

		// Speciation
		CompatThreshold: 3.0,
		DisjointCoeff:   1.0,
		ExcessCoeff:     1.0,
		MutdiffCoeff:    0.4,

		// Species management
		DropOffAge:      15,
		SurvivalThresh:  0.2,
		AgeSignificance: 1.0,

		PopSize: 100,

		NodeActivators:     []neatmath.NodeActivationType{neatmath.TanhActivation},
		NodeActivatorsProb: []float64{1.0},
	}
}

// LoadNEATOptions returns the defaults, or the options read from path when set,
// with PopSize overridden by popSize when positive.
func LoadNEATOptions(path string, popSize int) (*neat.Options, error) {
	opts := DefaultNEATOptions()
	if path != "" {
		fileOpts, err := neat.ReadNeatOptionsFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading NEAT options %s: %w", path, err)
		}
		opts = fileOpts
	}
	if popSize > 0 {
		opts.PopSize = popSize
	}
	if len(opts.NodeActivators) == 0 {
		opts.NodeActivators = []neatmath.NodeActivationType{neatmath.TanhActivation}
		opts.NodeActivatorsProb = []float64{1.0}
	}
	return opts, nil
}
