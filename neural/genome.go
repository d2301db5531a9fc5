package neural

import (
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// BrainInputs is the number of sensory inputs: bird y, distance to the gap's
// upper edge and distance to the gap's lower edge.
const BrainInputs = 3

// BrainOutputs is the number of outputs: the jump signal.
const BrainOutputs = 1

// biasNodeID follows the input node ids.
const biasNodeID = BrainInputs + 1

// CreateSeedGenome creates the starting genome: every input and the bias
// fully connected to a tanh output, no hidden nodes.
func CreateSeedGenome(id int, rng *rand.Rand) *genetics.Genome {
	trait := neat.NewTrait()
	trait.Id = 1

	nodes := make([]*network.NNode, 0, BrainInputs+1+BrainOutputs)

	// Input nodes (IDs 1 to BrainInputs)
	for i := 1; i <= BrainInputs; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}

	bias := network.NewNNode(biasNodeID, network.BiasNeuron)
	bias.ActivationType = neatmath.LinearActivation
	nodes = append(nodes, bias)

	// Output nodes follow the bias
	sources := nodes
	outputs := make([]*network.NNode, 0, BrainOutputs)
	for i := 1; i <= BrainOutputs; i++ {
		node := network.NewNNode(biasNodeID+i, network.OutputNeuron)
		node.ActivationType = neatmath.TanhActivation
		outputs = append(outputs, node)
	}

	genes := make([]*genetics.Gene, 0, len(sources)*BrainOutputs)
	innovNum := int64(1)
	for _, out := range outputs {
		for _, in := range sources {
			weight := rng.Float64()*2 - 1 // [-1, 1]
			gene := genetics.NewGeneWithTrait(
				trait,
				weight,
				in,
				out,
				false,
				innovNum,
				0,
			)
			genes = append(genes, gene)
			innovNum++
		}
	}

	return genetics.NewGenome(id, []*neat.Trait{trait}, append(nodes, outputs...), genes)
}
