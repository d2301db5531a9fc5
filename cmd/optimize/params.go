package main

import (
	"github.com/yaricom/goNEAT/v4/neat"

	"github.com/pthm-cable/flappy/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config or NEAT option path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Weight mutation
			{Name: "weight_mut_power", Path: "neat.weight_mut_power", Min: 0.5, Max: 5.0, Default: 2.5},
			{Name: "mutate_link_weights_prob", Path: "neat.mutate_link_weights_prob", Min: 0.2, Max: 1.0, Default: 0.8},
			// Structure
			{Name: "mutate_add_node_prob", Path: "neat.mutate_add_node_prob", Min: 0.0, Max: 0.2, Default: 0.03},
			{Name: "mutate_add_link_prob", Path: "neat.mutate_add_link_prob", Min: 0.0, Max: 0.3, Default: 0.08},
			// Speciation and selection
			{Name: "compat_threshold", Path: "neat.compat_threshold", Min: 1.0, Max: 6.0, Default: 3.0},
			{Name: "survival_thresh", Path: "neat.survival_thresh", Min: 0.1, Max: 0.5, Default: 0.2},
			{Name: "mate_only_prob", Path: "neat.mate_only_prob", Min: 0.0, Max: 0.5, Default: 0.2},
			// Controller
			{Name: "jump_threshold", Path: "training.jump_threshold", Min: 0.0, Max: 0.9, Default: 0.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		v[i] = ps.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		normalized[i] = (raw[i] - ps.Min) / (ps.Max - ps.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		raw[i] = ps.Min + normalized[i]*(ps.Max-ps.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		clamped[i] = min(max(v[i], ps.Min), ps.Max)
	}
	return clamped
}

// Apply writes clamped parameter values into the NEAT options and game config.
// Order must match Specs order.
func (pv *ParamVector) Apply(cfg *config.Config, opts *neat.Options, values []float64) {
	c := pv.Clamp(values)

	opts.WeightMutPower = c[0]
	opts.MutateLinkWeightsProb = c[1]
	opts.MutateAddNodeProb = c[2]
	opts.MutateAddLinkProb = c[3]
	opts.CompatThreshold = c[4]
	opts.SurvivalThresh = c[5]
	opts.MateOnlyProb = c[6]
	cfg.Training.JumpThreshold = c[7]
}

// Extract reads the current parameter values from the NEAT options and game config.
func (pv *ParamVector) Extract(cfg *config.Config, opts *neat.Options) []float64 {
	return []float64{
		opts.WeightMutPower,
		opts.MutateLinkWeightsProb,
		opts.MutateAddNodeProb,
		opts.MutateAddLinkProb,
		opts.CompatThreshold,
		opts.SurvivalThresh,
		opts.MateOnlyProb,
		cfg.Training.JumpThreshold,
	}
}
