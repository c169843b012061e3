package graph

import (
	"fmt"
	"math"
)

// TransmissionRule computes the per-tick probability that an infected
// parent infects a given child. Implementations should return a value in
// [0, 1]; out-of-range values are clamped when drawn against.
type TransmissionRule interface {
	Probability(parent, child *Node) float64
}

// TransmissionFunc adapts an ordinary function to TransmissionRule.
type TransmissionFunc func(parent, child *Node) float64

// Probability calls f(parent, child).
func (f TransmissionFunc) Probability(parent, child *Node) float64 {
	return f(parent, child)
}

// DefaultTransmission is multiplicity(parent→child) / degree(parent).
// A parent with degree 0, or with no edge to child, transmits with
// probability 0.
var DefaultTransmission TransmissionRule = TransmissionFunc(multiplicityShare)

func multiplicityShare(parent, child *Node) float64 {
	edge, ok := parent.Edge(child.Name())
	if !ok {
		return 0.0
	}
	degree := parent.Degree()
	if degree == 0 {
		return 0.0
	}
	return float64(edge.Multiplicity()) / float64(degree)
}

// WeightedTransmission is the weighted analogue of DefaultTransmission:
// weight×multiplicity of the edge divided by the sum of weight×multiplicity
// over all of the parent's edges.
var WeightedTransmission TransmissionRule = TransmissionFunc(weightedShare)

func weightedShare(parent, child *Node) float64 {
	edge, ok := parent.Edge(child.Name())
	if !ok {
		return 0.0
	}
	var total float64
	for _, e := range parent.edges {
		total += e.weight * float64(e.multiplicity)
	}
	if total <= 0 {
		return 0.0
	}
	return edge.weight * float64(edge.multiplicity) / total
}

// ConstantTransmission returns a rule that always yields p.
func ConstantTransmission(p float64) (TransmissionRule, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrBadProbability, p)
	}
	return TransmissionFunc(func(_, _ *Node) float64 { return p }), nil
}

// clampProbability maps NaN and negatives to 0 and values above 1 to 1.
func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Transmission rule names accepted by TransmissionByName.
const (
	TransmissionDefault  = "default"
	TransmissionWeighted = "weighted"
	TransmissionConstant = "constant"
)

// TransmissionByName resolves a rule name. p is used only by "constant".
// An empty name selects DefaultTransmission.
func TransmissionByName(name string, p float64) (TransmissionRule, error) {
	switch name {
	case "", TransmissionDefault:
		return DefaultTransmission, nil
	case TransmissionWeighted:
		return WeightedTransmission, nil
	case TransmissionConstant:
		return ConstantTransmission(p)
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s, %s, %s)", ErrUnknownRule, name,
			TransmissionDefault, TransmissionWeighted, TransmissionConstant)
	}
}
