package graph

import "fmt"

// RecoveryPolicy decides, once per recovery tick, whether an infected node
// recovers. Recovery returns the node to the susceptible state.
type RecoveryPolicy interface {
	Recovers(n *Node, r Rand) bool
}

// RecoveryFunc adapts an ordinary function to RecoveryPolicy.
type RecoveryFunc func(n *Node, r Rand) bool

// Recovers calls f(n, r).
func (f RecoveryFunc) Recovers(n *Node, r Rand) bool { return f(n, r) }

// AlwaysRecover recovers every infected node on every recovery tick.
func AlwaysRecover() RecoveryPolicy {
	return RecoveryFunc(func(*Node, Rand) bool { return true })
}

// NeverRecover keeps infected nodes infected forever (SI dynamics).
func NeverRecover() RecoveryPolicy {
	return RecoveryFunc(func(*Node, Rand) bool { return false })
}

// RecoverWithProbability recovers each infected node with probability p per tick.
func RecoverWithProbability(p float64) (RecoveryPolicy, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrBadProbability, p)
	}
	return RecoveryFunc(func(_ *Node, r Rand) bool { return r.Float64() < p }), nil
}

// RecoveryFromProbability picks the policy for p: AlwaysRecover at 1,
// NeverRecover at 0, RecoverWithProbability otherwise.
func RecoveryFromProbability(p float64) (RecoveryPolicy, error) {
	switch p {
	case 1:
		return AlwaysRecover(), nil
	case 0:
		return NeverRecover(), nil
	default:
		return RecoverWithProbability(p)
	}
}
