package graph

import (
	"math/rand/v2"
	"sort"
)

// Rand is the source of uniform draws in [0, 1) used for transmission and
// recovery decisions. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// globalRand draws from the math/rand/v2 top-level source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Resolver looks up registered nodes by name. Adjacency stores neighbor
// names only, so propagation resolves them through the owning registry.
type Resolver interface {
	NodeByName(name string) (*Node, bool)
}

// Node is a uniquely named vertex. It owns its outgoing edges, keyed by
// neighbor name, and carries the rules used when it is infected.
type Node struct {
	name         string
	edges        map[string]*Edge
	transmission TransmissionRule
	recovery     RecoveryPolicy
	rng          Rand
}

// NodeOption configures a Node at construction.
type NodeOption func(*Node)

// WithNodeTransmission binds the node's transmission rule.
func WithNodeTransmission(rule TransmissionRule) NodeOption {
	return func(n *Node) {
		if rule != nil {
			n.transmission = rule
		}
	}
}

// WithNodeRecovery binds the node's recovery policy.
func WithNodeRecovery(policy RecoveryPolicy) NodeOption {
	return func(n *Node) {
		if policy != nil {
			n.recovery = policy
		}
	}
}

// WithNodeRand sets the source used for the node's draws.
func WithNodeRand(r Rand) NodeOption {
	return func(n *Node) {
		if r != nil {
			n.rng = r
		}
	}
}

// NewNode creates a node with no edges. Unless overridden it uses
// DefaultTransmission, AlwaysRecover and the global random source.
func NewNode(name string, opts ...NodeOption) *Node {
	n := &Node{
		name:         name,
		edges:        make(map[string]*Edge),
		transmission: DefaultTransmission,
		recovery:     AlwaysRecover(),
		rng:          globalRand{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the node's identity within its graph.
func (n *Node) Name() string { return n.name }

// Edges returns a copy of the adjacency map, neighbor name to edge.
func (n *Node) Edges() map[string]*Edge {
	out := make(map[string]*Edge, len(n.edges))
	for k, v := range n.edges {
		out[k] = v
	}
	return out
}

// Edge returns the edge to neighbor, if any.
func (n *Node) Edge(neighbor string) (*Edge, bool) {
	e, ok := n.edges[neighbor]
	return e, ok
}

// Neighbors returns the names of the node's children, sorted.
func (n *Node) Neighbors() []string {
	names := make([]string, 0, len(n.edges))
	for name := range n.edges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Degree is the number of outgoing relationships: the sum of the
// multiplicities of the node's edges, not the count of distinct neighbors.
func (n *Node) Degree() int {
	degree := 0
	for _, e := range n.edges {
		degree += e.multiplicity
	}
	return degree
}

// AddChild adds an edge to child, or strengthens the existing one.
// Options only apply when the edge is created; a repeated pair keeps the
// type and weight it was created with.
func (n *Node) AddChild(child *Node, opts ...EdgeOption) *Edge {
	if e, ok := n.edges[child.name]; ok {
		e.strengthen()
		return e
	}
	e := newEdge(n.name, child.name, newEdgeConfig(opts))
	n.edges[child.name] = e
	return e
}

// TransmissionProbability resolves the probability of this node infecting
// child: the edge's own rule if it has one, otherwise the node's rule.
// The result is clamped to [0, 1].
func (n *Node) TransmissionProbability(child *Node) float64 {
	rule := n.transmission
	if e, ok := n.edges[child.name]; ok && e.transmission != nil {
		rule = e.transmission
	}
	return clampProbability(rule.Probability(n, child))
}

// Infect hands the node to h.
func (n *Node) Infect(h Handler) {
	h.Handle(n)
}

// Propagate draws once per edge, in neighbor-name order, and infects the
// neighbor through h on success. Neighbors that r cannot resolve are
// skipped.
func (n *Node) Propagate(h Handler, r Resolver) {
	for _, name := range n.Neighbors() {
		child, ok := r.NodeByName(name)
		if !ok {
			continue
		}
		if n.rng.Float64() < n.TransmissionProbability(child) {
			child.Infect(h)
		}
	}
}

// Recover hands the node to h if its recovery policy says it recovers.
func (n *Node) Recover(h Handler) {
	if n.recovery.Recovers(n, n.rng) {
		h.Handle(n)
	}
}
