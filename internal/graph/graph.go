// Package graph implements a discrete-time contagion model over a weighted
// multigraph. A Graph owns every Node by name, keeps an index of the
// infected ones, and advances the process one tick at a time: Propagate
// lets each infected node try to infect its neighbors, Recover lets each
// infected node try to return to the susceptible state.
//
// A Graph is not safe for concurrent use. Both tick operations snapshot the
// infected set before doing any work, so nodes infected during a tick do
// not act until the next one.
package graph

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
)

// Graph is the node registry and propagation driver.
type Graph struct {
	nodes    map[string]*Node
	infected map[string]*Node

	directed     bool
	transmission TransmissionRule
	recovery     RecoveryPolicy
	rng          Rand
	logger       *slog.Logger

	infection *infectionProcedure
	recoverer *recoveryProcedure
}

// Option configures a Graph at construction.
type Option func(*Graph)

// WithDirected sets whether edges transmit only parent→child (true) or in
// both directions (false, the default).
func WithDirected(directed bool) Option {
	return func(g *Graph) { g.directed = directed }
}

// WithTransmission sets the rule bound to nodes the graph creates.
func WithTransmission(rule TransmissionRule) Option {
	return func(g *Graph) {
		if rule != nil {
			g.transmission = rule
		}
	}
}

// WithRecoveryPolicy sets the policy bound to nodes the graph creates.
func WithRecoveryPolicy(policy RecoveryPolicy) Option {
	return func(g *Graph) {
		if policy != nil {
			g.recovery = policy
		}
	}
}

// WithRand sets the random source shared by nodes the graph creates.
func WithRand(r Rand) Option {
	return func(g *Graph) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithSeed makes all draws reproducible from seed.
func WithSeed(seed uint64) Option {
	return func(g *Graph) { g.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithLogger sets the logger for structural events.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithInfectionHandler installs h as the caller-visible infection hook.
func WithInfectionHandler(h Handler) Option {
	return func(g *Graph) { g.infection.handler = h }
}

// WithRecoveryHandler installs h as the caller-visible recovery hook.
func WithRecoveryHandler(h Handler) Option {
	return func(g *Graph) { g.recoverer.handler = h }
}

// New creates an empty undirected graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:        make(map[string]*Node),
		infected:     make(map[string]*Node),
		transmission: DefaultTransmission,
		recovery:     AlwaysRecover(),
		rng:          globalRand{},
		logger:       slog.New(slog.DiscardHandler),
	}
	g.infection = &infectionProcedure{index: g.infected}
	g.recoverer = &recoveryProcedure{index: g.infected}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromPairs builds a graph from positional (parent, child) pairs.
func FromPairs(pairs []Pair, opts ...Option) (*Graph, error) {
	return FromRecords(PairsToRecords(pairs), opts...)
}

// FromRecords builds a graph from keyword edge records. The first
// malformed record aborts construction.
func FromRecords(records []Record, opts ...Option) (*Graph, error) {
	g := New(opts...)
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("edge record %d: %w", i, err)
		}
		if _, err := g.AddEdgeByNodeSequence(r.From, r.To, r.Options()...); err != nil {
			return nil, fmt.Errorf("edge record %d: %w", i, err)
		}
	}
	return g, nil
}

// Directed reports whether edges transmit one way only.
func (g *Graph) Directed() bool { return g.directed }

// NodeByName returns the registered node with the given name.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// AddNode registers n. If a node with the same name is already registered,
// the existing instance is returned and n is ignored.
func (g *Graph) AddNode(n *Node) *Node {
	if existing, ok := g.nodes[n.Name()]; ok {
		return existing
	}
	g.nodes[n.Name()] = n
	g.logger.Debug("node registered", "node", n.Name())
	return n
}

// ensureNode resolves name, creating the node with the graph's rules if needed.
func (g *Graph) ensureNode(name string) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	return g.AddNode(NewNode(name,
		WithNodeTransmission(g.transmission),
		WithNodeRecovery(g.recovery),
		WithNodeRand(g.rng),
	))
}

// AddEdgeByNodeSequence resolves or creates the named nodes and adds an
// edge between them. In an undirected graph the reverse edge is wired too,
// so that propagation can cross the relationship either way. It returns the
// parent→child edge.
func (g *Graph) AddEdgeByNodeSequence(parent, child string, opts ...EdgeOption) (*Edge, error) {
	if parent == "" || child == "" {
		return nil, fmt.Errorf("%w (from_=%q, to_=%q)", ErrMissingEndpoint, parent, child)
	}
	p := g.ensureNode(parent)
	c := g.ensureNode(child)
	return g.link(p, c, opts), nil
}

// Link is the result of AddEdge: the registered endpoints and their edge.
type Link struct {
	Parent *Node
	Edge   *Edge
	Child  *Node
}

// AddEdge registers both nodes (resolving them to any registered instance
// with the same name) and adds an edge from one to the other.
func (g *Graph) AddEdge(from, to *Node, opts ...EdgeOption) (Link, error) {
	if from == nil || to == nil {
		return Link{}, ErrNilNode
	}
	p := g.AddNode(from)
	c := g.AddNode(to)
	return Link{Parent: p, Edge: g.link(p, c, opts), Child: c}, nil
}

func (g *Graph) link(p, c *Node, opts []EdgeOption) *Edge {
	e := p.AddChild(c, opts...)
	if !g.directed && p != c {
		c.AddChild(p, opts...)
	}
	g.logger.Debug("edge added",
		"from", p.Name(),
		"to", c.Name(),
		"multiplicity", e.Multiplicity(),
		"directed", g.directed)
	return e
}

// SetInfection installs h as the caller-visible infection hook. The graph
// always indexes the node first; h may be nil.
func (g *Graph) SetInfection(h Handler) {
	g.infection.handler = h
}

// SetRecovery installs h as the caller-visible recovery hook. The graph
// always removes the node from the infected index first; h may be nil.
func (g *Graph) SetRecovery(h Handler) {
	g.recoverer.handler = h
}

// InfectionHandler returns the installed infection hook, or nil.
func (g *Graph) InfectionHandler() Handler { return g.infection.handler }

// RecoveryHandler returns the installed recovery hook, or nil.
func (g *Graph) RecoveryHandler() Handler { return g.recoverer.handler }

// InfectSeeds infects each seed through the graph's infection procedure.
// Seeds are resolved by name, so every seed must be registered.
func (g *Graph) InfectSeeds(seeds ...*Node) error {
	resolved := make([]*Node, 0, len(seeds))
	for _, s := range seeds {
		if s == nil {
			return ErrNilNode
		}
		n, ok := g.nodes[s.Name()]
		if !ok {
			return fmt.Errorf("seed %q: %w", s.Name(), ErrNodeNotFound)
		}
		resolved = append(resolved, n)
	}
	for _, n := range resolved {
		n.Infect(g.infection)
	}
	return nil
}

// InfectSeedsByName is InfectSeeds for node names.
func (g *Graph) InfectSeedsByName(names ...string) error {
	seeds := make([]*Node, 0, len(names))
	for _, name := range names {
		n, ok := g.nodes[name]
		if !ok {
			return fmt.Errorf("seed %q: %w", name, ErrNodeNotFound)
		}
		seeds = append(seeds, n)
	}
	return g.InfectSeeds(seeds...)
}

// Nodes returns every registered node, sorted by name.
func (g *Graph) Nodes() []*Node { return sortedNodes(g.nodes) }

// Infected returns the currently infected nodes, sorted by name.
func (g *Graph) Infected() []*Node { return sortedNodes(g.infected) }

// Susceptible returns the registered nodes that are not infected, sorted by
// name. It is recomputed on every call.
func (g *Graph) Susceptible() []*Node {
	out := make([]*Node, 0, len(g.nodes)-len(g.infected))
	for name, n := range g.nodes {
		if _, ok := g.infected[name]; !ok {
			out = append(out, n)
		}
	}
	sortByName(out)
	return out
}

// NodeCount returns the number of registered nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// InfectedCount returns the number of infected nodes.
func (g *Graph) InfectedCount() int { return len(g.infected) }

// IsInfected reports whether the named node is infected.
func (g *Graph) IsInfected(name string) bool {
	_, ok := g.infected[name]
	return ok
}

// Propagate runs one transmission pass. Each node infected at the start of
// the pass draws against each of its edges once.
func (g *Graph) Propagate() {
	for _, n := range g.Infected() {
		n.Propagate(g.infection, g)
	}
}

// Recover runs one recovery pass over the nodes infected at its start.
func (g *Graph) Recover() {
	for _, n := range g.Infected() {
		n.Recover(g.recoverer)
	}
}

// Tick advances the process by one round: Propagate, then Recover.
func (g *Graph) Tick() {
	g.Propagate()
	g.Recover()
}

// Stats summarises the graph's structure and current state.
type Stats struct {
	Nodes         int     `json:"nodes"`
	Edges         int     `json:"edges"`
	Relationships int     `json:"relationships"`
	MaxDegree     int     `json:"max_degree"`
	MeanDegree    float64 `json:"mean_degree"`
	Infected      int     `json:"infected"`
	Susceptible   int     `json:"susceptible"`
	Directed      bool    `json:"directed"`
}

// Stats computes a snapshot. Edges counts stored Edge values, so an
// undirected relationship counts once per direction.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes:       len(g.nodes),
		Infected:    len(g.infected),
		Susceptible: len(g.nodes) - len(g.infected),
		Directed:    g.directed,
	}
	for _, n := range g.nodes {
		s.Edges += len(n.edges)
		d := n.Degree()
		s.Relationships += d
		if d > s.MaxDegree {
			s.MaxDegree = d
		}
	}
	if s.Nodes > 0 {
		s.MeanDegree = float64(s.Relationships) / float64(s.Nodes)
	}
	return s
}

// TopByDegree returns up to k nodes by descending degree, ties broken by name.
func (g *Graph) TopByDegree(k int) []*Node {
	nodes := g.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Degree() > nodes[j].Degree()
	})
	if k >= 0 && len(nodes) > k {
		nodes = nodes[:k]
	}
	return nodes
}

func sortedNodes(m map[string]*Node) []*Node {
	out := make([]*Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sortByName(out)
	return out
}

func sortByName(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].name < nodes[j].name })
}

// Names returns the names of nodes in order.
func Names(nodes []*Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return names
}
