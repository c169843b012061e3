package graph

// DefaultWeight is the weight given to an edge when none is supplied.
const DefaultWeight = 1.0

// Edge is a relationship from a parent node to a child node. Parallel
// relationships between the same pair are collapsed into a single Edge and
// counted by its multiplicity.
type Edge struct {
	parent       string
	child        string
	multiplicity int
	typ          string
	weight       float64

	// transmission overrides the parent's rule for this edge when non-nil.
	transmission TransmissionRule
}

// EdgeOption configures an edge when it is first created.
type EdgeOption func(*edgeConfig)

type edgeConfig struct {
	typ          string
	weight       float64
	transmission TransmissionRule
}

func newEdgeConfig(opts []EdgeOption) edgeConfig {
	cfg := edgeConfig{weight: DefaultWeight}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// EdgeType tags the edge with a relationship type (e.g. "household").
func EdgeType(t string) EdgeOption {
	return func(c *edgeConfig) { c.typ = t }
}

// EdgeWeight sets the edge weight. The default is DefaultWeight.
func EdgeWeight(w float64) EdgeOption {
	return func(c *edgeConfig) { c.weight = w }
}

// EdgeTransmission binds a transmission rule to this edge only, taking
// precedence over the parent node's rule.
func EdgeTransmission(rule TransmissionRule) EdgeOption {
	return func(c *edgeConfig) { c.transmission = rule }
}

func newEdge(parent, child string, cfg edgeConfig) *Edge {
	return &Edge{
		parent:       parent,
		child:        child,
		multiplicity: 1,
		typ:          cfg.typ,
		weight:       cfg.weight,
		transmission: cfg.transmission,
	}
}

// Parent returns the name of the node that owns the edge.
func (e *Edge) Parent() string { return e.parent }

// Child returns the name of the node the edge points to.
func (e *Edge) Child() string { return e.child }

// Multiplicity returns the number of parallel relationships this edge stands for.
func (e *Edge) Multiplicity() int { return e.multiplicity }

// Type returns the relationship tag, or "" if none was given.
func (e *Edge) Type() string { return e.typ }

// Weight returns the edge weight.
func (e *Edge) Weight() float64 { return e.weight }

func (e *Edge) strengthen() { e.multiplicity++ }
