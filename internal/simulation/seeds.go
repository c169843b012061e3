package simulation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nvandessel/graphism/internal/graph"
)

// ErrNotEnoughNodes is returned when a seed spec asks for more distinct
// nodes than the graph can supply.
var ErrNotEnoughNodes = errors.New("not enough nodes for seed selection")

// SeedSpec selects the initially infected nodes. The three selectors are
// combined: explicit names first, then the TopDegree highest-degree nodes
// not already chosen, then Random further nodes drawn from the rest.
type SeedSpec struct {
	Names     []string `json:"names,omitempty" yaml:"names,omitempty"`
	Random    int      `json:"random,omitempty" yaml:"random,omitempty"`
	TopDegree int      `json:"top_degree,omitempty" yaml:"top_degree,omitempty"`
}

// Validate rejects negative counts.
func (s SeedSpec) Validate() error {
	if s.Random < 0 || s.TopDegree < 0 {
		return fmt.Errorf("seed counts must be >= 0, got random=%d top_degree=%d", s.Random, s.TopDegree)
	}
	return nil
}

// IsZero reports whether the spec selects nothing.
func (s SeedSpec) IsZero() bool {
	return len(s.Names) == 0 && s.Random == 0 && s.TopDegree == 0
}

// SelectSeeds resolves spec against g and returns the chosen node names in
// selection order. Unknown names fail with graph.ErrNodeNotFound; a name
// listed twice is kept once.
func SelectSeeds(g *graph.Graph, spec SeedSpec, rng graph.Rand) ([]string, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	chosen := make(map[string]bool)
	seeds := make([]string, 0, len(spec.Names)+spec.TopDegree+spec.Random)
	pick := func(name string) {
		if !chosen[name] {
			chosen[name] = true
			seeds = append(seeds, name)
		}
	}

	for _, name := range spec.Names {
		if _, ok := g.NodeByName(name); !ok {
			return nil, fmt.Errorf("seed %q: %w", name, graph.ErrNodeNotFound)
		}
		pick(name)
	}

	if spec.TopDegree > 0 {
		ranked := remaining(g, chosen)
		if len(ranked) < spec.TopDegree {
			return nil, fmt.Errorf("%w: top_degree=%d, %d candidates", ErrNotEnoughNodes, spec.TopDegree, len(ranked))
		}
		// Highest degree first; ties broken by name.
		sort.SliceStable(ranked, func(i, j int) bool {
			di, dj := ranked[i].Degree(), ranked[j].Degree()
			if di != dj {
				return di > dj
			}
			return ranked[i].Name() < ranked[j].Name()
		})
		for _, n := range ranked[:spec.TopDegree] {
			pick(n.Name())
		}
	}

	if spec.Random > 0 {
		pool := remaining(g, chosen)
		if len(pool) < spec.Random {
			return nil, fmt.Errorf("%w: random=%d, %d candidates", ErrNotEnoughNodes, spec.Random, len(pool))
		}
		for _, n := range sample(pool, spec.Random, rng) {
			pick(n.Name())
		}
	}

	return seeds, nil
}

// remaining returns the nodes not yet chosen, sorted by name.
func remaining(g *graph.Graph, chosen map[string]bool) []*graph.Node {
	out := make([]*graph.Node, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		if !chosen[n.Name()] {
			out = append(out, n)
		}
	}
	return out
}

// sample draws k distinct nodes with a partial Fisher-Yates shuffle.
func sample(pool []*graph.Node, k int, rng graph.Rand) []*graph.Node {
	for i := 0; i < k; i++ {
		j := i + int(rng.Float64()*float64(len(pool)-i))
		if j >= len(pool) {
			j = len(pool) - 1
		}
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// DefaultSeeds is used by front ends when no selector is configured.
var DefaultSeeds = SeedSpec{Random: 1}
