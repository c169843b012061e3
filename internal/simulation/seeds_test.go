package simulation

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/graphism/internal/graph"
)

// seedGraph: "hub" has degree 3, "b" and "a" degree 2, the rest degree 1.
func seedGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.FromPairs([]graph.Pair{
		{From: "hub", To: "a"},
		{From: "hub", To: "b"},
		{From: "hub", To: "c"},
		{From: "a", To: "d"},
		{From: "b", To: "e"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSelectSeeds(t *testing.T) {
	tests := []struct {
		name string
		spec SeedSpec
		want []string
	}{
		{"empty", SeedSpec{}, []string{}},
		{"names keep order", SeedSpec{Names: []string{"e", "a"}}, []string{"e", "a"}},
		{"duplicate names once", SeedSpec{Names: []string{"c", "c"}}, []string{"c"}},
		{"top degree ties by name", SeedSpec{TopDegree: 3}, []string{"hub", "a", "b"}},
		{"top degree skips named", SeedSpec{Names: []string{"hub"}, TopDegree: 1}, []string{"hub", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectSeeds(seedGraph(t), tt.spec, rand.New(rand.NewPCG(1, 1)))
			if err != nil {
				t.Fatalf("SelectSeeds: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("seeds (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectSeeds_RandomDistinctAndReproducible(t *testing.T) {
	g := seedGraph(t)
	spec := SeedSpec{Names: []string{"hub"}, Random: 4}

	first, err := SelectSeeds(g, spec, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("SelectSeeds: %v", err)
	}
	second, err := SelectSeeds(g, spec, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("SelectSeeds: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same rng produced different seeds (-first +second):\n%s", diff)
	}

	if len(first) != 5 || first[0] != "hub" {
		t.Fatalf("seeds = %v, want hub plus 4 random", first)
	}
	seen := make(map[string]bool)
	for _, name := range first {
		if seen[name] {
			t.Errorf("seed %s chosen twice", name)
		}
		seen[name] = true
		if _, ok := g.NodeByName(name); !ok {
			t.Errorf("seed %s is not a registered node", name)
		}
	}
}

func TestSelectSeeds_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec SeedSpec
		want error
	}{
		{"unknown name", SeedSpec{Names: []string{"zz"}}, graph.ErrNodeNotFound},
		{"too many random", SeedSpec{Names: []string{"a"}, Random: 6}, ErrNotEnoughNodes},
		{"too many top degree", SeedSpec{TopDegree: 7}, ErrNotEnoughNodes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectSeeds(seedGraph(t), tt.spec, rand.New(rand.NewPCG(1, 1)))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := SelectSeeds(seedGraph(t), SeedSpec{Random: -1}, nil); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		kind      string
		n         int
		wantEdges int
		wantErr   bool
	}{
		{"path", 5, 4, false},
		{"ring", 5, 5, false},
		{"star", 5, 4, false},
		{"complete", 5, 10, false},
		{"RING", 3, 3, false},
		{"ring", 2, 0, true},
		{"path", 1, 0, true},
		{"lattice", 4, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			records, err := Generate(tt.kind, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Generate(%q, %d) expected error", tt.kind, tt.n)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if len(records) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(records), tt.wantEdges)
			}
			g, err := graph.FromRecords(records)
			if err != nil {
				t.Fatal(err)
			}
			if g.NodeCount() != tt.n {
				t.Errorf("nodes = %d, want %d", g.NodeCount(), tt.n)
			}
		})
	}

	if _, err := Generate("lattice", 4); !errors.Is(err, ErrUnknownTopology) {
		t.Errorf("err = %v, want ErrUnknownTopology", err)
	}
}
