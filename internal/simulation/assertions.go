package simulation

import (
	"testing"

	"github.com/nvandessel/graphism/internal/graph"
)

// AssertPartition asserts that every registered node is either infected or
// susceptible, never both, and that the infected index holds only
// registered nodes.
func AssertPartition(t *testing.T, g *graph.Graph) {
	t.Helper()
	infected := g.Infected()
	susceptible := g.Susceptible()
	if len(infected)+len(susceptible) != g.NodeCount() {
		t.Errorf("AssertPartition: infected %d + susceptible %d != nodes %d",
			len(infected), len(susceptible), g.NodeCount())
	}
	for _, n := range infected {
		registered, ok := g.NodeByName(n.Name())
		if !ok || registered != n {
			t.Errorf("AssertPartition: infected node %s is not the registered instance", n.Name())
		}
	}
	for _, n := range susceptible {
		if g.IsInfected(n.Name()) {
			t.Errorf("AssertPartition: node %s is both infected and susceptible", n.Name())
		}
	}
}

// AssertTickAccounting asserts that each tick's counts add up: infected plus
// susceptible is constant, and the infected count moves by exactly new
// infections minus recoveries.
func AssertTickAccounting(t *testing.T, result Result, nodes int) {
	t.Helper()
	for i, st := range result.Ticks {
		if st.Tick != i {
			t.Errorf("AssertTickAccounting: tick index %d holds tick %d", i, st.Tick)
		}
		if st.Infected+st.Susceptible != nodes {
			t.Errorf("AssertTickAccounting: tick %d: infected %d + susceptible %d != %d",
				st.Tick, st.Infected, st.Susceptible, nodes)
		}
		if i == 0 {
			continue
		}
		prev := result.Ticks[i-1].Infected
		if got := prev + st.NewInfections - st.Recoveries; got != st.Infected {
			t.Errorf("AssertTickAccounting: tick %d: %d + %d - %d = %d, want %d",
				st.Tick, prev, st.NewInfections, st.Recoveries, got, st.Infected)
		}
		if st.NewInfections > st.Transmissions {
			t.Errorf("AssertTickAccounting: tick %d: new infections %d exceed transmissions %d",
				st.Tick, st.NewInfections, st.Transmissions)
		}
	}
}

// AssertExtinctBy asserts the run died out no later than tick.
func AssertExtinctBy(t *testing.T, result Result, tick int) {
	t.Helper()
	if !result.Extinct {
		t.Errorf("AssertExtinctBy: run never went extinct (final infected %v)", result.FinalInfected)
		return
	}
	if result.ExtinctTick > tick {
		t.Errorf("AssertExtinctBy: extinct at tick %d, want <= %d", result.ExtinctTick, tick)
	}
}

// AssertPeakAtLeast asserts the infected count reached at least min.
func AssertPeakAtLeast(t *testing.T, result Result, min int) {
	t.Helper()
	if result.PeakInfected < min {
		t.Errorf("AssertPeakAtLeast: peak %d at tick %d, want >= %d", result.PeakInfected, result.PeakTick, min)
	}
}
