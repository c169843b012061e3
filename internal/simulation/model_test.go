package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/graph"
)

func TestNewModelAndScenario(t *testing.T) {
	cfg := config.Default()
	seed := uint64(3)
	cfg.Simulation.RNGSeed = &seed
	cfg.Simulation.Directed = true
	cfg.Seeds.TopDegree = 2

	m := NewModel(cfg.Simulation)
	if !m.Directed || m.RNGSeed == nil || *m.RNGSeed != 3 || m.RecoveryProbability != 1 {
		t.Errorf("model = %+v, want directed, seeded, always-recover", m)
	}

	sc := NewScenario("cfg", cfg.Simulation, cfg.Seeds)
	want := Scenario{Name: "cfg", Seeds: SeedSpec{TopDegree: 2}, Ticks: 50, StopOnExtinction: true}
	if diff := cmp.Diff(want, sc, cmp.FilterPath(func(p cmp.Path) bool {
		return p.String() == "BeforeTick"
	}, cmp.Ignore())); diff != "" {
		t.Errorf("scenario (-want +got):\n%s", diff)
	}
}

func TestModel_Build(t *testing.T) {
	m := Model{Directed: true, RecoveryProbability: 0}
	g, err := m.Build(Path(3), 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !g.Directed() {
		t.Error("expected a directed graph")
	}
	last, _ := g.NodeByName("3")
	if last.Degree() != 0 {
		t.Errorf("directed path tail degree = %d, want 0", last.Degree())
	}
}

func TestModel_BuildRejectsBadRules(t *testing.T) {
	if _, err := (Model{Transmission: "gravity", RecoveryProbability: 1}).Build(Path(2), 0); !errors.Is(err, graph.ErrUnknownRule) {
		t.Errorf("err = %v, want ErrUnknownRule", err)
	}
	if _, err := (Model{RecoveryProbability: 3}).Build(Path(2), 0); !errors.Is(err, graph.ErrBadProbability) {
		t.Errorf("err = %v, want ErrBadProbability", err)
	}
}

func TestModel_SeededTrialsReproducible(t *testing.T) {
	seed := uint64(11)
	m := Model{RecoveryProbability: 0.3, RNGSeed: &seed}
	sc := Scenario{Seeds: SeedSpec{Random: 2}, Ticks: 15}

	run := func() Summary {
		s, err := m.SeedRunner().RunTrials(context.Background(), m.Builder(Complete(8)), sc, 4)
		if err != nil {
			t.Fatalf("RunTrials: %v", err)
		}
		return s
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("seeded trials differ (-first +second):\n%s", diff)
	}
}
