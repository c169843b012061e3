package mcp

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/graph"
	"github.com/nvandessel/graphism/internal/ratelimit"
	"github.com/nvandessel/graphism/internal/simulation"
	"github.com/nvandessel/graphism/internal/store"
)

func intPtr(n int) *int { return &n }
func floatPtr(f float64) *float64 { return &f }
func uint64Ptr(n uint64) *uint64 { return &n }

func TestHandleGraphismSimulate_InlineEdges(t *testing.T) {
	server := newTestServer(t)

	result, output, err := server.handleGraphismSimulate(testCtx(), nil, GraphismSimulateInput{
		Edges: []graph.Record{{From: "a", To: "b"}, {From: "b", To: "c"}},
		Seeds: []string{"a"},
		Ticks: intPtr(5),
	})
	if err != nil {
		t.Fatalf("handleGraphismSimulate failed: %v", err)
	}
	if result != nil {
		t.Error("Expected nil result (SDK auto-populates)")
	}
	if output.Graph != "inline" {
		t.Errorf("Graph = %q, want inline", output.Graph)
	}
	if output.Stats.Nodes != 3 || output.Stats.Infected != 0 {
		t.Errorf("Stats = %+v, want 3 nodes before seeding", output.Stats)
	}
	if output.Result == nil || output.Summary != nil {
		t.Fatalf("single trial should set Result only, got %+v", output)
	}

	// a has one neighbour, so b is infected on tick 1; every infected node
	// then recovers and the run stops.
	res := output.Result
	wantTicks := []simulation.TickStat{
		{Tick: 0, Infected: 1, Susceptible: 2, NewInfections: 1},
		{Tick: 1, Infected: 0, Susceptible: 3, NewInfections: 1, Recoveries: 2, Transmissions: 1},
	}
	if diff := cmp.Diff(wantTicks, res.Ticks); diff != "" {
		t.Errorf("ticks (-want +got):\n%s", diff)
	}
	if !res.Extinct || res.ExtinctTick != 1 {
		t.Errorf("Extinct = %v at %d, want true at 1", res.Extinct, res.ExtinctTick)
	}
	if !strings.Contains(output.Message, "extinct at tick 1") {
		t.Errorf("Message = %q", output.Message)
	}
}

func TestHandleGraphismSimulate_DirectedTopology(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGraphismSimulate(testCtx(), nil, GraphismSimulateInput{
		Topology:            "path",
		Size:                4,
		Directed:            true,
		Seeds:               []string{"1"},
		Ticks:               intPtr(3),
		RecoveryProbability: floatPtr(0),
	})
	if err != nil {
		t.Fatalf("handleGraphismSimulate failed: %v", err)
	}
	if output.Graph != "path(4)" {
		t.Errorf("Graph = %q, want path(4)", output.Graph)
	}
	if !output.Stats.Directed {
		t.Error("expected a directed graph")
	}

	res := output.Result
	var infected []int
	for _, ts := range res.Ticks {
		infected = append(infected, ts.Infected)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, infected); diff != "" {
		t.Errorf("infected per tick (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, res.FinalInfected); diff != "" {
		t.Errorf("final infected (-want +got):\n%s", diff)
	}
	if res.PeakInfected != 4 || res.PeakTick != 3 || res.Extinct {
		t.Errorf("peak %d at %d, extinct %v; want 4 at 3, not extinct", res.PeakInfected, res.PeakTick, res.Extinct)
	}
}

func TestHandleGraphismSimulate_Trials(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGraphismSimulate(testCtx(), nil, GraphismSimulateInput{
		Topology:            "complete",
		Size:                6,
		RandomSeeds:         2,
		Ticks:               intPtr(8),
		Trials:              5,
		RNGSeed:             uint64Ptr(2),
		RecoveryProbability: floatPtr(0.5),
	})
	if err != nil {
		t.Fatalf("handleGraphismSimulate failed: %v", err)
	}
	if output.Result != nil || output.Summary == nil {
		t.Fatalf("several trials should set Summary only, got %+v", output)
	}
	sum := output.Summary
	if sum.Trials != 5 || len(sum.Results) != 5 {
		t.Errorf("Trials = %d with %d results, want 5", sum.Trials, len(sum.Results))
	}
	if len(sum.MeanInfected) != 9 {
		t.Errorf("len(MeanInfected) = %d, want 9", len(sum.MeanInfected))
	}
	if sum.MeanInfected[0] != 2 {
		t.Errorf("MeanInfected[0] = %v, want 2 seeds", sum.MeanInfected[0])
	}
	if !strings.HasPrefix(output.Message, "5 trials") {
		t.Errorf("Message = %q", output.Message)
	}
}

func TestHandleGraphismSimulate_Reproducible(t *testing.T) {
	server := newTestServer(t)
	args := GraphismSimulateInput{
		Topology:            "complete",
		Size:                10,
		RandomSeeds:         1,
		Ticks:               intPtr(12),
		RNGSeed:             uint64Ptr(42),
		RecoveryProbability: floatPtr(0.3),
		StopOnExtinction:    new(bool),
	}

	_, first, err := server.handleGraphismSimulate(testCtx(), nil, args)
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := server.handleGraphismSimulate(testCtx(), nil, args)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("seeded runs differ (-first +second):\n%s", diff)
	}
	if got := len(first.Result.Ticks); got != 13 {
		t.Errorf("recorded %d ticks, want 13 with StopOnExtinction off", got)
	}
}

func TestHandleGraphismSimulate_StoredGraph(t *testing.T) {
	server := newTestServer(t)

	_, _, err := server.handleGraphismSave(testCtx(), nil, GraphismSaveInput{
		Name:  "household",
		Edges: []graph.Record{{From: "ann", To: "bo"}, {From: "bo", To: "cy"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	_, output, err := server.handleGraphismSimulate(testCtx(), nil, GraphismSimulateInput{
		Graph: "household",
		Seeds: []string{"bo"},
		Ticks: intPtr(1),
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if output.Graph != "household" || output.Stats.Nodes != 3 {
		t.Errorf("output = %+v, want household with 3 nodes", output)
	}
	if diff := cmp.Diff([]string{"bo"}, output.Result.Seeds); diff != "" {
		t.Errorf("seeds (-want +got):\n%s", diff)
	}
}

func TestHandleGraphismSimulate_SeedDefaults(t *testing.T) {
	t.Run("falls back to DefaultSeeds", func(t *testing.T) {
		server := newTestServer(t)
		_, output, err := server.handleGraphismSimulate(testCtx(), nil, GraphismSimulateInput{
			Topology: "star", Size: 5, Ticks: intPtr(0),
		})
		if err != nil {
			t.Fatal(err)
		}
		if got := len(output.Result.Seeds); got != simulation.DefaultSeeds.Random {
			t.Errorf("got %d seeds, want %d", got, simulation.DefaultSeeds.Random)
		}
	})

	t.Run("uses configured seeds", func(t *testing.T) {
		settings := config.Default()
		settings.Seeds.Names = []string{"3"}
		server := newTestServer(t, func(c *Config) { c.Settings = settings })

		_, output, err := server.handleGraphismSimulate(testCtx(), nil, GraphismSimulateInput{
			Topology: "star", Size: 5, Ticks: intPtr(0),
		})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"3"}, output.Result.Seeds); diff != "" {
			t.Errorf("seeds (-want +got):\n%s", diff)
		}
	})
}

func TestHandleGraphismSimulate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    GraphismSimulateInput
		wantErr error
		wantMsg string
	}{
		{
			name:    "no graph source",
			args:    GraphismSimulateInput{},
			wantMsg: "is required",
		},
		{
			name:    "two graph sources",
			args:    GraphismSimulateInput{Graph: "g", Topology: "path", Size: 3},
			wantMsg: "only one of",
		},
		{
			name:    "unknown stored graph",
			args:    GraphismSimulateInput{Graph: "missing"},
			wantErr: store.ErrGraphNotFound,
		},
		{
			name:    "edge without endpoint",
			args:    GraphismSimulateInput{Edges: []graph.Record{{From: "a"}}},
			wantErr: graph.ErrMissingEndpoint,
		},
		{
			name:    "unknown seed",
			args:    GraphismSimulateInput{Topology: "path", Size: 3, Seeds: []string{"99"}},
			wantErr: graph.ErrNodeNotFound,
		},
		{
			name:    "unknown topology",
			args:    GraphismSimulateInput{Topology: "lattice", Size: 3},
			wantErr: simulation.ErrUnknownTopology,
		},
		{
			name:    "topology too large",
			args:    GraphismSimulateInput{Topology: "complete", Size: maxGeneratedNodes + 1},
			wantMsg: "size must be at most",
		},
		{
			name:    "recovery out of range",
			args:    GraphismSimulateInput{Topology: "path", Size: 3, RecoveryProbability: floatPtr(1.5)},
			wantMsg: "recovery_probability",
		},
		{
			name:    "unknown transmission",
			args:    GraphismSimulateInput{Topology: "path", Size: 3, Transmission: "gravity"},
			wantMsg: "invalid transmission",
		},
		{
			name:    "too many ticks",
			args:    GraphismSimulateInput{Topology: "path", Size: 3, Ticks: intPtr(maxTicks + 1)},
			wantMsg: "ticks must be at most",
		},
		{
			name:    "negative ticks",
			args:    GraphismSimulateInput{Topology: "path", Size: 3, Ticks: intPtr(-1)},
			wantMsg: "ticks must be non-negative",
		},
		{
			name:    "too many trials",
			args:    GraphismSimulateInput{Topology: "path", Size: 3, Trials: maxTrials + 1},
			wantMsg: "trials must be at most",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t)
			_, _, err := server.handleGraphismSimulate(testCtx(), nil, tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestHandleGraphismSimulate_RateLimited(t *testing.T) {
	settings := config.Default()
	settings.MCP.RateLimit = 0.0001
	settings.MCP.Burst = 1
	server := newTestServer(t, func(c *Config) { c.Settings = settings })

	args := GraphismSimulateInput{Topology: "path", Size: 3, Ticks: intPtr(1)}
	if _, _, err := server.handleGraphismSimulate(testCtx(), nil, args); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, _, err := server.handleGraphismSimulate(testCtx(), nil, args)
	if !errors.Is(err, ratelimit.ErrRateLimited) {
		t.Errorf("second call err = %v, want ErrRateLimited", err)
	}

	// Other tools keep their own buckets.
	if _, _, err := server.handleGraphismGraphs(testCtx(), nil, GraphismGraphsInput{}); err != nil {
		t.Errorf("graphs call should not be limited: %v", err)
	}
}

func TestHandleGraphismStats(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGraphismStats(testCtx(), nil, GraphismStatsInput{
		Topology: "star",
		Size:     5,
		Top:      2,
	})
	if err != nil {
		t.Fatalf("handleGraphismStats failed: %v", err)
	}
	if output.Graph != "star(5)" {
		t.Errorf("Graph = %q, want star(5)", output.Graph)
	}
	if output.Stats.Nodes != 5 || output.Stats.MaxDegree != 4 {
		t.Errorf("Stats = %+v, want 5 nodes with max degree 4", output.Stats)
	}

	want := []NodeDegree{{Name: "1", Degree: 4}, {Name: "2", Degree: 1}}
	if diff := cmp.Diff(want, output.TopNodes); diff != "" {
		t.Errorf("top nodes (-want +got):\n%s", diff)
	}
}

func TestHandleGraphismStats_DefaultTop(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGraphismStats(testCtx(), nil, GraphismStatsInput{Topology: "path", Size: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(output.TopNodes) != defaultTopNodes {
		t.Errorf("len(TopNodes) = %d, want %d", len(output.TopNodes), defaultTopNodes)
	}
	// Interior nodes have degree 2; ties are broken by name.
	if output.TopNodes[0].Name != "10" || output.TopNodes[0].Degree != 2 {
		t.Errorf("TopNodes[0] = %+v, want {10 2}", output.TopNodes[0])
	}
}

func TestHandleGraphismGraphs(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGraphismGraphs(testCtx(), nil, GraphismGraphsInput{})
	if err != nil {
		t.Fatalf("handleGraphismGraphs failed: %v", err)
	}
	if output.Graphs == nil || output.Count != 0 {
		t.Errorf("empty store should give a non-nil empty list, got %+v", output)
	}

	for _, name := range []string{"beta", "alpha"} {
		if _, _, err := server.handleGraphismSave(testCtx(), nil, GraphismSaveInput{
			Name:  name,
			Edges: []graph.Record{{From: "x", To: "y"}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	_, output, err = server.handleGraphismGraphs(testCtx(), nil, GraphismGraphsInput{})
	if err != nil {
		t.Fatal(err)
	}
	if output.Count != 2 || output.Graphs[0].Name != "alpha" || output.Graphs[1].Edges != 1 {
		t.Errorf("graphs = %+v", output.Graphs)
	}
}

func TestHandleGraphismSave(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleGraphismSave(testCtx(), nil, GraphismSaveInput{
		Name:  "  office  ",
		Edges: []graph.Record{{From: "a", To: "b", Type: "desk"}, {From: "b", To: "c"}},
	})
	if err != nil {
		t.Fatalf("handleGraphismSave failed: %v", err)
	}
	if output.Name != "office" || output.Edges != 2 {
		t.Errorf("output = %+v", output)
	}

	records, err := server.store.LoadGraph(testCtx(), "office")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Type != "desk" {
		t.Errorf("stored records = %+v", records)
	}
}

func TestHandleGraphismSave_Errors(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		args GraphismSaveInput
	}{
		{"blank name", GraphismSaveInput{Name: " ", Edges: []graph.Record{{From: "a", To: "b"}}}},
		{"no edges", GraphismSaveInput{Name: "g"}},
		{"bad edge", GraphismSaveInput{Name: "g", Edges: []graph.Record{{To: "b"}}}},
		{"negative weight", GraphismSaveInput{Name: "g", Edges: []graph.Record{{From: "a", To: "b", Weight: floatPtr(-1)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := server.handleGraphismSave(testCtx(), nil, tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
