package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/edgelist"
	"github.com/nvandessel/graphism/internal/graph"
	"github.com/nvandessel/graphism/internal/logging"
	"github.com/nvandessel/graphism/internal/ratelimit"
	"github.com/nvandessel/graphism/internal/simulation"
	"github.com/nvandessel/graphism/internal/store"
)

// Limits on a single tool call.
const (
	maxTicks          = 10000
	maxTrials         = 1000
	maxGeneratedNodes = 500
	defaultTopNodes   = 10
)

// registerTools registers all graphism MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolSimulate,
		Description: "Run an SIS contagion over a stored, generated or inline graph and report per-tick infection counts",
	}, s.handleGraphismSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolStats,
		Description: "Report node, edge and degree statistics for a graph",
	}, s.handleGraphismStats)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolGraphs,
		Description: "List graphs saved in the edge store",
	}, s.handleGraphismGraphs)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ToolSave,
		Description: "Save an edge list to the edge store under a name, replacing any graph with that name",
	}, s.handleGraphismSave)
}

// graphSource names where a tool's edge records come from.
type graphSource struct {
	graph    string
	topology string
	size     int
	edges    []graph.Record
}

// loadRecords resolves src into edge records and a label describing them.
func (s *Server) loadRecords(ctx context.Context, src graphSource) ([]graph.Record, string, error) {
	given := 0
	for _, set := range []bool{src.graph != "", src.topology != "", len(src.edges) > 0} {
		if set {
			given++
		}
	}
	switch {
	case given == 0:
		return nil, "", fmt.Errorf("one of 'graph', 'topology' or 'edges' is required")
	case given > 1:
		return nil, "", fmt.Errorf("only one of 'graph', 'topology' or 'edges' may be given")
	}

	switch {
	case src.graph != "":
		records, err := s.store.LoadGraph(ctx, src.graph)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load graph %q: %w", src.graph, err)
		}
		return records, src.graph, nil

	case src.topology != "":
		if src.size > maxGeneratedNodes {
			return nil, "", fmt.Errorf("size must be at most %d, got %d", maxGeneratedNodes, src.size)
		}
		records, err := simulation.Generate(src.topology, src.size)
		if err != nil {
			return nil, "", err
		}
		return records, fmt.Sprintf("%s(%d)", strings.ToLower(src.topology), src.size), nil

	default:
		if err := edgelist.Validate(src.edges); err != nil {
			return nil, "", err
		}
		return src.edges, "inline", nil
	}
}

// handleGraphismSimulate implements the graphism_simulate tool.
func (s *Server) handleGraphismSimulate(ctx context.Context, req *sdk.CallToolRequest, args GraphismSimulateInput) (_ *sdk.CallToolResult, _ GraphismSimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		params := map[string]any{
			"graph": args.Graph, "topology": args.Topology, "size": args.Size,
			"edges": len(args.Edges), "directed": args.Directed, "seeds": len(args.Seeds),
			"random_seeds": args.RandomSeeds, "top_degree": args.TopDegree,
			"trials": args.Trials, "transmission": args.Transmission,
		}
		if args.Ticks != nil {
			params["ticks"] = *args.Ticks
		}
		if args.RNGSeed != nil {
			params["rng_seed"] = *args.RNGSeed
		}
		if args.RecoveryProbability != nil {
			params["recovery_probability"] = *args.RecoveryProbability
		}
		s.auditTool(ToolSimulate, start, retErr, sanitizeToolParams(params))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolSimulate); err != nil {
		return nil, GraphismSimulateOutput{}, err
	}

	records, label, err := s.loadRecords(ctx, args.source())
	if err != nil {
		return nil, GraphismSimulateOutput{}, err
	}

	simCfg, err := s.simulationConfig(args)
	if err != nil {
		return nil, GraphismSimulateOutput{}, err
	}

	seedsCfg := config.SeedsConfig{Names: args.Seeds, Random: args.RandomSeeds, TopDegree: args.TopDegree}
	if len(seedsCfg.Names) == 0 && seedsCfg.Random == 0 && seedsCfg.TopDegree == 0 {
		seedsCfg = s.settings.Seeds
	}
	scenario := simulation.NewScenario(label, simCfg, seedsCfg)
	if scenario.Seeds.IsZero() {
		scenario.Seeds = simulation.DefaultSeeds
	}

	model := simulation.NewModel(simCfg)
	model.Logger = s.logger
	model.InfectionHandler = logging.InfectionTracer(s.logger)
	model.RecoveryHandler = logging.RecoveryTracer(s.logger)

	g, err := model.Build(records, 0)
	if err != nil {
		return nil, GraphismSimulateOutput{}, fmt.Errorf("failed to build graph: %w", err)
	}

	out := GraphismSimulateOutput{Graph: label, Stats: g.Stats()}
	runner := model.SeedRunner(simulation.WithLogger(s.logger))

	if simCfg.Trials == 1 {
		res, err := runner.Run(ctx, g, scenario)
		if err != nil {
			return nil, GraphismSimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
		}
		out.Result = &res
		out.Message = describeResult(res)
		return nil, out, nil
	}

	summary, err := runner.RunTrials(ctx, model.Builder(records), scenario, simCfg.Trials)
	if err != nil {
		return nil, GraphismSimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
	}
	out.Summary = &summary
	out.Message = fmt.Sprintf("%d trials: mean peak %.2f (max %d), extinction rate %.2f, mean final infected %.2f",
		summary.Trials, summary.MeanPeak, summary.MaxPeak, summary.ExtinctionRate, summary.MeanFinal)
	return nil, out, nil
}

// simulationConfig overlays the call's arguments on the configured
// simulation defaults and validates the result.
func (s *Server) simulationConfig(args GraphismSimulateInput) (config.SimulationConfig, error) {
	sim := s.settings.Simulation
	if args.Directed {
		sim.Directed = true
	}
	if args.Ticks != nil {
		sim.Ticks = *args.Ticks
	}
	if args.Trials != 0 {
		sim.Trials = args.Trials
	}
	if args.RNGSeed != nil {
		seed := *args.RNGSeed
		sim.RNGSeed = &seed
	}
	if args.Transmission != "" {
		sim.Transmission = args.Transmission
		sim.TransmissionProbability = args.TransmissionProbability
	}
	if args.RecoveryProbability != nil {
		sim.RecoveryProbability = *args.RecoveryProbability
	}
	if args.StopOnExtinction != nil {
		sim.StopOnExtinction = *args.StopOnExtinction
	}

	check := *s.settings
	check.Simulation = sim
	if err := check.Validate(); err != nil {
		return sim, err
	}
	if sim.Ticks > maxTicks {
		return sim, fmt.Errorf("ticks must be at most %d, got %d", maxTicks, sim.Ticks)
	}
	if sim.Trials > maxTrials {
		return sim, fmt.Errorf("trials must be at most %d, got %d", maxTrials, sim.Trials)
	}
	return sim, nil
}

func describeResult(res simulation.Result) string {
	last := res.LastTick()
	msg := fmt.Sprintf("%d seeds, peak %d infected at tick %d, %d infected after tick %d",
		len(res.Seeds), res.PeakInfected, res.PeakTick, len(res.FinalInfected), last.Tick)
	if res.Extinct {
		msg += fmt.Sprintf(" (extinct at tick %d)", res.ExtinctTick)
	}
	return msg
}

// handleGraphismStats implements the graphism_stats tool.
func (s *Server) handleGraphismStats(ctx context.Context, req *sdk.CallToolRequest, args GraphismStatsInput) (_ *sdk.CallToolResult, _ GraphismStatsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolStats, start, retErr, sanitizeToolParams(map[string]any{
			"graph": args.Graph, "topology": args.Topology, "size": args.Size,
			"edges": len(args.Edges), "directed": args.Directed,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolStats); err != nil {
		return nil, GraphismStatsOutput{}, err
	}

	records, label, err := s.loadRecords(ctx, args.source())
	if err != nil {
		return nil, GraphismStatsOutput{}, err
	}

	g, err := graph.FromRecords(records, graph.WithDirected(args.Directed || s.settings.Simulation.Directed))
	if err != nil {
		return nil, GraphismStatsOutput{}, fmt.Errorf("failed to build graph: %w", err)
	}

	top := args.Top
	if top <= 0 {
		top = defaultTopNodes
	}

	return nil, GraphismStatsOutput{
		Graph:    label,
		Stats:    g.Stats(),
		TopNodes: topByDegree(g, top),
	}, nil
}

func topByDegree(g *graph.Graph, k int) []NodeDegree {
	nodes := g.TopByDegree(k)
	out := make([]NodeDegree, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeDegree{Name: n.Name(), Degree: n.Degree()})
	}
	return out
}

// handleGraphismGraphs implements the graphism_graphs tool.
func (s *Server) handleGraphismGraphs(ctx context.Context, req *sdk.CallToolRequest, args GraphismGraphsInput) (_ *sdk.CallToolResult, _ GraphismGraphsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolGraphs, start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolGraphs); err != nil {
		return nil, GraphismGraphsOutput{}, err
	}

	infos, err := s.store.ListGraphs(ctx)
	if err != nil {
		return nil, GraphismGraphsOutput{}, fmt.Errorf("failed to list graphs: %w", err)
	}
	if infos == nil {
		infos = []store.GraphInfo{}
	}

	return nil, GraphismGraphsOutput{Graphs: infos, Count: len(infos)}, nil
}

// handleGraphismSave implements the graphism_save tool.
func (s *Server) handleGraphismSave(ctx context.Context, req *sdk.CallToolRequest, args GraphismSaveInput) (_ *sdk.CallToolResult, _ GraphismSaveOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ToolSave, start, retErr, sanitizeToolParams(map[string]any{
			"graph": args.Name, "edges": len(args.Edges),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ToolSave); err != nil {
		return nil, GraphismSaveOutput{}, err
	}

	if strings.TrimSpace(args.Name) == "" {
		return nil, GraphismSaveOutput{}, fmt.Errorf("'name' parameter is required")
	}
	if len(args.Edges) == 0 {
		return nil, GraphismSaveOutput{}, errors.New("'edges' must contain at least one record")
	}
	if err := edgelist.Validate(args.Edges); err != nil {
		return nil, GraphismSaveOutput{}, err
	}

	if err := s.store.SaveGraph(ctx, args.Name, args.Edges); err != nil {
		return nil, GraphismSaveOutput{}, fmt.Errorf("failed to save graph: %w", err)
	}

	name := strings.TrimSpace(args.Name)
	return nil, GraphismSaveOutput{
		Name:    name,
		Edges:   len(args.Edges),
		Message: fmt.Sprintf("Saved graph %q with %d edge records", name, len(args.Edges)),
	}, nil
}
