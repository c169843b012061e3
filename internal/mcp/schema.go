// Package mcp provides an MCP (Model Context Protocol) server for graphism.
package mcp

import (
	"github.com/nvandessel/graphism/internal/graph"
	"github.com/nvandessel/graphism/internal/simulation"
	"github.com/nvandessel/graphism/internal/store"
)

// GraphismSimulateInput defines the input for graphism_simulate tool.
// Exactly one of Graph, Topology or Edges selects the graph.
type GraphismSimulateInput struct {
	Graph    string         `json:"graph,omitempty" jsonschema:"Name of a graph saved in the edge store"`
	Topology string         `json:"topology,omitempty" jsonschema:"Generated topology: path, ring, star or complete"`
	Size     int            `json:"size,omitempty" jsonschema:"Node count for the generated topology"`
	Edges    []graph.Record `json:"edges,omitempty" jsonschema:"Inline edge records with from_, to_ and optional type_ and weight_"`
	Directed bool           `json:"directed,omitempty" jsonschema:"Transmit parent to child only (default: false)"`

	Seeds       []string `json:"seeds,omitempty" jsonschema:"Names of nodes infected at tick 0"`
	RandomSeeds int      `json:"random_seeds,omitempty" jsonschema:"Number of additional seed nodes drawn at random"`
	TopDegree   int      `json:"top_degree,omitempty" jsonschema:"Number of additional seed nodes taken by highest degree"`

	Ticks                   *int     `json:"ticks,omitempty" jsonschema:"Number of propagate and recover rounds (default from config)"`
	Trials                  int      `json:"trials,omitempty" jsonschema:"Independent runs to aggregate (default from config)"`
	RNGSeed                 *uint64  `json:"rng_seed,omitempty" jsonschema:"Seed for reproducible runs"`
	Transmission            string   `json:"transmission,omitempty" jsonschema:"Transmission rule: default, weighted or constant"`
	TransmissionProbability float64  `json:"transmission_probability,omitempty" jsonschema:"Per-edge probability for the constant rule"`
	RecoveryProbability     *float64 `json:"recovery_probability,omitempty" jsonschema:"Per-tick recovery chance (0.0-1.0, default from config)"`
	StopOnExtinction        *bool    `json:"stop_on_extinction,omitempty" jsonschema:"End a run once no node is infected"`
}

// GraphismSimulateOutput defines the output for graphism_simulate tool.
// Result is set for a single trial, Summary for several.
type GraphismSimulateOutput struct {
	Graph   string              `json:"graph" jsonschema:"Where the graph came from"`
	Stats   graph.Stats         `json:"stats" jsonschema:"Structure of the graph before seeding"`
	Result  *simulation.Result  `json:"result,omitempty" jsonschema:"Per-tick record of a single run"`
	Summary *simulation.Summary `json:"summary,omitempty" jsonschema:"Aggregate over several runs"`
	Message string              `json:"message" jsonschema:"Human-readable result message"`
}

// GraphismStatsInput defines the input for graphism_stats tool.
type GraphismStatsInput struct {
	Graph    string         `json:"graph,omitempty" jsonschema:"Name of a graph saved in the edge store"`
	Topology string         `json:"topology,omitempty" jsonschema:"Generated topology: path, ring, star or complete"`
	Size     int            `json:"size,omitempty" jsonschema:"Node count for the generated topology"`
	Edges    []graph.Record `json:"edges,omitempty" jsonschema:"Inline edge records with from_, to_ and optional type_ and weight_"`
	Directed bool           `json:"directed,omitempty" jsonschema:"Transmit parent to child only (default: false)"`

	Top int `json:"top,omitempty" jsonschema:"Number of highest-degree nodes to list (default: 10)"`
}

func (in GraphismSimulateInput) source() graphSource {
	return graphSource{in.Graph, in.Topology, in.Size, in.Edges}
}

func (in GraphismStatsInput) source() graphSource {
	return graphSource{in.Graph, in.Topology, in.Size, in.Edges}
}

// NodeDegree pairs a node with its degree.
type NodeDegree struct {
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}

// GraphismStatsOutput defines the output for graphism_stats tool.
type GraphismStatsOutput struct {
	Graph    string       `json:"graph" jsonschema:"Where the graph came from"`
	Stats    graph.Stats  `json:"stats" jsonschema:"Node, edge and degree counts"`
	TopNodes []NodeDegree `json:"top_nodes" jsonschema:"Highest-degree nodes, ties broken by name"`
}

// GraphismGraphsInput defines the input for graphism_graphs tool.
type GraphismGraphsInput struct{}

// GraphismGraphsOutput defines the output for graphism_graphs tool.
type GraphismGraphsOutput struct {
	Graphs []store.GraphInfo `json:"graphs" jsonschema:"Graphs saved in the edge store"`
	Count  int               `json:"count" jsonschema:"Number of stored graphs"`
}

// GraphismSaveInput defines the input for graphism_save tool.
type GraphismSaveInput struct {
	Name  string         `json:"name" jsonschema:"Name to save the graph under"`
	Edges []graph.Record `json:"edges" jsonschema:"Edge records with from_, to_ and optional type_ and weight_"`
}

// GraphismSaveOutput defines the output for graphism_save tool.
type GraphismSaveOutput struct {
	Name    string `json:"name"`
	Edges   int    `json:"edges"`
	Message string `json:"message"`
}
