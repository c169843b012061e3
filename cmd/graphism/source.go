package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/edgelist"
	"github.com/nvandessel/graphism/internal/graph"
	"github.com/nvandessel/graphism/internal/simulation"
	"github.com/spf13/cobra"
)

// addSourceFlags registers the flags that choose which graph a command
// reads. Exactly one of --edges, --graph or --topology must be set.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("edges", "", "Edge list file (- for stdin, needs --format)")
	cmd.Flags().String("format", "", "Edge list format: csv, tsv, json, jsonl, yaml, toml (default from extension)")
	cmd.Flags().String("graph", "", "Name of a graph saved with 'graphism import'")
	cmd.Flags().String("topology", "", "Generate a graph: "+strings.Join(simulation.Topologies, ", "))
	cmd.Flags().Int("size", 10, "Node count for --topology")
	cmd.Flags().Bool("directed", false, "Transmit parent to child only")
}

// loadRecords resolves the source flags into edge records and a label.
func loadRecords(ctx context.Context, cmd *cobra.Command, cfg *config.GraphismConfig) ([]graph.Record, string, error) {
	edgesPath, _ := cmd.Flags().GetString("edges")
	formatName, _ := cmd.Flags().GetString("format")
	graphName, _ := cmd.Flags().GetString("graph")
	topology, _ := cmd.Flags().GetString("topology")
	size, _ := cmd.Flags().GetInt("size")

	given := 0
	for _, v := range []string{edgesPath, graphName, topology} {
		if v != "" {
			given++
		}
	}
	switch {
	case given == 0:
		return nil, "", errors.New("one of --edges, --graph or --topology is required")
	case given > 1:
		return nil, "", errors.New("only one of --edges, --graph or --topology may be given")
	}

	switch {
	case graphName != "":
		es, err := openStore(cfg)
		if err != nil {
			return nil, "", err
		}
		defer es.Close()

		records, err := es.LoadGraph(ctx, graphName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load graph %q: %w", graphName, err)
		}
		return records, graphName, nil

	case topology != "":
		records, err := simulation.Generate(topology, size)
		if err != nil {
			return nil, "", err
		}
		return records, fmt.Sprintf("%s(%d)", strings.ToLower(topology), size), nil

	default:
		records, err := readEdgeList(cmd, edgesPath, formatName)
		if err != nil {
			return nil, "", err
		}
		return records, edgesPath, nil
	}
}

// readEdgeList reads path, or stdin for "-". An explicit format wins over
// the file extension.
func readEdgeList(cmd *cobra.Command, path, formatName string) ([]graph.Record, error) {
	if path != "-" && formatName == "" {
		return edgelist.Read(path)
	}
	if formatName == "" {
		return nil, errors.New("--format is required when reading edges from stdin")
	}

	format, err := edgelist.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	if path == "-" {
		return edgelist.Parse(cmd.InOrStdin(), format)
	}
	return edgelist.ReadFormat(path, format)
}
