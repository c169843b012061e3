package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/graphism/internal/graph"
	"github.com/spf13/cobra"
)

type nodeDegree struct {
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show node, edge and degree statistics for a graph",
		Long: `Display the structure of a graph without running a simulation.

Examples:
  graphism stats --edges contacts.csv
  graphism stats --graph office --top 5
  graphism stats --topology star --size 8 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			topN, _ := cmd.Flags().GetInt("top")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			directed := cfg.Simulation.Directed
			if cmd.Flags().Changed("directed") {
				directed, _ = cmd.Flags().GetBool("directed")
			}

			ctx, cancel := signalContext()
			defer cancel()

			records, label, err := loadRecords(ctx, cmd, cfg)
			if err != nil {
				return err
			}
			g, err := graph.FromRecords(records, graph.WithDirected(directed))
			if err != nil {
				return fmt.Errorf("failed to build graph: %w", err)
			}

			stats := g.Stats()
			top := make([]nodeDegree, 0, topN)
			for _, n := range g.TopByDegree(topN) {
				top = append(top, nodeDegree{Name: n.Name(), Degree: n.Degree()})
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"graph":     label,
					"stats":     stats,
					"top_nodes": top,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Graph:          %s\n", label)
			fmt.Fprintf(w, "Nodes:          %d\n", stats.Nodes)
			fmt.Fprintf(w, "Edges:          %d\n", stats.Edges)
			fmt.Fprintf(w, "Relationships:  %d\n", stats.Relationships)
			fmt.Fprintf(w, "Max degree:     %d\n", stats.MaxDegree)
			fmt.Fprintf(w, "Mean degree:    %.2f\n", stats.MeanDegree)
			fmt.Fprintf(w, "Directed:       %v\n", stats.Directed)
			if len(top) > 0 {
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Top nodes by degree:")
				for _, nd := range top {
					fmt.Fprintf(w, "  %-20s %d\n", nd.Name, nd.Degree)
				}
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().Int("top", 10, "Number of highest-degree nodes to list")

	return cmd
}
