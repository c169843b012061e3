package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvandessel/graphism/internal/store"
	"github.com/spf13/cobra"
)

func newGraphsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "List graphs saved in the edge store",
		Long: `List, delete and export graphs saved with 'graphism import'.

Examples:
  graphism graphs
  graphism graphs delete office
  graphism graphs export office -o office.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			es, err := openStoreForCmd(cmd)
			if err != nil {
				return err
			}
			defer es.Close()

			infos, err := es.ListGraphs(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list graphs: %w", err)
			}

			if jsonOut {
				if infos == nil {
					infos = []store.GraphInfo{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"graphs": infos,
					"count":  len(infos),
				})
			}

			w := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(w, "No graphs stored.")
				return nil
			}
			fmt.Fprintf(w, "%-24s  %8s  %s\n", "NAME", "EDGES", "UPDATED")
			for _, info := range infos {
				fmt.Fprintf(w, "%-24s  %8d  %s\n", info.Name, info.Edges, info.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.AddCommand(newGraphsDeleteCmd(), newGraphsExportCmd())
	return cmd
}

func newGraphsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			es, err := openStoreForCmd(cmd)
			if err != nil {
				return err
			}
			defer es.Close()

			if err := es.DeleteGraph(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete graph: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "deleted",
					"name":   args[0],
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted graph %q\n", args[0])
			return nil
		},
	}
}

func newGraphsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Write a stored graph as JSONL edge records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("output")

			es, err := openStoreForCmd(cmd)
			if err != nil {
				return err
			}
			defer es.Close()

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := store.ExportJSONL(context.Background(), es, args[0], w); err != nil {
				return fmt.Errorf("failed to export graph: %w", err)
			}
			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Graph %q written to %s\n", args[0], outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}

func openStoreForCmd(cmd *cobra.Command) (*store.SQLiteEdgeStore, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}
