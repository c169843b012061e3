package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import NAME FILE",
		Short: "Save an edge list file in the edge store",
		Long: `Read an edge list and save it under NAME, replacing any graph already
stored with that name. FILE may be - to read stdin, which needs --format.

Examples:
  graphism import office office.csv
  graphism import school edges.txt --format tsv
  cat edges.jsonl | graphism import school - --format jsonl`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			formatName, _ := cmd.Flags().GetString("format")
			name, path := args[0], args[1]

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			records, err := readEdgeList(cmd, path, formatName)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("%s contains no edge records", path)
			}

			es, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer es.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := es.SaveGraph(ctx, name, records); err != nil {
				return fmt.Errorf("failed to save graph: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"name":  name,
					"edges": len(records),
					"db":    es.Path(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d edge records into graph %q (%s)\n", len(records), name, es.Path())
			return nil
		},
	}

	cmd.Flags().String("format", "", "Edge list format: csv, tsv, json, jsonl, yaml, toml (default from extension)")

	return cmd
}
