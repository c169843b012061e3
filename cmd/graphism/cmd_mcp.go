package main

import (
	"fmt"

	"github.com/nvandessel/graphism/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools: graphism_simulate, graphism_stats, graphism_graphs, graphism_save.
Each tool is rate limited per the mcp section of the config. Logs go to
stderr; tool calls are audited to ~/.graphism/audit.jsonl unless
--no-audit is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auditPath, _ := cmd.Flags().GetString("audit-log")
			noAudit, _ := cmd.Flags().GetBool("no-audit")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			if noAudit {
				auditPath = ""
			} else if auditPath == "" {
				auditPath, err = mcp.DefaultAuditPath()
				if err != nil {
					return fmt.Errorf("failed to resolve audit log path: %w", err)
				}
			}

			es, err := openStore(cfg)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:      "graphism",
				Version:   version,
				Store:     es,
				Settings:  cfg,
				Logger:    logger,
				AuditPath: auditPath,
			})
			if err != nil {
				es.Close()
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			logger.Info("mcp server starting", "db", es.Path(), "audit", auditPath)
			return server.Run(ctx)
		},
	}

	cmd.Flags().String("audit-log", "", "Audit log path (default ~/.graphism/audit.jsonl)")
	cmd.Flags().Bool("no-audit", false, "Disable the tool-call audit log")

	return cmd
}
