// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/healthlog/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and write your health log through
a standardized protocol. The server communicates via stdin/stdout; logs go to
stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "healthlog": {
        "command": "healthlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  upsert_record   Record (or replace) a day's exercise, sleep, mood and memo
  list_records    List records in date order
  delete_record   Delete the record for a date
  get_summary     Average sleep, total exercise and latest mood

AVAILABLE RESOURCES:

  healthlog://records      All records as JSON
  healthlog://summary      Summary as JSON
  healthlog://export.csv   CSV export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcp.NewServer(a.repo, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Serve(ctx)
		},
	}
}
