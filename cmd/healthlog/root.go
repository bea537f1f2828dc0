// ABOUTME: Root Cobra command for healthlog CLI.
// ABOUTME: Handles config, logger, and store lifecycle via PersistentPre/PostRunE.
package main

import (
	"strings"

	"github.com/harperreed/healthlog/internal/config"
	"github.com/spf13/cobra"
)

// storeless lists commands that run without opening the store.
var storeless = map[string]bool{
	"help":          true,
	"completion":    true,
	"install-skill": true,
	"healthlog":     true,
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "healthlog",
		Short: "Personal daily health log",
		Long: `Healthlog keeps one record per day: exercise minutes, sleep hours,
mood, and a short memo.

QUICK START:

  $ healthlog add --exercise 45 --sleep 6.5 --mood great --memo "ran"
  $ healthlog add 2024-01-01 -e 30 -s 7 -m okay
  $ healthlog list                      # All records, oldest first
  $ healthlog summary                   # Averages, totals, and trend charts
  $ healthlog delete 2024-01-01         # Remove a day (no-op if absent)
  $ healthlog export csv -o health_data.csv

  Adding a record for a date that already has one replaces it.

DASHBOARD:

  $ healthlog serve                     # http://127.0.0.1:8501

STORAGE BACKENDS:

  sqlite    local database (default)   ~/.local/share/healthlog/healthlog.db
  csv       local flat file             ~/.local/share/healthlog/health_data.csv
  badger    embedded key-value store    ~/.local/share/healthlog/badger/
  postgres  remote table                HEALTHLOG_POSTGRES_DSN
  s3        CSV object in a bucket      HEALTHLOG_S3_BUCKET, HEALTHLOG_S3_KEY

  Choose with --backend, HEALTHLOG_BACKEND, or "backend" in
  ~/.config/healthlog/config.json. A .env file in the working
  directory is read too.

MCP INTEGRATION:

  Run 'healthlog mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "healthlog": { "command": "healthlog", "args": ["mcp"] }
    }
  }`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			if err := a.initLogger(); err != nil {
				return err
			}
			if storeless[cmd.Name()] || (cmd.Parent() != nil && cmd.Parent().Name() == "completion") {
				return nil
			}
			return a.openStore(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.backend, "backend", "",
		"storage backend ("+strings.Join(config.Backends, ", ")+")")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory for local backends")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newSummaryCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newMigrateCmd(a),
		newInstallSkillCmd(),
	)
	return root
}
