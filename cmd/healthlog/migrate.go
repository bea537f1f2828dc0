// ABOUTME: CLI command for copying records between storage backends.
// ABOUTME: Moves a health log from one backend to another, e.g. CSV to SQLite.
package main

import (
	"fmt"
	"strings"

	"github.com/harperreed/healthlog/internal/config"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		to     string
		toDir  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "migrate --to <backend>",
		Short: "Copy every record to another storage backend",
		Long: `Copy every record from the current backend to another one.

The source is the configured backend (--backend, HEALTHLOG_BACKEND, or the
config file). The destination uses the same settings with --to as its backend
and, if given, --to-data-dir as its data directory.

Records already present in the destination for the same date are replaced,
so running the migration twice is harmless. The source is not modified.

USAGE:

  healthlog --backend csv migrate --to sqlite --dry-run
  healthlog --backend csv migrate --to sqlite
  healthlog migrate --to badger --to-data-dir /tmp/healthlog-copy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return fmt.Errorf("--to is required")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			dstCfg := *a.cfg
			dstCfg.Backend = to
			if toDir != "" {
				dstCfg.DataDir = toDir
			}
			if dstCfg.GetBackend() == a.cfg.GetBackend() && dstCfg.GetDataDir() == a.cfg.GetDataDir() {
				return fmt.Errorf("source and destination are the same %s store", to)
			}

			if dryRun {
				warnColor.Fprintln(out, "Dry run mode - no changes will be made")
				records, err := a.repo.LoadAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to load records: %w", err)
				}
				fmt.Fprintf(out, "Would copy %d records from %s to %s\n",
					len(records), a.cfg.GetBackend(), dstCfg.GetBackend())
				return nil
			}

			dst, err := dstCfg.OpenStorage(ctx)
			if err != nil {
				return fmt.Errorf("open destination: %w", err)
			}
			defer dst.Close()

			summary, err := storage.MigrateData(ctx, a.repo, dst)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			success(out, "Copied %d records from %s to %s", summary.Records, a.cfg.GetBackend(), dstCfg.GetBackend())
			if summary.Replaced > 0 {
				faint.Fprintf(out, "  %d existing dates replaced\n", summary.Replaced)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "destination backend ("+strings.Join(config.Backends, ", ")+")")
	cmd.Flags().StringVar(&toDir, "to-data-dir", "", "destination data directory (default: same as source)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview migration without making changes")
	return cmd
}
