// ABOUTME: CLI command for the web dashboard.
// ABOUTME: Runs the HTTP server and the flat-file watcher until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/healthlog/internal/config"
	"github.com/harperreed/healthlog/internal/events"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/harperreed/healthlog/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long: `Start the web dashboard.

The dashboard has a sidebar form for today's record, a summary of average
sleep, total exercise and latest mood, sleep and exercise charts, a table with
a delete control, and a CSV download. Open pages refresh themselves whenever a
record changes, including edits made to the CSV file by other programs.

ENDPOINTS:

  GET  /                  dashboard
  POST /records           add or replace a record (form)
  POST /records/delete    delete a date (form)
  GET  /export.csv        CSV download
  GET  /api/records       records as JSON
  GET  /api/summary       summary as JSON
  GET  /ws                change feed (websocket)
  GET  /metrics           Prometheus metrics

EXAMPLES:

  healthlog serve
  healthlog serve --listen :8080
  healthlog --backend csv serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := listen
			if addr == "" {
				addr = a.cfg.GetListen()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := events.NewHub(events.DefaultBuffer)
			defer hub.Close()

			srv, err := web.New(a.repo, hub, web.WithLogger(a.logger))
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx, addr)
			})

			if w, ok := a.repo.(storage.Watchable); ok {
				path := w.WatchPath()
				g.Go(func() error {
					err := storage.WatchFile(gctx, path, func() {
						a.logger.Debug("store file changed", zap.String("path", path))
						hub.Publish(events.Reloaded())
					})
					if err != nil {
						a.logger.Warn("file watcher stopped", zap.String("path", path), zap.Error(err))
					}
					return nil
				})
			}

			// Closing the hub ends open websocket streams so shutdown is not held up.
			g.Go(func() error {
				<-gctx.Done()
				hub.Close()
				return nil
			})

			success(cmd.OutOrStdout(), "Dashboard on http://%s (%s backend)", addr, a.cfg.GetBackend())
			if err := g.Wait(); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default "+config.DefaultListen+")")
	return cmd
}
