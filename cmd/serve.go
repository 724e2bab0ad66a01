package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tristendillon/depcheck/core/models"
	"github.com/tristendillon/depcheck/core/server"
)

var (
	serveWatch bool
	serveHost  string
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Serve the import report as JSON over HTTP",
	Long: `Starts an HTTP server exposing the import report:

  GET /api/dependencies        scan report (add ?placeholder=1 for sample data)
  GET /api/dependencies/live   websocket pushing a new report after each rescan
  GET /healthz                 liveness probe

Without --watch every request runs a fresh scan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, fsys, err := openProject(args)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		srv := server.NewServer(cfg, fsys)

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return srv.Start(ctx)
		})
		if serveWatch {
			g.Go(func() error {
				return runWatch(ctx, cfg, fsys, func(rep *models.ScanReport) {
					srv.Publish(rep)
				})
			})
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Keep a live report and push updates on file changes")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides server.host)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides server.port)")
}
