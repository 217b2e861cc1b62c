package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lobstergraph/lobstergraph/internal/config"
	"github.com/lobstergraph/lobstergraph/internal/server"
)

// serveCommand creates the serve command, which exposes the built graph
// over the HTTP API with server-sent events.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		noCache   bool
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the invitation graph over the HTTP API",
		Long: `Serve builds the graph and exposes it on an HTTP API with level-of-detail
filtering, highlight modes, and an SSE event stream. With --watch the data
file is monitored and the graph rebuilt on change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			opts, err := c.pipelineOptions(cfg, false)
			if err != nil {
				return err
			}
			runner, _, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			hub := server.NewHub()
			defer hub.Close()

			app := server.NewApp(runner, opts, hub, c.Logger)

			sp := newSpinner(ctx, "Building graph")
			sp.Start()
			if err := app.Rebuild(ctx); err != nil {
				sp.StopWithError("Build failed")
				return err
			}
			sp.Stop()

			if cfg.Watch && opts.DataPath != "" {
				go func() {
					if err := app.Watch(ctx, opts.DataPath); err != nil && !errors.Is(err, context.Canceled) {
						c.Logger.Error("watch stopped", "error", err)
					}
				}()
			}

			srv := server.New(app, hub, c.Logger, server.Options{StaticDir: staticDir})
			addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			printSuccess("Serving invitation graph")
			printKeyValue("address", fmt.Sprintf("http://%s", addr))
			printKeyValue("events", fmt.Sprintf("http://%s/api/events", addr))
			if cfg.Watch {
				printDetail("watching %s for changes", opts.DataPath)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().String("host", "", "interface to bind")
	cmd.Flags().Int("port", 0, "port to listen on")
	cmd.Flags().Bool("watch", false, "rebuild when the data file changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache entirely")
	cmd.Flags().StringVar(&staticDir, "static", "", "serve a viewer front-end from this directory")
	return cmd
}
