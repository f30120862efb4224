package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/internal/server"
	"github.com/matzehuels/flowlens/pkg/observability"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		co   cacheOpts
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendering API over HTTP",
		Long: `Serve the rendering API over HTTP.

  POST /v1/render?tool=<tool>   render the flow document in the body
  POST /v1/diff?tool=<tool>     compare the multipart fields "old" and "new"
  GET  /healthz                 liveness probe
  GET  /metrics                 Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, co)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&co.disabled, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&co.redisAddr, "redis-addr", "", "use the Redis server at this address as cache")
	cmd.Flags().StringVar(&co.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&co.redisDB, "redis-db", 0, "Redis database number")

	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, addr string, co cacheOpts) error {
	metrics := observability.NewMetrics()
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	runner, err := c.newRunner(ctx, co)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	api := server.New(runner, c.Logger)
	api.Metrics = metrics.Handler()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	printSuccess("Listening")
	printKeyValue("Address", StyleLink.Render("http://"+ln.Addr().String()))
	printKeyValue("Metrics", StyleLink.Render("http://"+ln.Addr().String()+"/metrics"))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
