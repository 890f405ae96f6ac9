package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panzoom/pkg/server"
	"github.com/matzehuels/panzoom/pkg/session"
)

// shutdownTimeout bounds how long serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string
	ttl         time.Duration
	anyOrigin   bool
	readTimeout time.Duration
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:        defaultAddr,
		ttl:         session.DefaultTTL,
		readTimeout: 30 * time.Second,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live viewports over HTTP and WebSocket",
		Long: `Serve live viewports over HTTP.

POST a chart to /api/viewports to create a viewport, then drive it with
gesture events, zooms and resizes. Every response carries the domain-change
notifications the request produced. Connect to /api/viewports/{id}/ws to
exchange events and updates over a WebSocket.

Idle viewports are dropped after --ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", opts.ttl, "idle viewport lifetime")
	cmd.Flags().BoolVar(&opts.anyOrigin, "any-origin", false, "accept WebSocket connections from any origin")
	cmd.Flags().DurationVar(&opts.readTimeout, "read-timeout", opts.readTimeout, "timeout for reading request headers")

	return cmd
}

// runServe listens on opts.addr until ctx is canceled, then shuts down
// gracefully.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	store := session.NewMemoryStore()
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go store.RunCleanup(cleanupCtx, session.DefaultCleanupInterval)

	serverOpts := []server.Option{server.WithTTL(opts.ttl)}
	if opts.anyOrigin {
		serverOpts = append(serverOpts, server.WithCheckOrigin(func(*http.Request) bool { return true }))
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.addr, err)
	}

	srv := &http.Server{
		Handler:           server.New(store, logger, serverOpts...),
		ReadHeaderTimeout: opts.readTimeout,
	}

	url := "http://" + ln.Addr().String()
	printSuccess("Serving viewports")
	printKeyValue("address", StyleLink.Render(url))
	printKeyValue("ttl", opts.ttl.String())
	printNextStep("Create a viewport", fmt.Sprintf("curl -X POST --data @chart.json %s/api/viewports", url))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "sessions", store.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
