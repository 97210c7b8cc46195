package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hydro-project/flowviz/pkg/layout"
	"github.com/hydro-project/flowviz/pkg/layoutengine/graphviz"
	"github.com/hydro-project/flowviz/pkg/model"
	"github.com/hydro-project/flowviz/pkg/orchestrator"
	"github.com/hydro-project/flowviz/pkg/render"
	"github.com/hydro-project/flowviz/pkg/transport/httpapi"
)

// serveCommand creates the serve command: host a document's visualization
// state behind the Orchestrator, reachable over a read-only HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve [doc.json]",
		Short: "Serve a graph document's visualization state over HTTP",
		Long: `Serve a graph document's visualization state over HTTP.

Loads a document into an Orchestrator and exposes its query operations
(visible nodes/edges/containers, entity lookups, phase) as read-only JSON
over HTTP, recomputing layout/render on every mutation with the same
debounced state machine a long-lived host would drive directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, noCache, debounce)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&debounce, "debounce", orchestrator.DefaultDebounce, "mutation debounce window")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr string, noCache bool, debounce time.Duration) error {
	s, err := model.ReadJSONFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	ch, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	o := orchestrator.New(s, orchestrator.Options{
		Engine:   graphviz.New(),
		Theme:    render.DefaultTheme(),
		Layout:   layout.DefaultOptions(),
		Cache:    ch,
		Logger:   c.Logger,
		Debounce: debounce,
	})
	o.RequestLayout(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: httpapi.New(o),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		printSuccess("Serving %s", input)
		printKeyValue("Address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}
