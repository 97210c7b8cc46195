package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hydro-project/flowviz/pkg/cache"
	"github.com/hydro-project/flowviz/pkg/layout"
	"github.com/hydro-project/flowviz/pkg/layoutengine/graphviz"
	"github.com/hydro-project/flowviz/pkg/model"
	"github.com/hydro-project/flowviz/pkg/observability"
	"github.com/hydro-project/flowviz/pkg/render"
)

// renderCommand creates the render command: load a document, compute a
// layout, and emit the render frame a host consumes for drawing.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output      string
		noCache     bool
		direction   string
		algorithm   string
		edgeRouting string
	)
	opts := layout.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "render [doc.json]",
		Short: "Compute a layout and render frame from a graph document",
		Long: `Compute a layout and render frame from a graph document.

The render command loads a document (produced by 'collapse'/'expand' or
written by hand), computes node/container positions with the Graphviz
layout engine, and emits the flat render frame the host renderer draws
from. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if direction != "" {
				opts.Direction = layout.Direction(direction)
			}
			if algorithm != "" {
				opts.Algorithm = layout.Algorithm(algorithm)
			}
			if edgeRouting != "" {
				opts.EdgeRouting = layout.EdgeRouting(edgeRouting)
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.frame.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&direction, "direction", "", "layout direction: DOWN (default), UP, LEFT, RIGHT")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "layout algorithm: layered (default), tree, force, radial")
	cmd.Flags().StringVar(&edgeRouting, "edge-routing", "", "edge routing: polyline (default), orthogonal, splines")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts layout.Options, output string, noCache bool) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("layout options: %w", err)
	}

	s, err := model.ReadJSONFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	ch, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer ch.Close()
	keyer := cache.NewDefaultKeyer()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()
	start := time.Now()

	in := layout.BuildInput(s, opts)
	out, cacheHit, err := computeLayoutWithCache(ctx, ch, keyer, in)
	observability.Engine().OnLayout(ctx, s.NodeCount(), s.EdgeCount(), time.Since(start), err)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	if err := layout.ApplyOutput(s, in, out); err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("apply layout: %w", err)
	}
	spinner.Stop()

	renderStart := time.Now()
	frame := render.Bridge(s, render.DefaultTheme())
	observability.Engine().OnRender(ctx, len(frame.Nodes), len(frame.Edges), time.Since(renderStart))

	outputPath := output
	if outputPath == "" {
		outputPath = input + ".frame.json"
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(frame); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	printSuccess("Render complete")
	printFile(outputPath)
	printStats(len(frame.Nodes), len(frame.Edges), cacheHit)
	return nil
}

// computeLayoutWithCache mirrors pkg/orchestrator's cache-then-compute
// path so the one-shot CLI command and the live Orchestrator share caching
// semantics without the CLI needing a running Orchestrator.
func computeLayoutWithCache(ctx context.Context, c cache.Cache, keyer cache.Keyer, in layout.Input) (layout.Output, bool, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return layout.Output{}, false, fmt.Errorf("hash layout input: %w", err)
	}
	key := keyer.LayoutKey(cache.Hash(data), cache.LayoutKeyOpts{
		Direction:    string(in.Options.Direction),
		Algorithm:    string(in.Options.Algorithm),
		NodeSpacing:  in.Options.NodeSpacing,
		LayerSpacing: in.Options.LayerSpacing,
		EdgeRouting:  string(in.Options.EdgeRouting),
	})

	if cached, hit, err := c.Get(ctx, key); err == nil && hit {
		var out layout.Output
		if err := json.Unmarshal(cached, &out); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return out, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	eng := graphviz.New()
	out, err := eng.Layout(in)
	if err != nil {
		return layout.Output{}, false, err
	}
	if data, err := json.Marshal(out); err == nil {
		_ = c.Set(ctx, key, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return out, false, nil
}
