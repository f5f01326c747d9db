package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kindredlab/kintree/pkg/cache"
	"github.com/kindredlab/kintree/pkg/chart"
	"github.com/kindredlab/kintree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing chart geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{Chart: pipeline.DefaultChart}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute chart geometry from a rooted family graph",
		Long: `Compute chart geometry from a rooted family graph.

The layout command takes a graph.json file (produced by 'build') and computes
node positions and edge routes for the selected chart. The output is a
layout.json file that any renderer can consume.

Five charts are supported: standard (default), compact, timeline, hourglass,
and fan. Page fitting is handled by the 'chart' command, which has access to
the relationship store and can rebuild with fewer generations when asked to.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().StringVarP(&opts.Chart, "chart", "t", opts.Chart, "chart kind: standard (default), compact, timeline, hourglass, fan")
	cmd.Flags().Float64Var(&opts.SpacingScale, "spacing-scale", opts.SpacingScale, "multiplier on horizontal and vertical spacing")
	cmd.Flags().Float64Var(&opts.SweepDegrees, "sweep", opts.SweepDegrees, "angular sweep in degrees (fan)")
	cmd.Flags().Float64Var(&opts.RingWidth, "ring-width", opts.RingWidth, "radial ring width (fan)")
	cmd.Flags().StringVar(&opts.TieBreak, "tie-break", opts.TieBreak, "sibling tie-break: label (default), insertion")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := chart.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(nil, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	graphHash := ""
	if data, err := chart.MarshalGraph(g); err == nil {
		graphHash = cache.Hash(data)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Chart))
	spinner.Start()

	fitted, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, g, graphHash, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := chart.WriteLayoutFile(fitted.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(fitted.Layout.Nodes), len(fitted.Layout.Edges), cacheHit)
	printNewline()
	printNextStep("Render", "go run ./examples/nodelink "+outputPath)

	return nil
}
