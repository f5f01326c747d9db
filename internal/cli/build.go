package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindredlab/kintree/pkg/chart"
	"github.com/kindredlab/kintree/pkg/pipeline"
)

// buildCommand creates the build command for traversing relationship data
// into a rooted family graph.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		stores  storeFlags
	)
	opts := pipeline.Options{
		AncestorDepth:   pipeline.DefaultAncestorDepth,
		DescendantDepth: pipeline.DefaultDescendantDepth,
	}

	cmd := &cobra.Command{
		Use:   "build [people.json]",
		Short: "Build a rooted family graph from relationship data",
		Long: `Build a rooted family graph from relationship data.

The build command traverses a people file (or a MongoDB collection) outward
from a root person, collecting ancestors and descendants up to the requested
depths. The output is a graph.json file that the 'layout' command turns into
chart geometry.

Pedigree collapse is handled: a person reachable along several lines appears
once, with all of their parent-child edges. Results are cached locally for
faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peopleFile := ""
			if len(args) > 0 {
				peopleFile = args[0]
			}
			return c.runBuild(cmd.Context(), peopleFile, stores, opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <root>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Build flags
	cmd.Flags().StringVarP(&opts.RootID, "root", "r", "", "id of the root person (required)")
	cmd.Flags().IntVarP(&opts.AncestorDepth, "ancestors", "a", opts.AncestorDepth, "ancestor generations to include")
	cmd.Flags().IntVarP(&opts.DescendantDepth, "descendants", "d", opts.DescendantDepth, "descendant generations to include")
	cmd.Flags().BoolVar(&opts.IncludeSpouses, "spouses", false, "include spouses of included people")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and rebuild")
	_ = cmd.MarkFlagRequired("root")

	stores.register(cmd)

	return cmd
}

// runBuild traverses the store and writes the graph file.
func (c *CLI) runBuild(ctx context.Context, peopleFile string, stores storeFlags, opts pipeline.Options, output string, noCache bool) error {
	store, closeStore, err := stores.open(ctx, peopleFile)
	if err != nil {
		return err
	}
	defer closeStore()

	runner, err := c.newRunner(store, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Traversing family of %s...", opts.RootID))
	spinner.Start()

	g, cacheHit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build graph: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = opts.RootID + ".graph.json"
	}

	if err := chart.WriteGraphFile(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Graph built")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	for _, w := range g.Warnings {
		printWarning("%s", w.Message)
	}
	printNewline()
	printNextStep("Lay out", "kintree layout "+outputPath)

	return nil
}
