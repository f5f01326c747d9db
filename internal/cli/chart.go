package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindredlab/kintree/pkg/cache"
	"github.com/kindredlab/kintree/pkg/chart"
	"github.com/kindredlab/kintree/pkg/config"
	"github.com/kindredlab/kintree/pkg/pipeline"
)

// chartCommand creates the chart command running the full pipeline.
func (c *CLI) chartCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		configPath string
		stores     storeFlags
	)
	opts := pipeline.Options{
		AncestorDepth:   pipeline.DefaultAncestorDepth,
		DescendantDepth: pipeline.DefaultDescendantDepth,
		Chart:           pipeline.DefaultChart,
	}

	cmd := &cobra.Command{
		Use:   "chart [people.json]",
		Short: "Build, lay out, and fit a chart in one step",
		Long: `Build, lay out, and fit a chart in one step.

The chart command runs the full pipeline: it traverses the relationship data
into a rooted graph, computes geometry for the selected chart, and optionally
fits the result to a page. The output is a layout.json file.

With --paginate and --fit-policy limit-generations the pipeline may rebuild
the graph with fewer generations until the chart fits the page; the written
layout then reflects the reduced graph.

A TOML config file (--config) supplies defaults; explicit flags win.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peopleFile := ""
			if len(args) > 0 {
				peopleFile = args[0]
			}
			return c.runChart(cmd, peopleFile, stores, opts, output, noCache, configPath)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <root>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file with defaults")

	// Build flags
	cmd.Flags().StringVarP(&opts.RootID, "root", "r", "", "id of the root person (required)")
	cmd.Flags().IntVarP(&opts.AncestorDepth, "ancestors", "a", opts.AncestorDepth, "ancestor generations to include")
	cmd.Flags().IntVarP(&opts.DescendantDepth, "descendants", "d", opts.DescendantDepth, "descendant generations to include")
	cmd.Flags().BoolVar(&opts.IncludeSpouses, "spouses", false, "include spouses of included people")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	// Layout flags
	cmd.Flags().StringVarP(&opts.Chart, "chart", "t", opts.Chart, "chart kind: standard (default), compact, timeline, hourglass, fan")
	cmd.Flags().Float64Var(&opts.SpacingScale, "spacing-scale", opts.SpacingScale, "multiplier on horizontal and vertical spacing")
	cmd.Flags().Float64Var(&opts.SweepDegrees, "sweep", opts.SweepDegrees, "angular sweep in degrees (fan)")
	cmd.Flags().Float64Var(&opts.RingWidth, "ring-width", opts.RingWidth, "radial ring width (fan)")
	cmd.Flags().StringVar(&opts.TieBreak, "tie-break", opts.TieBreak, "sibling tie-break: label (default), insertion")

	// Page flags
	cmd.Flags().BoolVar(&opts.Paginate, "paginate", false, "fit the layout to a page")
	cmd.Flags().StringVar(&opts.PageSize, "page-size", opts.PageSize, "page size: a0-a5, letter, legal, tabloid")
	cmd.Flags().StringVar(&opts.Orientation, "orientation", opts.Orientation, "page orientation: portrait (default), landscape")
	cmd.Flags().StringVar(&opts.FitPolicy, "fit-policy", opts.FitPolicy, "fit policy: scale (default), auto-size, limit-generations")
	_ = cmd.MarkFlagRequired("root")

	stores.register(cmd)

	return cmd
}

// runChart executes the full pipeline and writes the layout file.
func (c *CLI) runChart(cmd *cobra.Command, peopleFile string, stores storeFlags, opts pipeline.Options, output string, noCache bool, configPath string) error {
	ctx := cmd.Context()

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = &loaded
		applyConfig(cmd, cfg, &opts)
	}

	store, closeStore, err := stores.open(ctx, peopleFile)
	if err != nil {
		return err
	}
	defer closeStore()

	cch, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(store, cch, nil, c.Logger)
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Charting family of %s...", opts.RootID))
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Chart failed")
		return fmt.Errorf("run pipeline: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = opts.RootID + ".layout.json"
	}

	if err := chart.WriteLayoutFile(res.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Chart complete")
	printFile(outputPath)
	printStats(len(res.Layout.Nodes), len(res.Layout.Edges), res.CacheInfo.BuildHit && res.CacheInfo.LayoutHit)
	if p := res.Layout.Page; p != nil {
		printDetail("page %s %s, scale %.2f", p.Size, p.Orientation, p.Scale)
	}
	if res.Stats.Rebuilds > 0 {
		printDetail("reduced to %d ancestor and %d descendant generations to fit",
			res.Graph.AncestorDepth, res.Graph.DescendantDepth)
	}
	for _, w := range res.Layout.Warnings {
		printWarning("%s", w.Message)
	}
	printNewline()
	printNextStep("Render", "go run ./examples/nodelink "+outputPath)

	return nil
}

// applyConfig copies config values into opts for flags the user did not set.
func applyConfig(cmd *cobra.Command, cfg *config.Config, opts *pipeline.Options) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if !set("chart") {
		opts.Chart = cfg.Layout.Chart
	}
	if !set("spacing-scale") {
		opts.SpacingScale = cfg.Layout.SpacingScale
	}
	if !set("sweep") {
		opts.SweepDegrees = cfg.Layout.SweepDegrees
	}
	if !set("ring-width") {
		opts.RingWidth = cfg.Layout.RingWidth
	}
	if !set("tie-break") {
		opts.TieBreak = cfg.Layout.TieBreak
	}
	if !set("page-size") {
		opts.PageSize = cfg.Page.Size
	}
	if !set("orientation") {
		opts.Orientation = cfg.Page.Orientation
	}
	if !set("fit-policy") {
		opts.FitPolicy = cfg.Page.Policy
	}
}

// openCache resolves the cache backend. Without a config file the default
// file cache under the XDG cache directory is used.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg == nil {
		return newCache(false)
	}
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	default:
		return cache.NewFileCache(cfg.Cache.Dir)
	}
}
