package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kindredlab/kintree/pkg/cache"
	"github.com/kindredlab/kintree/pkg/chart"
	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/gen"
	"github.com/kindredlab/kintree/pkg/tree"
	"github.com/kindredlab/kintree/pkg/tree/layout"
	"github.com/kindredlab/kintree/pkg/tree/page"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the store, cache, and logger - it
// doesn't keep pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Store  gen.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner over the given relationship store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(store gen.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  store,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → fit pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	g, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.BuildHit = buildHit

	// Graph hash for cache keys and API responses
	if graphData, err := chart.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("built graph",
		"root", opts.RootID,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)
	for _, w := range g.Warnings {
		r.Logger.Warn(w.Message, "code", w.Code)
	}

	// Stages 2+3: Layout and fit (with the limit-generations retry loop)
	layoutStart := time.Now()
	fitted, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = fitted.Layout
	result.Graph = fitted.Graph
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Rebuilds = fitted.Rebuilds
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"chart", fitted.Layout.Chart,
		"placed", len(fitted.Layout.Nodes),
		"rebuilds", fitted.Rebuilds,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// BuildWithCacheInfo builds the rooted graph with caching and reports
// whether it came from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*tree.RootedGraph, bool, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, false, err
	}
	if r.Store == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidStore, "runner has no relationship store")
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GraphKey(opts.RootID, opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := chart.ReadGraph(bytes.NewReader(data)); err == nil {
				return g, true, nil // Cache hit
			}
			// Corrupt entry falls through to rebuild
		}
	}

	g, err := tree.NewBuilder(r.Store).Build(ctx, opts.RootID, opts.BuildOptions())
	if err != nil {
		return nil, false, err
	}

	if data, err := chart.MarshalGraph(g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
	}

	return g, false, nil // Cache miss
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*tree.RootedGraph, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, opts)
	return g, err
}

// Fitted bundles the outcome of the layout and fit stages. Graph is the
// graph the final geometry was computed from; under the limit-generations
// policy it may hold fewer generations than the one passed in.
type Fitted struct {
	Layout   chart.Layout
	Graph    *tree.RootedGraph
	Rebuilds int
}

// GenerateLayoutWithCacheInfo computes the (fitted) layout with caching and
// reports whether it came from the cache.
//
// Layouts produced by the limit-generations policy are never cached: their
// final graph can differ from the input graph, and a cache hit could not
// reproduce it.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g *tree.RootedGraph, graphHash string, opts Options) (Fitted, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return Fitted{}, false, err
	}
	if opts.Paginate {
		if err := opts.ValidateForFit(); err != nil {
			return Fitted{}, false, err
		}
	}
	r.applyLogger(&opts)

	cacheable := !opts.Paginate || page.Policy(opts.FitPolicy) != page.PolicyLimitGenerations
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := chart.UnmarshalLayout(data); err == nil {
				return Fitted{Layout: cached, Graph: g}, true, nil // Cache hit
			}
			// Corrupt entry falls through to recompute
		}
	}

	fitted, err := r.computeFitted(ctx, g, opts)
	if err != nil {
		return Fitted{}, false, err
	}

	if cacheable {
		if data, err := chart.MarshalLayout(fitted.Layout); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		}
	}

	return fitted, false, nil // Cache miss
}

// GenerateLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, g *tree.RootedGraph, opts Options) (Fitted, error) {
	graphHash := ""
	if data, err := chart.MarshalGraph(g); err == nil {
		graphHash = cache.Hash(data)
	}
	fitted, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, graphHash, opts)
	return fitted, err
}

// computeFitted runs layout and, when pagination is requested, the fitting
// policy. The limit-generations retry loop lives here: every Rebuild request
// from the fitter triggers a fresh build and layout with the reduced depths.
// The loop terminates because the depths strictly decrease and the fitter
// falls back to scaling at zero.
func (r *Runner) computeFitted(ctx context.Context, g *tree.RootedGraph, opts Options) (Fitted, error) {
	res, err := layout.Compute(g, opts.LayoutOptions())
	if err != nil {
		return Fitted{}, err
	}

	if !opts.Paginate {
		return Fitted{Layout: chart.FromResult(g, res), Graph: g}, nil
	}

	spec, err := opts.PageSpec()
	if err != nil {
		return Fitted{}, err
	}

	rebuilds := 0
	for {
		out, err := page.Fit(res, spec, g.AncestorDepth, g.DescendantDepth)
		if err != nil {
			return Fitted{}, err
		}
		if out.Rebuild == nil {
			l := chart.FromResult(g, out.Result).WithPage(out)
			return Fitted{Layout: l, Graph: g, Rebuilds: rebuilds}, nil
		}

		rebuilds++
		r.Logger.Debug("layout exceeds page, rebuilding",
			"ancestor_depth", out.Rebuild.AncestorDepth,
			"descendant_depth", out.Rebuild.DescendantDepth)

		sub := opts
		sub.AncestorDepth = out.Rebuild.AncestorDepth
		sub.DescendantDepth = out.Rebuild.DescendantDepth
		g, err = tree.NewBuilder(r.Store).Build(ctx, opts.RootID, sub.BuildOptions())
		if err != nil {
			return Fitted{}, err
		}
		res, err = layout.Compute(g, opts.LayoutOptions())
		if err != nil {
			return Fitted{}, err
		}
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
