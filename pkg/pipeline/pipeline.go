// Package pipeline provides the core chart pipeline for kintree.
//
// This package implements the complete build → layout → fit pipeline used by
// both the CLI and the serve facade. Centralizing it keeps behavior identical
// across entry points, including the caching and retry logic.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Traverse the relationship store into a rooted family graph
//  2. Layout: Compute deterministic 2-D geometry for the graph
//  3. Fit: Apply a page fitting policy to the geometry (optional)
//
// The fitter never rebuilds graphs itself. When the limit-generations policy
// asks for fewer generations, the fitter reports the reduced depths and the
// runner here re-invokes build and layout, which keeps the dependency order
// of the engine packages acyclic.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(store, cache, nil, logger)
//	opts := pipeline.Options{
//	    RootID:          "p-0051",
//	    AncestorDepth:   3,
//	    DescendantDepth: 2,
//	    Chart:           "standard",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Layout.Bounds)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kindredlab/kintree/pkg/cache"
	"github.com/kindredlab/kintree/pkg/chart"
	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree"
	"github.com/kindredlab/kintree/pkg/tree/layout"
	"github.com/kindredlab/kintree/pkg/tree/page"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultAncestorDepth is the default number of ancestor generations.
	DefaultAncestorDepth = 3

	// DefaultDescendantDepth is the default number of descendant generations.
	DefaultDescendantDepth = 2

	// DefaultChart is the default chart kind.
	DefaultChart = string(layout.ChartStandard)

	// DefaultPageSize is the page used when fitting without an explicit size.
	DefaultPageSize = "a4"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	RootID          string `json:"root_id"`
	AncestorDepth   int    `json:"ancestor_depth,omitempty"`
	DescendantDepth int    `json:"descendant_depth,omitempty"`
	IncludeSpouses  bool   `json:"include_spouses,omitempty"`
	Refresh         bool   `json:"refresh,omitempty"`

	// Layout options
	Chart        string  `json:"chart,omitempty"`
	SpacingScale float64 `json:"spacing_scale,omitempty"`
	SweepDegrees float64 `json:"sweep_degrees,omitempty"`
	RingWidth    float64 `json:"ring_width,omitempty"`
	TieBreak     string  `json:"tie_break,omitempty"`

	// Page options. Paginate enables the fit stage.
	Paginate    bool   `json:"paginate,omitempty"`
	PageSize    string `json:"page_size,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	FitPolicy   string `json:"fit_policy,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the rooted family graph the geometry was computed from.
	// Under the limit-generations policy this is the final, possibly
	// reduced, graph.
	Graph *tree.RootedGraph

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Layout is the renderer-ready serialization of the geometry,
	// including page info when fitting was requested.
	Layout chart.Layout

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration

	// Rebuilds counts limit-generations retries (0 when the first
	// layout fits or another policy applies).
	Rebuilds int
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph came from cache
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if o.Paginate {
		if err := o.ValidateForFit(); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for graph building.
func (o *Options) ValidateForBuild() error {
	if o.RootID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "root_id is required")
	}
	if o.AncestorDepth < 0 || o.DescendantDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"depths must be non-negative (got %d, %d)", o.AncestorDepth, o.DescendantDepth)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if o.Chart == "" {
		o.Chart = DefaultChart
	}
	if _, err := layout.ParseKind(o.Chart); err != nil {
		return err
	}
	if o.TieBreak != "" {
		switch layout.TieBreak(o.TieBreak) {
		case layout.TieBreakLabel, layout.TieBreakInsertion:
		default:
			return errors.New(errors.ErrCodeInvalidInput,
				"invalid tie_break %q (must be label or insertion)", o.TieBreak)
		}
	}
	return nil
}

// ValidateForFit validates and sets defaults for page fitting.
func (o *Options) ValidateForFit() error {
	if o.PageSize == "" {
		o.PageSize = DefaultPageSize
	}
	if _, err := page.SizeByName(o.PageSize); err != nil {
		return err
	}
	if _, err := page.ParseOrientation(o.Orientation); err != nil {
		return err
	}
	if _, err := page.ParsePolicy(o.FitPolicy); err != nil {
		return err
	}
	return nil
}

// BuildOptions converts pipeline options into builder options.
func (o *Options) BuildOptions() tree.BuildOptions {
	return tree.BuildOptions{
		AncestorDepth:   o.AncestorDepth,
		DescendantDepth: o.DescendantDepth,
		IncludeSpouses:  o.IncludeSpouses,
	}
}

// LayoutOptions converts pipeline options into layout options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Chart:        layout.Kind(o.Chart),
		SpacingScale: o.SpacingScale,
		SweepDegrees: o.SweepDegrees,
		RingWidth:    o.RingWidth,
		TieBreak:     layout.TieBreak(o.TieBreak),
	}
}

// PageSpec converts pipeline options into a fitter spec.
func (o *Options) PageSpec() (page.Spec, error) {
	size, err := page.SizeByName(o.PageSize)
	if err != nil {
		return page.Spec{}, err
	}
	orientation, err := page.ParseOrientation(o.Orientation)
	if err != nil {
		return page.Spec{}, err
	}
	policy, err := page.ParsePolicy(o.FitPolicy)
	if err != nil {
		return page.Spec{}, err
	}
	return page.Spec{Size: size, Orientation: orientation, Policy: policy}, nil
}

// GraphKeyOpts returns cache key options for graph building.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		AncestorDepth:   o.AncestorDepth,
		DescendantDepth: o.DescendantDepth,
		IncludeSpouses:  o.IncludeSpouses,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
// Page fields are included so fitted and unfitted layouts never alias.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	opts := cache.LayoutKeyOpts{
		Chart:        o.Chart,
		SpacingScale: o.SpacingScale,
		TieBreak:     o.TieBreak,
		SweepDegrees: o.SweepDegrees,
		RingWidth:    o.RingWidth,
	}
	if o.Paginate {
		opts.PageSize = o.PageSize
		opts.Orientation = o.Orientation
		opts.FitPolicy = o.FitPolicy
	}
	return opts
}
