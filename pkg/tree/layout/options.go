// Package layout computes 2-D geometry for rooted family graphs.
//
// Five chart kinds are supported, all selected by configuration through one
// entry point, [Compute]:
//
//   - standard: generation bands, tidy-tree centering, elbowed edges
//   - compact: the standard algorithm at half spacing (a parameterization,
//     not a separate algorithm)
//   - timeline: y derived from birth years instead of generation bands
//   - hourglass: mirrored standard passes over ancestors and descendants
//   - fan: polar ancestor chart (paginated output only)
//
// Every strategy is a pure function of the graph and options: no randomness,
// stable orderings, bit-identical results across runs.
package layout

import (
	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree"
)

// Kind selects a chart algorithm.
type Kind string

// Chart kinds.
const (
	ChartStandard  Kind = "standard"
	ChartCompact   Kind = "compact"
	ChartTimeline  Kind = "timeline"
	ChartHourglass Kind = "hourglass"
	ChartFan       Kind = "fan"
)

// ParseKind validates a chart kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case ChartStandard, ChartCompact, ChartTimeline, ChartHourglass, ChartFan:
		return Kind(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidChart,
		"invalid chart %q (must be one of: standard, compact, timeline, hourglass, fan)", s)
}

// TieBreak selects the ordering rule for siblings that share a birth year.
// The source data leaves this open, so it is configuration rather than a
// hard-coded constant.
type TieBreak string

// Tie-break rules.
const (
	// TieBreakLabel orders same-year siblings by display label.
	TieBreakLabel TieBreak = "label"
	// TieBreakInsertion keeps same-year siblings in traversal order.
	TieBreakInsertion TieBreak = "insertion"
)

// Default geometry values. All scale with Options.SpacingScale.
const (
	// DefaultGenerationHeight is the vertical distance between generation bands.
	DefaultGenerationHeight = 120.0

	// DefaultMinGap is the minimum horizontal distance between adjacent nodes.
	DefaultMinGap = 60.0

	// DefaultRingWidth is the radial distance between fan chart rings.
	DefaultRingWidth = 100.0

	// DefaultSweepDegrees is the fan chart's total arc (a half circle).
	DefaultSweepDegrees = 180.0

	// CompactScale is the spacing scale the compact chart applies.
	CompactScale = 0.5
)

// NodeRadius is the margin added around node positions when computing the
// bounding box, so a renderer drawing fixed-radius markers stays inside it.
const NodeRadius = 20.0

// Options configures a layout computation.
// The zero value plus a Chart kind is valid; defaults fill the rest.
type Options struct {
	Chart Kind

	// SpacingScale multiplies MinGap and GenerationHeight.
	// 0 means 1.0 for all charts except compact, where it means 0.5.
	SpacingScale float64

	GenerationHeight float64
	MinGap           float64

	// Fan geometry.
	RingWidth    float64
	SweepDegrees float64

	// TieBreak resolves sibling order for identical birth years.
	TieBreak TieBreak
}

// withDefaults returns a copy with all zero values filled in.
func (o Options) withDefaults() Options {
	if o.Chart == "" {
		o.Chart = ChartStandard
	}
	if o.SpacingScale == 0 {
		if o.Chart == ChartCompact {
			o.SpacingScale = CompactScale
		} else {
			o.SpacingScale = 1.0
		}
	}
	if o.GenerationHeight == 0 {
		o.GenerationHeight = DefaultGenerationHeight
	}
	if o.MinGap == 0 {
		o.MinGap = DefaultMinGap
	}
	if o.RingWidth == 0 {
		o.RingWidth = DefaultRingWidth
	}
	if o.SweepDegrees == 0 {
		o.SweepDegrees = DefaultSweepDegrees
	}
	if o.TieBreak == "" {
		o.TieBreak = TieBreakLabel
	}
	return o
}

// gap returns the effective minimum horizontal gap.
func (o Options) gap() float64 { return o.MinGap * o.SpacingScale }

// bandHeight returns the effective generation band height.
func (o Options) bandHeight() float64 { return o.GenerationHeight * o.SpacingScale }

// Compute runs the strategy selected by opts.Chart over the graph.
//
// Unsupported combinations (fan with descendants, hourglass with a one-sided
// graph) fail with UNSUPPORTED_CONFIGURATION before any geometry is emitted;
// a result is never half-populated.
func Compute(g *tree.RootedGraph, opts Options) (*Result, error) {
	if g == nil || g.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout requires a rooted graph")
	}
	opts = opts.withDefaults()

	switch opts.Chart {
	case ChartStandard, ChartCompact:
		return layoutCartesian(g, opts), nil
	case ChartTimeline:
		return layoutTimeline(g, opts), nil
	case ChartHourglass:
		return layoutHourglass(g, opts)
	case ChartFan:
		return layoutFan(g, opts)
	}
	return nil, errors.New(errors.ErrCodeInvalidChart, "invalid chart %q", opts.Chart)
}
