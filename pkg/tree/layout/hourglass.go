package layout

import (
	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree"
)

// layoutHourglass runs two standard sub-layouts, one over the ancestor-only
// view (generations above the root) and one over the descendant-only view
// (generations below), both aligned so the root sits at the origin, and
// merges the coordinate sets.
//
// The generation-offset sign guarantees the views share no node but the
// root, so the merge is a disjoint union plus one shared anchor point.
func layoutHourglass(g *tree.RootedGraph, opts Options) (*Result, error) {
	if g.AncestorDepth == 0 || g.DescendantDepth == 0 {
		return nil, errors.New(errors.ErrCodeUnsupportedConfiguration,
			"hourglass chart requires both ancestor and descendant depth > 0 (got %d, %d)",
			g.AncestorDepth, g.DescendantDepth)
	}

	sub := opts
	sub.Chart = ChartStandard

	upper := layoutCartesian(g.AncestorView(), sub)
	lower := layoutCartesian(g.DescendantView(), sub)

	positions := make(map[string]Point, g.NodeCount())
	mergeAtRoot(positions, upper.Positions, g.RootID())
	mergeAtRoot(positions, lower.Positions, g.RootID())

	return &Result{
		Positions: positions,
		Edges:     routeEdges(g, positions, true),
		Bounds:    computeBounds(positions),
		Chart:     ChartHourglass,
	}, nil
}

// mergeAtRoot translates a sub-layout so its root lands on the origin and
// copies the coordinates in. The root is written by both sub-layouts but
// always as (0, 0), so the shared anchor is counted once.
func mergeAtRoot(dst, src map[string]Point, rootID string) {
	anchor := src[rootID]
	for id, p := range src {
		dst[id] = Point{X: p.X - anchor.X, Y: p.Y - anchor.Y}
	}
}
