package layout

import (
	"sort"

	"github.com/kindredlab/kintree/pkg/tree"
)

// layoutTimeline derives the vertical axis from birth years instead of
// generation bands: the observed year range maps linearly onto the height
// the generation bands would have occupied, oldest at the top.
//
// People with an unknown birth year are placed at the median y of their
// generation band and flagged in the result so a renderer can style them
// distinctly. X positions reuse the Cartesian ordering and centering, with
// the minimum gap re-enforced per unique y band.
func layoutTimeline(g *tree.RootedGraph, opts Options) *Result {
	base := layoutCartesian(g, opts)
	positions := base.Positions

	minYear, maxYear := yearRange(g)
	estimated := make(map[string]bool)

	if minYear == 0 {
		// Nobody has a known year; the generation banding stands and
		// everyone is flagged.
		for _, n := range g.Nodes() {
			estimated[n.ID] = true
		}
	} else {
		gens := g.Generations()
		top := float64(gens[0]) * opts.bandHeight()
		height := float64(gens[len(gens)-1]-gens[0]) * opts.bandHeight()

		// Known years first; unknown years need the band medians below.
		for _, n := range g.Nodes() {
			if n.BirthYear == 0 {
				continue
			}
			p := positions[n.ID]
			p.Y = top + yearScale(n.BirthYear, minYear, maxYear)*height
			positions[n.ID] = p
		}
		for _, n := range g.Nodes() {
			if n.BirthYear != 0 {
				continue
			}
			p := positions[n.ID]
			p.Y = bandMedianY(g, n.Generation, positions)
			positions[n.ID] = p
			estimated[n.ID] = true
		}
	}

	resolveYBands(g, positions, opts.gap())

	return &Result{
		Positions: positions,
		Edges:     routeEdges(g, positions, false),
		Bounds:    computeBounds(positions),
		Estimated: estimated,
		Chart:     ChartTimeline,
	}
}

// yearRange returns the min and max known birth years, or (0, 0).
func yearRange(g *tree.RootedGraph) (int, int) {
	minYear, maxYear := 0, 0
	for _, n := range g.Nodes() {
		if n.BirthYear == 0 {
			continue
		}
		if minYear == 0 || n.BirthYear < minYear {
			minYear = n.BirthYear
		}
		if n.BirthYear > maxYear {
			maxYear = n.BirthYear
		}
	}
	return minYear, maxYear
}

// yearScale maps a year onto [0, 1] across the observed range.
func yearScale(year, minYear, maxYear int) float64 {
	if maxYear == minYear {
		return 0
	}
	return float64(year-minYear) / float64(maxYear-minYear)
}

// bandMedianY returns the median y of the generation's members that carry a
// known birth year. With no such members the generation band position stands.
func bandMedianY(g *tree.RootedGraph, offset int, positions map[string]Point) float64 {
	var ys []float64
	for _, n := range g.NodesInGeneration(offset) {
		if n.BirthYear != 0 {
			ys = append(ys, positions[n.ID].Y)
		}
	}
	if len(ys) == 0 {
		return positions[rootOfGeneration(g, offset)].Y
	}
	sort.Float64s(ys)
	mid := len(ys) / 2
	if len(ys)%2 == 1 {
		return ys[mid]
	}
	return (ys[mid-1] + ys[mid]) / 2
}

// rootOfGeneration returns the first traversal-order member of the band.
func rootOfGeneration(g *tree.RootedGraph, offset int) string {
	return g.NodesInGeneration(offset)[0].ID
}

// resolveYBands re-enforces the minimum horizontal gap per unique y value.
// The year axis can merge people from different generations into one band,
// so the per-generation sweep from the Cartesian pass is not enough.
func resolveYBands(g *tree.RootedGraph, positions map[string]Point, gap float64) {
	byY := make(map[float64][]string)
	for _, n := range g.Nodes() {
		y := positions[n.ID].Y
		byY[y] = append(byY[y], n.ID)
	}

	ys := make([]float64, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	sort.Float64s(ys)

	for _, y := range ys {
		ids := byY[y]
		sort.SliceStable(ids, func(i, j int) bool {
			pi, pj := positions[ids[i]], positions[ids[j]]
			if pi.X != pj.X {
				return pi.X < pj.X
			}
			return ids[i] < ids[j]
		})
		for i := 1; i < len(ids); i++ {
			prev, curr := positions[ids[i-1]], positions[ids[i]]
			if curr.X < prev.X+gap {
				curr.X = prev.X + gap
				positions[ids[i]] = curr
			}
		}
	}
}
