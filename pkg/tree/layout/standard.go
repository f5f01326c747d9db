package layout

import (
	"sort"

	"github.com/kindredlab/kintree/pkg/tree"
)

// layoutCartesian is the shared core of the standard and compact charts.
//
// Each generation offset maps to a horizontal band (y = offset × band
// height). Bands are processed from the deepest descendants upward so that
// a parent can center over the mean x of its already-placed children; a
// left-to-right sweep then restores the minimum gap without reordering.
// Spouses form a single unit with their partner for placement and for the
// centering of the generation above.
func layoutCartesian(g *tree.RootedGraph, opts Options) *Result {
	positions := make(map[string]Point, g.NodeCount())
	gap, bandH := opts.gap(), opts.bandHeight()

	gens := g.Generations()
	// Deepest descendants first, ancestors last.
	for i := len(gens) - 1; i >= 0; i-- {
		offset := gens[i]
		units := bandUnits(g, offset, opts.TieBreak)
		placeUnits(units, positions, gap)
		y := float64(offset) * bandH
		for _, u := range units {
			for _, n := range u.members {
				p := positions[n.ID]
				p.Y = y
				positions[n.ID] = p
			}
		}
	}

	return &Result{
		Positions: positions,
		Edges:     routeEdges(g, positions, true),
		Bounds:    computeBounds(positions),
		Chart:     opts.Chart,
	}
}

// unit is a couple (or single person) placed as one block.
type unit struct {
	members []*tree.PersonNode
}

// bandUnits orders the people of one generation band and groups spouses
// with their partner. People with a known birth year come first, ordered by
// year with the configured tie-break; people without one follow in traversal
// order. Spouse-only members are then pulled next to their partner.
func bandUnits(g *tree.RootedGraph, offset int, tieBreak TieBreak) []*unit {
	band := g.NodesInGeneration(offset)

	sort.SliceStable(band, func(i, j int) bool {
		a, b := band[i], band[j]
		aKnown, bKnown := a.BirthYear != 0, b.BirthYear != 0
		if aKnown != bKnown {
			return aKnown
		}
		if !aKnown {
			return false
		}
		if a.BirthYear != b.BirthYear {
			return a.BirthYear < b.BirthYear
		}
		if tieBreak == TieBreakLabel && a.Label != b.Label {
			return a.Label < b.Label
		}
		return false
	})

	grouped := make(map[string]*unit, len(band))
	var units []*unit
	for _, n := range band {
		if n.SpouseOnly {
			if partner := firstPartnerUnit(grouped, n); partner != nil {
				partner.members = append(partner.members, n)
				grouped[n.ID] = partner
				continue
			}
		}
		u := &unit{members: []*tree.PersonNode{n}}
		grouped[n.ID] = u
		units = append(units, u)
	}

	// A spouse-only person can precede their partner in band order; attach
	// stragglers in a second pass.
	var kept []*unit
	for _, u := range units {
		n := u.members[0]
		if n.SpouseOnly && len(u.members) == 1 {
			if partner := firstPartnerUnit(grouped, n); partner != nil && partner != u {
				partner.members = append(partner.members, n)
				grouped[n.ID] = partner
				continue
			}
		}
		kept = append(kept, u)
	}
	return kept
}

func firstPartnerUnit(grouped map[string]*unit, n *tree.PersonNode) *unit {
	for _, sid := range n.Spouses {
		if u, ok := grouped[sid]; ok && !u.members[0].SpouseOnly {
			return u
		}
	}
	return nil
}

// placeUnits assigns x positions for one band. A unit's desired center is
// the mean x of its members' already-placed children (tidy-tree centering);
// units without placed children fall back to packing order. A final
// left-to-right sweep enforces the minimum gap.
func placeUnits(units []*unit, positions map[string]Point, gap float64) {
	cursor := 0.0
	first := true
	for _, u := range units {
		width := float64(len(u.members)-1) * gap

		center, ok := childMean(u, positions)
		left := center - width/2
		if !ok || (!first && left < cursor) {
			left = cursor
		}
		if first && !ok {
			left = 0
		}

		for k, n := range u.members {
			positions[n.ID] = Point{X: left + float64(k)*gap}
		}
		cursor = left + width + gap
		first = false
	}
}

// childMean returns the mean x of all placed children of the unit's members.
func childMean(u *unit, positions map[string]Point) (float64, bool) {
	sum, count := 0.0, 0
	seen := make(map[string]struct{})
	for _, n := range u.members {
		for _, cid := range n.Children {
			if _, dup := seen[cid]; dup {
				continue
			}
			if p, ok := positions[cid]; ok {
				seen[cid] = struct{}{}
				sum += p.X
				count++
			}
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// routeEdges computes edge paths from final node positions.
//
// Parent-child edges are elbowed (vertical drop, horizontal run, vertical
// drop) unless the endpoints are vertically aligned, in which case a
// straight segment suffices. Spouse edges are short straight segments.
// When elbow is false every edge is a straight segment (timeline chart).
func routeEdges(g *tree.RootedGraph, positions map[string]Point, elbow bool) []RoutedEdge {
	edges := g.Edges()
	out := make([]RoutedEdge, 0, len(edges))
	for _, e := range edges {
		from, okF := positions[e.From]
		to, okT := positions[e.To]
		if !okF || !okT {
			continue
		}

		routed := RoutedEdge{Kind: e.Kind, From: e.From, To: e.To}
		switch {
		case e.Kind == tree.EdgeParentChild && elbow && from.X != to.X:
			midY := (from.Y + to.Y) / 2
			routed.Points = []Point{
				from,
				{X: from.X, Y: midY},
				{X: to.X, Y: midY},
				to,
			}
		default:
			routed.Points = []Point{from, to}
		}
		out = append(out, routed)
	}
	return out
}
