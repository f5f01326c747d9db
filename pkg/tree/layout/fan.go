package layout

import (
	"math"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/gen"
	"github.com/kindredlab/kintree/pkg/tree"
)

// fanSlot is one angular slot in the binary ancestor tree. The path index k
// within generation g is the ancestor's binary path from the root (father
// appends 0, mother appends 1), so slot angles follow the centered-sum rule
// exactly: siblings of a path always fall inside their child's sector.
type fanSlot struct {
	personID   string
	childID    string // occupant of the child slot this one descends from
	generation int    // 1-based ring number
	index      int    // path index within [0, 2^generation)
}

// layoutFan computes the polar ancestor chart.
//
// The root sits at the origin; ancestor generation g occupies a ring of
// radius g × ring width, divided into 2^g sectors of equal angular width
// within the configured sweep. Missing ancestors leave their slot empty.
// Pedigree-collapsed ancestors are positioned once, at their first slot in
// breadth-first order, but receive one curved edge per referencing sector.
func layoutFan(g *tree.RootedGraph, opts Options) (*Result, error) {
	if g.DescendantDepth > 0 {
		return nil, errors.New(errors.ErrCodeUnsupportedConfiguration,
			"fan chart requires descendant depth 0 (graph was built with %d)",
			g.DescendantDepth)
	}

	slots := assignFanSlots(g)

	sweep := opts.SweepDegrees * math.Pi / 180
	positions := map[string]Point{g.RootID(): {X: 0, Y: 0}}
	var edges []RoutedEdge

	for _, slot := range slots {
		radius := float64(slot.generation) * opts.RingWidth
		angle := slotAngle(slot.index, slot.generation, sweep)
		pos := polar(radius, angle)

		if _, placed := positions[slot.personID]; !placed {
			positions[slot.personID] = pos
		}

		// The edge bends through the sector's own angle at the ring
		// midpoint, so a collapsed ancestor shows one curve per path.
		child := positions[slot.childID]
		target := positions[slot.personID]
		mid := polar(float64(slot.generation)*opts.RingWidth-opts.RingWidth/2, angle)
		edges = append(edges, RoutedEdge{
			Kind:   tree.EdgeParentChild,
			From:   slot.personID,
			To:     slot.childID,
			Points: []Point{target, mid, child},
		})
	}

	return &Result{
		Positions: positions,
		Edges:     edges,
		Bounds:    computeBounds(positions),
		Chart:     ChartFan,
	}, nil
}

// assignFanSlots walks the binary ancestor tree breadth-first and returns
// the occupied slots in deterministic (generation, index) order.
//
// The father occupies path bit 0 and the mother bit 1; when sex is unknown
// the graph's parent order stands. Spouse-only people have no slot in the
// binary tree and are skipped, like missing ancestors.
func assignFanSlots(g *tree.RootedGraph) []fanSlot {
	type pending struct {
		id    string
		gen   int
		index int
	}

	var slots []fanSlot
	queue := []pending{{id: g.RootID(), gen: 0, index: 0}}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr.gen >= g.AncestorDepth {
			continue
		}
		for bit, pid := range orderedParents(g, curr.id) {
			if pid == "" {
				continue
			}
			slot := fanSlot{
				personID:   pid,
				childID:    curr.id,
				generation: curr.gen + 1,
				index:      curr.index*2 + bit,
			}
			slots = append(slots, slot)
			queue = append(queue, pending{id: pid, gen: slot.generation, index: slot.index})
		}
	}
	return slots
}

// orderedParents returns exactly two entries, father-side first; missing
// parents are empty strings so the slot stays vacant.
func orderedParents(g *tree.RootedGraph, id string) [2]string {
	var out [2]string
	parents := g.Node(id).Parents
	switch len(parents) {
	case 0:
		return out
	case 1:
		if g.Node(parents[0]).Sex == gen.SexFemale {
			out[1] = parents[0]
		} else {
			out[0] = parents[0]
		}
		return out
	default:
		out[0], out[1] = parents[0], parents[1]
		if g.Node(out[0]).Sex == gen.SexFemale && g.Node(out[1]).Sex == gen.SexMale {
			out[0], out[1] = out[1], out[0]
		}
		return out
	}
}

// slotAngle returns the centered angle of slot index k in generation g for
// the given sweep (radians). The sweep is centered on straight-up, paternal
// slots toward the left.
func slotAngle(k, g int, sweep float64) float64 {
	sector := sweep / float64(uint(1)<<uint(g))
	start := math.Pi/2 + sweep/2
	return start - (float64(k)+0.5)*sector
}

// polar converts ring coordinates to Cartesian ones, with ancestors opening
// upward (negative y).
func polar(radius, angle float64) Point {
	return Point{
		X: radius * math.Cos(angle),
		Y: -radius * math.Sin(angle),
	}
}
