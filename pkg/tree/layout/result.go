package layout

import (
	"math"

	"github.com/kindredlab/kintree/pkg/tree"
)

// Point is a 2-D coordinate in user units.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// RoutedEdge is a typed edge with its computed path. Straight edges carry
// two points; orthogonally routed edges carry three or more.
type RoutedEdge struct {
	Kind   tree.EdgeKind
	From   string
	To     string
	Points []Point
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Result is the output contract consumed by renderers. It is produced once
// per request, optionally adjusted by the page fitter, and then owned by a
// single consumer; the engine keeps no reference after handing it over.
type Result struct {
	// Positions maps person id to final node position.
	Positions map[string]Point

	// Edges are the routed edges in graph order.
	Edges []RoutedEdge

	// Bounds is the tight enclosure of all node positions plus the
	// NodeRadius margin.
	Bounds Bounds

	// Estimated flags people placed at a fallback position because their
	// birth year is unknown (timeline chart only). A renderer may style
	// them distinctly; the engine attaches no other meaning.
	Estimated map[string]bool

	// Chart records which algorithm produced the result.
	Chart Kind
}

// computeBounds derives the bounding box from the node positions.
// Edge points never extend past node extremes in any strategy here, so
// positions alone determine the box.
func computeBounds(positions map[string]Point) Bounds {
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range positions {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	if len(positions) == 0 {
		return Bounds{}
	}
	b.MinX -= NodeRadius
	b.MinY -= NodeRadius
	b.MaxX += NodeRadius
	b.MaxY += NodeRadius
	return b
}

// Scale multiplies every node position, edge point, and bound by factor.
// Used by the page fitter; factor must be > 0.
func (r *Result) Scale(factor float64) {
	for id, p := range r.Positions {
		r.Positions[id] = Point{X: p.X * factor, Y: p.Y * factor}
	}
	for i := range r.Edges {
		for j, p := range r.Edges[i].Points {
			r.Edges[i].Points[j] = Point{X: p.X * factor, Y: p.Y * factor}
		}
	}
	r.Bounds = Bounds{
		MinX: r.Bounds.MinX * factor,
		MinY: r.Bounds.MinY * factor,
		MaxX: r.Bounds.MaxX * factor,
		MaxY: r.Bounds.MaxY * factor,
	}
}
