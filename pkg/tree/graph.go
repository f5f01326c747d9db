// Package tree builds traversal-ready rooted family graphs.
//
// A [RootedGraph] is the in-memory form the layout strategies consume: the
// set of people reachable from a chosen root within configured ancestor and
// descendant generation limits, with typed edges and a signed generation
// offset per person (0 = root, negative = ancestors, positive = descendants).
//
// # Pedigree collapse
//
// Family graphs are not trees. A person reachable as an ancestor via two
// distinct paths (a shared great-grandparent through both parents, say) is
// materialized exactly once; the edges from both paths point at the single
// node. This is a deliberate policy: the graph reflects biological fact, and
// every layout strategy accepts multiple incoming edges per node as normal.
package tree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kindredlab/kintree/pkg/gen"
	kerrors "github.com/kindredlab/kintree/pkg/errors"
)

var (
	// ErrUnreachableNode is returned by [RootedGraph.Validate] when a node
	// has no edge path back to the root. This indicates builder corruption.
	ErrUnreachableNode = errors.New("node unreachable from root")

	// ErrInconsistentGeneration is returned by [RootedGraph.Validate] when no
	// traversed edge supports a node's generation offset (a child's offset
	// must equal some parent's offset + 1; spouses share an offset).
	ErrInconsistentGeneration = errors.New("generation offset inconsistent with edges")
)

// EdgeKind distinguishes parent-child and spousal edges.
type EdgeKind int

const (
	// EdgeParentChild connects a parent (From) to a child (To).
	EdgeParentChild EdgeKind = iota
	// EdgeSpouse connects two spouses at the same generation offset.
	// Endpoints are stored in lexicographic order.
	EdgeSpouse
)

// String returns the serialized edge kind.
func (k EdgeKind) String() string {
	if k == EdgeSpouse {
		return "spouse"
	}
	return "parent-child"
}

// PersonNode is one person in a rooted graph.
//
// Generation is derived, never authored: the builder assigns it exactly once
// via breadth-first propagation from the root. Link slices contain only ids
// present in this graph, in traversal order.
type PersonNode struct {
	ID        string
	Label     string
	BirthYear int // 0 = unknown
	DeathYear int // 0 = unknown
	Sex       gen.Sex
	Generation int

	Parents  []string
	Spouses  []string
	Children []string

	// SpouseOnly marks people added by the spouse-inclusion policy.
	// They are linked at their partner's generation but were not
	// traversed for further ancestors or descendants.
	SpouseOnly bool
}

// Edge is a typed connection between two people in the graph.
// Routed geometry lives in the layout result, not here.
type Edge struct {
	Kind EdgeKind
	From string
	To   string
}

// RootedGraph owns the people and edges reachable from the root within the
// configured depth limits. It is constructed once per generation request and
// discarded after layout; it holds no state across requests and is not safe
// for concurrent mutation.
type RootedGraph struct {
	rootID string
	nodes  map[string]*PersonNode
	order  []string
	edges  []Edge
	seen   map[string]struct{} // edge dedup keys

	// AncestorDepth and DescendantDepth are the effective (clamped) limits
	// the graph was built with.
	AncestorDepth   int
	DescendantDepth int

	// Warnings carries non-fatal conditions such as depth clamping.
	Warnings []kerrors.Warning
}

func newRootedGraph(rootID string, ancestorDepth, descendantDepth int) *RootedGraph {
	return &RootedGraph{
		rootID:          rootID,
		nodes:           make(map[string]*PersonNode),
		seen:            make(map[string]struct{}),
		AncestorDepth:   ancestorDepth,
		DescendantDepth: descendantDepth,
	}
}

// RootID returns the id of the root person.
func (g *RootedGraph) RootID() string { return g.rootID }

// Root returns the root person node.
func (g *RootedGraph) Root() *PersonNode { return g.nodes[g.rootID] }

// Node returns the person with the given id, or nil.
func (g *RootedGraph) Node(id string) *PersonNode { return g.nodes[id] }

// Has reports whether the id is present in the graph.
func (g *RootedGraph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all person nodes in traversal (insertion) order.
func (g *RootedGraph) Nodes() []*PersonNode {
	out := make([]*PersonNode, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *RootedGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of people in the graph.
func (g *RootedGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *RootedGraph) EdgeCount() int { return len(g.edges) }

// Generations returns the sorted list of generation offsets present.
func (g *RootedGraph) Generations() []int {
	present := make(map[int]struct{})
	for _, n := range g.nodes {
		present[n.Generation] = struct{}{}
	}
	out := make([]int, 0, len(present))
	for offset := range present {
		out = append(out, offset)
	}
	sort.Ints(out)
	return out
}

// NodesInGeneration returns the people at the given offset, in traversal order.
func (g *RootedGraph) NodesInGeneration(offset int) []*PersonNode {
	var out []*PersonNode
	for _, id := range g.order {
		if n := g.nodes[id]; n.Generation == offset {
			out = append(out, n)
		}
	}
	return out
}

// addNode inserts a node. It is a no-op if the id is already present,
// which is exactly the pedigree collapse behavior the builder relies on.
func (g *RootedGraph) addNode(n PersonNode) {
	if _, exists := g.nodes[n.ID]; exists {
		return
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
}

// addEdge inserts a deduplicated typed edge and maintains the endpoint
// link slices. Spouse edges are canonicalized so each couple yields one edge.
func (g *RootedGraph) addEdge(kind EdgeKind, from, to string) {
	if kind == EdgeSpouse && to < from {
		from, to = to, from
	}
	key := fmt.Sprintf("%d|%s|%s", kind, from, to)
	if _, dup := g.seen[key]; dup {
		return
	}
	g.seen[key] = struct{}{}
	g.edges = append(g.edges, Edge{Kind: kind, From: from, To: to})

	src, dst := g.nodes[from], g.nodes[to]
	switch kind {
	case EdgeParentChild:
		src.Children = append(src.Children, to)
		dst.Parents = append(dst.Parents, from)
	case EdgeSpouse:
		src.Spouses = append(src.Spouses, to)
		dst.Spouses = append(dst.Spouses, from)
	}
}

// Restore reassembles a graph from previously serialized parts.
//
// Link slices on the given nodes are ignored; they are rebuilt from the edge
// list so the graph and its links cannot disagree. The result is validated
// before it is returned, so a hand-edited file that breaks reachability or
// generation consistency is rejected here rather than inside a layout pass.
func Restore(rootID string, ancestorDepth, descendantDepth int, nodes []PersonNode, edges []Edge, warnings []kerrors.Warning) (*RootedGraph, error) {
	g := newRootedGraph(rootID, ancestorDepth, descendantDepth)
	for _, n := range nodes {
		n.Parents, n.Spouses, n.Children = nil, nil, nil
		g.addNode(n)
	}
	if g.Root() == nil {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "root %q not among the %d nodes", rootID, len(nodes))
	}
	for _, e := range edges {
		if !g.Has(e.From) || !g.Has(e.To) {
			return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "edge %s→%s references a person outside the graph", e.From, e.To)
		}
		g.addEdge(e.Kind, e.From, e.To)
	}
	if err := g.Validate(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "restored graph is not well-formed")
	}
	g.Warnings = append(g.Warnings, warnings...)
	return g, nil
}

// Validate checks the structural invariants of the graph: every non-root
// node is reachable from the root, and every generation offset is supported
// by at least one traversed edge. Returns nil for a well-formed graph.
func (g *RootedGraph) Validate() error {
	if len(g.nodes) == 0 {
		return nil
	}

	reached := map[string]struct{}{g.rootID: {}}
	queue := []string{g.rootID}
	adjacent := make(map[string][]string, len(g.nodes))
	for _, e := range g.edges {
		adjacent[e.From] = append(adjacent[e.From], e.To)
		adjacent[e.To] = append(adjacent[e.To], e.From)
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[curr] {
			if _, ok := reached[next]; !ok {
				reached[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	for _, id := range g.order {
		if _, ok := reached[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnreachableNode, id)
		}
	}

	supported := map[string]bool{g.rootID: true}
	for _, e := range g.edges {
		from, to := g.nodes[e.From], g.nodes[e.To]
		switch e.Kind {
		case EdgeParentChild:
			if to.Generation == from.Generation+1 {
				supported[e.From] = true
				supported[e.To] = true
			}
		case EdgeSpouse:
			if to.Generation == from.Generation {
				supported[e.From] = true
				supported[e.To] = true
			}
		}
	}
	for _, id := range g.order {
		if !supported[id] {
			return fmt.Errorf("%w: %s (offset %d)", ErrInconsistentGeneration, id, g.nodes[id].Generation)
		}
	}

	return nil
}

// AncestorView returns the subgraph of the root and all people with a
// negative generation offset, plus the edges among them. The root's spouses
// stay out so the view shares only the root with [DescendantView].
func (g *RootedGraph) AncestorView() *RootedGraph {
	return g.view(func(n *PersonNode) bool {
		return n.ID == g.rootID || n.Generation < 0
	})
}

// DescendantView returns the subgraph of the root, all people with a
// positive generation offset, and generation-0 spouses of the root.
func (g *RootedGraph) DescendantView() *RootedGraph {
	return g.view(func(n *PersonNode) bool {
		return n.ID == g.rootID || n.Generation > 0 || (n.Generation == 0 && n.SpouseOnly)
	})
}

func (g *RootedGraph) view(keep func(*PersonNode) bool) *RootedGraph {
	sub := newRootedGraph(g.rootID, g.AncestorDepth, g.DescendantDepth)
	for _, id := range g.order {
		n := g.nodes[id]
		if keep(n) {
			cp := *n
			cp.Parents, cp.Spouses, cp.Children = nil, nil, nil
			sub.addNode(cp)
		}
	}
	for _, e := range g.edges {
		if sub.Has(e.From) && sub.Has(e.To) {
			sub.addEdge(e.Kind, e.From, e.To)
		}
	}
	return sub
}
