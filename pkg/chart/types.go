package chart

import (
	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/gen"
	"github.com/kindredlab/kintree/pkg/tree"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Edge kinds as serialized.
const (
	EdgeKindParentChild = "parent-child"
	EdgeKindSpouse      = "spouse"
)

// =============================================================================
// Graph - Family Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for rooted family graphs.
// Used for files, API responses, and caching.
//
// The format is designed for round-trip fidelity: build → export →
// re-import produces a graph that lays out identically, including the
// traversal order the insertion tie-break depends on.
type Graph struct {
	Root            string           `json:"root" bson:"root"`
	AncestorDepth   int              `json:"ancestor_depth" bson:"ancestor_depth"`
	DescendantDepth int              `json:"descendant_depth" bson:"descendant_depth"`
	Nodes           []Node           `json:"nodes" bson:"nodes"`
	Edges           []Edge           `json:"edges" bson:"edges"`
	Warnings        []errors.Warning `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// =============================================================================
// Node - Unified Node Type
// =============================================================================

// Node is the unified person type for all serialization contexts.
// Used in both Graph and Layout types for consistency.
type Node struct {
	ID         string  `json:"id" bson:"id"`
	Label      string  `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Sex        gen.Sex `json:"sex,omitempty" bson:"sex,omitempty"`
	BirthYear  int     `json:"birth_year,omitempty" bson:"birth_year,omitempty"`
	DeathYear  int     `json:"death_year,omitempty" bson:"death_year,omitempty"`
	Generation int     `json:"generation" bson:"generation"` // Signed offset, 0 = root
	SpouseOnly bool    `json:"spouse_only,omitempty" bson:"spouse_only,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Typed Family Connection
// =============================================================================

// Edge represents a typed edge in the family graph.
type Edge struct {
	Kind string `json:"kind" bson:"kind"` // "parent-child" or "spouse"
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// =============================================================================
// RootedGraph ↔ Graph Conversion
// =============================================================================

// FromRooted converts a rooted graph to its serialization format.
// Nodes and edges keep the graph's traversal order.
func FromRooted(g *tree.RootedGraph) Graph {
	nodes := g.Nodes()
	edges := g.Edges()

	out := Graph{
		Root:            g.RootID(),
		AncestorDepth:   g.AncestorDepth,
		DescendantDepth: g.DescendantDepth,
		Nodes:           make([]Node, len(nodes)),
		Edges:           make([]Edge, len(edges)),
		Warnings:        g.Warnings,
	}

	for i, n := range nodes {
		out.Nodes[i] = nodeFromGraph(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{Kind: e.Kind.String(), From: e.From, To: e.To}
	}

	return out
}

// ToRooted converts a Graph back into a rooted graph.
// Returns an error when the structure violates the graph invariants.
func ToRooted(gj Graph) (*tree.RootedGraph, error) {
	nodes := make([]tree.PersonNode, len(gj.Nodes))
	for i, nj := range gj.Nodes {
		nodes[i] = tree.PersonNode{
			ID:         nj.ID,
			Label:      nj.Label,
			Sex:        nj.Sex,
			BirthYear:  nj.BirthYear,
			DeathYear:  nj.DeathYear,
			Generation: nj.Generation,
			SpouseOnly: nj.SpouseOnly,
		}
	}

	edges := make([]tree.Edge, len(gj.Edges))
	for i, ej := range gj.Edges {
		kind, err := parseEdgeKind(ej.Kind)
		if err != nil {
			return nil, err
		}
		edges[i] = tree.Edge{Kind: kind, From: ej.From, To: ej.To}
	}

	return tree.Restore(gj.Root, gj.AncestorDepth, gj.DescendantDepth, nodes, edges, gj.Warnings)
}

// =============================================================================
// Internal Helpers
// =============================================================================

// nodeFromGraph converts a tree.PersonNode to a serialization Node.
// This is the single point of conversion for all graph→Node operations.
// Link slices are not serialized; they are rebuilt from the edge list.
func nodeFromGraph(n *tree.PersonNode) Node {
	return Node{
		ID:         n.ID,
		Label:      n.Label,
		Sex:        n.Sex,
		BirthYear:  n.BirthYear,
		DeathYear:  n.DeathYear,
		Generation: n.Generation,
		SpouseOnly: n.SpouseOnly,
	}
}

func parseEdgeKind(s string) (tree.EdgeKind, error) {
	switch s {
	case EdgeKindParentChild:
		return tree.EdgeParentChild, nil
	case EdgeKindSpouse:
		return tree.EdgeSpouse, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown edge kind %q", s)
}
