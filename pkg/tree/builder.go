package tree

import (
	"context"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/gen"
)

// MaxDepth is the safety ceiling for traversal depths. Requests above it are
// clamped and a DEPTH_CLAMPED warning is attached to the graph, bounding
// memory for arbitrarily deep (or cyclic) relationship data.
const MaxDepth = 20

// BuildOptions configures a graph build.
type BuildOptions struct {
	// AncestorDepth is the number of parent generations to traverse (>= 0).
	AncestorDepth int
	// DescendantDepth is the number of child generations to traverse (>= 0).
	DescendantDepth int
	// IncludeSpouses adds each visited person's spouses at the same
	// generation offset without traversing them further.
	IncludeSpouses bool
}

// Builder turns a relationship store into rooted graphs.
// A Builder is stateless and safe for reuse across requests.
type Builder struct {
	store gen.Store
}

// NewBuilder creates a Builder over the given store.
func NewBuilder(store gen.Store) *Builder {
	return &Builder{store: store}
}

// Build constructs the rooted graph for the given root person.
//
// Two independent breadth-first traversals run from the root: upward via
// parent links up to AncestorDepth levels, and downward via child links up
// to DescendantDepth levels. A shared visited set keyed by person id
// prevents infinite recursion and enforces pedigree collapse: a person
// reachable via multiple paths is materialized once, with edges from every
// path pointing at the single node.
//
// Build fails with PERSON_NOT_FOUND if the root id is unknown and with
// INVALID_INPUT for negative depths. No partial graph is ever returned.
func (b *Builder) Build(ctx context.Context, rootID string, opts BuildOptions) (*RootedGraph, error) {
	if opts.AncestorDepth < 0 || opts.DescendantDepth < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"depths must be non-negative (got ancestors=%d, descendants=%d)",
			opts.AncestorDepth, opts.DescendantDepth)
	}

	var warnings []errors.Warning
	ancestorDepth, descendantDepth := opts.AncestorDepth, opts.DescendantDepth
	if ancestorDepth > MaxDepth {
		warnings = append(warnings, errors.Warnf(errors.WarnCodeDepthClamped,
			"ancestor depth reduced from %d to %d", ancestorDepth, MaxDepth))
		ancestorDepth = MaxDepth
	}
	if descendantDepth > MaxDepth {
		warnings = append(warnings, errors.Warnf(errors.WarnCodeDepthClamped,
			"descendant depth reduced from %d to %d", descendantDepth, MaxDepth))
		descendantDepth = MaxDepth
	}

	root, err := b.store.PersonByID(ctx, rootID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "look up root %q", rootID)
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodePersonNotFound, "person %q not in store", rootID)
	}

	g := newRootedGraph(rootID, ancestorDepth, descendantDepth)
	g.Warnings = warnings
	g.addNode(nodeFromPerson(root, 0))

	if err := b.traverseUp(ctx, g, ancestorDepth); err != nil {
		return nil, err
	}
	if err := b.traverseDown(ctx, g, descendantDepth); err != nil {
		return nil, err
	}
	if opts.IncludeSpouses {
		if err := b.attachSpouses(ctx, g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// traverseUp walks parent links breadth-first from the root.
func (b *Builder) traverseUp(ctx context.Context, g *RootedGraph, depth int) error {
	queue := []string{g.rootID}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		gen := g.Node(curr).Generation
		if -(gen - 1) > depth {
			continue
		}

		parents, err := b.store.ParentsOf(ctx, curr)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "parents of %q", curr)
		}
		for _, pid := range parents {
			if g.Has(pid) {
				// Pedigree collapse: second path into a known ancestor
				// contributes its edge only.
				g.addEdge(EdgeParentChild, pid, curr)
				continue
			}
			person, err := b.store.PersonByID(ctx, pid)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "look up %q", pid)
			}
			if person == nil {
				continue
			}
			g.addNode(nodeFromPerson(person, gen-1))
			g.addEdge(EdgeParentChild, pid, curr)
			queue = append(queue, pid)
		}
	}
	return nil
}

// traverseDown walks child links breadth-first from the root.
func (b *Builder) traverseDown(ctx context.Context, g *RootedGraph, depth int) error {
	queue := []string{g.rootID}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		gen := g.Node(curr).Generation
		if gen+1 > depth {
			continue
		}

		children, err := b.store.ChildrenOf(ctx, curr)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "children of %q", curr)
		}
		for _, cid := range children {
			if g.Has(cid) {
				g.addEdge(EdgeParentChild, curr, cid)
				continue
			}
			person, err := b.store.PersonByID(ctx, cid)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "look up %q", cid)
			}
			if person == nil {
				continue
			}
			g.addNode(nodeFromPerson(person, gen+1))
			g.addEdge(EdgeParentChild, curr, cid)
			queue = append(queue, cid)
		}
	}
	return nil
}

// attachSpouses adds spouses of every traversed person as sibling nodes at
// the same generation offset. Spouses are linked but never themselves
// traversed; the snapshot of the current node order guarantees that.
func (b *Builder) attachSpouses(ctx context.Context, g *RootedGraph) error {
	traversed := make([]string, len(g.order))
	copy(traversed, g.order)

	for _, id := range traversed {
		spouses, err := b.store.SpousesOf(ctx, id)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "spouses of %q", id)
		}
		for _, sid := range spouses {
			if g.Has(sid) {
				// Independently reachable spouse keeps its traversed
				// generation; only the spousal edge is added.
				g.addEdge(EdgeSpouse, id, sid)
				continue
			}
			person, err := b.store.PersonByID(ctx, sid)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "look up %q", sid)
			}
			if person == nil {
				continue
			}
			node := nodeFromPerson(person, g.Node(id).Generation)
			node.SpouseOnly = true
			g.addNode(node)
			g.addEdge(EdgeSpouse, id, sid)
		}
	}
	return nil
}

func nodeFromPerson(p *gen.Person, generation int) PersonNode {
	return PersonNode{
		ID:         p.ID,
		Label:      p.DisplayLabel(),
		BirthYear:  p.BirthYear,
		DeathYear:  p.DeathYear,
		Sex:        p.Sex,
		Generation: generation,
	}
}
