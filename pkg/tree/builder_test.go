package tree

import (
	"context"
	"testing"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/gen"
)

// familyStore builds a three-generation family:
//
//	ggp (shared great-grandparent, reachable via both gf and gm)
//	├── gf ─┬─ gm
//	│       │
//	└───────┴── father ─┬─ mother
//	                    │
//	                  root ─┬─ partner
//	                        │
//	                      child
func familyStore(t *testing.T) *gen.MemStore {
	t.Helper()
	s := gen.NewMemStore()
	people := []gen.Person{
		{ID: "root", Name: "Root", BirthYear: 1960, Parents: []string{"father", "mother"}, Spouses: []string{"partner"}, Children: []string{"child"}},
		{ID: "father", Name: "Father", BirthYear: 1930, Sex: gen.SexMale, Parents: []string{"gf", "gm"}, Spouses: []string{"mother"}, Children: []string{"root"}},
		{ID: "mother", Name: "Mother", BirthYear: 1932, Sex: gen.SexFemale, Spouses: []string{"father"}, Children: []string{"root"}},
		{ID: "gf", Name: "Grandfather", BirthYear: 1900, Sex: gen.SexMale, Parents: []string{"ggp"}, Spouses: []string{"gm"}, Children: []string{"father"}},
		{ID: "gm", Name: "Grandmother", BirthYear: 1902, Sex: gen.SexFemale, Parents: []string{"ggp"}, Spouses: []string{"gf"}, Children: []string{"father"}},
		{ID: "ggp", Name: "Great", BirthYear: 1870, Children: []string{"gf", "gm"}},
		{ID: "partner", Name: "Partner", BirthYear: 1961, Spouses: []string{"root"}, Children: []string{"child"}},
		{ID: "child", Name: "Child", BirthYear: 1990, Parents: []string{"root", "partner"}},
	}
	for _, p := range people {
		if _, err := s.Add(p); err != nil {
			t.Fatalf("Add(%s): %v", p.ID, err)
		}
	}
	return s
}

func buildFamily(t *testing.T, opts BuildOptions) *RootedGraph {
	t.Helper()
	g, err := NewBuilder(familyStore(t)).Build(context.Background(), "root", opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuildGenerationOffsets(t *testing.T) {
	g := buildFamily(t, BuildOptions{AncestorDepth: 3, DescendantDepth: 1})

	tests := []struct {
		id   string
		want int
	}{
		{"root", 0},
		{"father", -1},
		{"mother", -1},
		{"gf", -2},
		{"gm", -2},
		{"ggp", -3},
		{"child", 1},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n := g.Node(tt.id)
			if n == nil {
				t.Fatalf("node %s missing", tt.id)
			}
			if n.Generation != tt.want {
				t.Errorf("Generation = %d, want %d", n.Generation, tt.want)
			}
		})
	}

	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildPedigreeCollapse(t *testing.T) {
	g := buildFamily(t, BuildOptions{AncestorDepth: 3})

	// ggp is reachable via gf and via gm but must exist once.
	count := 0
	for _, n := range g.Nodes() {
		if n.ID == "ggp" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("ggp materialized %d times, want 1", count)
	}

	// Both paths contribute an edge into the single node.
	incoming := 0
	for _, e := range g.Edges() {
		if e.Kind == EdgeParentChild && e.From == "ggp" {
			incoming++
		}
	}
	if incoming != 2 {
		t.Errorf("edges from ggp = %d, want 2 (one per path)", incoming)
	}
}

func TestBuildDepthLimits(t *testing.T) {
	tests := []struct {
		name      string
		opts      BuildOptions
		wantNodes []string
		skipNodes []string
	}{
		{
			name:      "ancestors only one level",
			opts:      BuildOptions{AncestorDepth: 1},
			wantNodes: []string{"root", "father", "mother"},
			skipNodes: []string{"gf", "gm", "ggp", "child"},
		},
		{
			name:      "descendants only",
			opts:      BuildOptions{DescendantDepth: 1},
			wantNodes: []string{"root", "child"},
			skipNodes: []string{"father", "mother"},
		},
		{
			name:      "zero depths yields root alone",
			opts:      BuildOptions{},
			wantNodes: []string{"root"},
			skipNodes: []string{"father", "child"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildFamily(t, tt.opts)
			for _, id := range tt.wantNodes {
				if !g.Has(id) {
					t.Errorf("missing node %s", id)
				}
			}
			for _, id := range tt.skipNodes {
				if g.Has(id) {
					t.Errorf("unexpected node %s", id)
				}
			}
		})
	}
}

func TestBuildSpouseInclusion(t *testing.T) {
	g := buildFamily(t, BuildOptions{AncestorDepth: 1, DescendantDepth: 1, IncludeSpouses: true})

	partner := g.Node("partner")
	if partner == nil {
		t.Fatal("partner not included")
	}
	if partner.Generation != 0 {
		t.Errorf("partner generation = %d, want 0", partner.Generation)
	}
	if !partner.SpouseOnly {
		t.Error("partner should be marked SpouseOnly")
	}

	// father and mother are both traversed; their spousal edge must exist
	// exactly once and neither is SpouseOnly.
	spouseEdges := 0
	for _, e := range g.Edges() {
		if e.Kind == EdgeSpouse && e.From == "father" && e.To == "mother" {
			spouseEdges++
		}
	}
	if spouseEdges != 1 {
		t.Errorf("father-mother spouse edges = %d, want 1", spouseEdges)
	}
	if g.Node("father").SpouseOnly || g.Node("mother").SpouseOnly {
		t.Error("independently reachable spouses must not be SpouseOnly")
	}
}

func TestBuildSpousesNotTraversed(t *testing.T) {
	s := familyStore(t)
	// Give partner a parent that is reachable only through partner.
	if _, err := s.Add(gen.Person{ID: "inlaw", Children: []string{"partner"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	g, err := NewBuilder(s).Build(context.Background(), "root", BuildOptions{
		AncestorDepth: 2, DescendantDepth: 1, IncludeSpouses: true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Has("inlaw") {
		t.Error("spouse's ancestors must not be traversed")
	}
}

func TestBuildRootNotFound(t *testing.T) {
	_, err := NewBuilder(familyStore(t)).Build(context.Background(), "ghost", BuildOptions{})
	if !errors.Is(err, errors.ErrCodePersonNotFound) {
		t.Errorf("error = %v, want PERSON_NOT_FOUND", err)
	}
}

func TestBuildNegativeDepth(t *testing.T) {
	_, err := NewBuilder(familyStore(t)).Build(context.Background(), "root", BuildOptions{AncestorDepth: -1})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestBuildDepthClamped(t *testing.T) {
	g := buildFamily(t, BuildOptions{AncestorDepth: 99, DescendantDepth: 99})

	if g.AncestorDepth != MaxDepth || g.DescendantDepth != MaxDepth {
		t.Errorf("effective depths = (%d, %d), want (%d, %d)",
			g.AncestorDepth, g.DescendantDepth, MaxDepth, MaxDepth)
	}
	if len(g.Warnings) != 2 {
		t.Fatalf("warnings = %d, want 2", len(g.Warnings))
	}
	for _, w := range g.Warnings {
		if w.Code != errors.WarnCodeDepthClamped {
			t.Errorf("warning code = %s, want DEPTH_CLAMPED", w.Code)
		}
	}
}

func TestBuildCyclicDataTerminates(t *testing.T) {
	// Malformed store where two people are each other's parent.
	s := gen.NewMemStore()
	for _, p := range []gen.Person{
		{ID: "a", Parents: []string{"b"}, Children: []string{"b"}},
		{ID: "b", Parents: []string{"a"}, Children: []string{"a"}},
	} {
		if _, err := s.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	g, err := NewBuilder(s).Build(context.Background(), "a", BuildOptions{AncestorDepth: 5, DescendantDepth: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
}

func TestViewsDisjointExceptRoot(t *testing.T) {
	g := buildFamily(t, BuildOptions{AncestorDepth: 3, DescendantDepth: 1, IncludeSpouses: true})

	anc, desc := g.AncestorView(), g.DescendantView()

	shared := 0
	for _, n := range anc.Nodes() {
		if desc.Has(n.ID) {
			shared++
			if n.ID != "root" {
				t.Errorf("views share non-root node %s", n.ID)
			}
		}
	}
	if shared != 1 {
		t.Errorf("views share %d nodes, want exactly 1 (the root)", shared)
	}

	if anc.Has("partner") {
		t.Error("root's spouse belongs to the descendant view")
	}
	if !desc.Has("partner") {
		t.Error("descendant view should include the root's spouse")
	}
}
