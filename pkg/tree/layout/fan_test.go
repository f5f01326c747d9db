package layout

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/gen"
	"github.com/kindredlab/kintree/pkg/tree"
)

// ancestorStore builds a complete three-generation pedigree: ids encode the
// path from the root, "f" appended for a father and "m" for a mother
// ("fm" is the father's mother).
func ancestorStore(t *testing.T) *gen.MemStore {
	t.Helper()
	s := gen.NewMemStore()
	people := map[string]gen.Person{"root": {ID: "root", BirthYear: 1990}}
	paths := []string{""}
	for g := 1; g <= 3; g++ {
		var next []string
		for _, path := range paths {
			for _, side := range []string{"f", "m"} {
				id := path + side
				sex := gen.SexMale
				if side == "m" {
					sex = gen.SexFemale
				}
				childID := path
				if childID == "" {
					childID = "root"
				}
				people[id] = gen.Person{ID: id, Sex: sex, Children: []string{childID}}
				child := people[childID]
				child.Parents = append(child.Parents, id)
				people[childID] = child
				next = append(next, id)
			}
		}
		paths = next
	}
	for _, id := range append([]string{"root"}, allPaths(3)...) {
		if _, err := s.Add(people[id]); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}
	return s
}

func allPaths(depth int) []string {
	var out []string
	paths := []string{""}
	for g := 1; g <= depth; g++ {
		var next []string
		for _, p := range paths {
			next = append(next, p+"f", p+"m")
		}
		out = append(out, next...)
		paths = next
	}
	return out
}

func fanGraph(t *testing.T, depth int) *tree.RootedGraph {
	t.Helper()
	g, err := tree.NewBuilder(ancestorStore(t)).Build(context.Background(), "root", tree.BuildOptions{AncestorDepth: depth})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestFanSlotCount(t *testing.T) {
	res := compute(t, fanGraph(t, 3), Options{Chart: ChartFan})

	// Root plus 2 + 4 + 8 ancestors.
	if got := len(res.Positions); got != 15 {
		t.Errorf("positions = %d, want 15", got)
	}
	if got := len(res.Edges); got != 14 {
		t.Errorf("edges = %d, want 14", got)
	}
}

func TestFanRingRadii(t *testing.T) {
	res := compute(t, fanGraph(t, 3), Options{Chart: ChartFan})

	for id, p := range res.Positions {
		want := float64(len(id)) * DefaultRingWidth
		if id == "root" {
			want = 0
		}
		if got := math.Hypot(p.X, p.Y); math.Abs(got-want) > 1e-9 {
			t.Errorf("%s radius = %v, want %v", id, got, want)
		}
	}
}

func TestFanOpensUpwardFatherLeft(t *testing.T) {
	res := compute(t, fanGraph(t, 1), Options{Chart: ChartFan})

	f, m := res.Positions["f"], res.Positions["m"]
	if f.Y >= 0 || m.Y >= 0 {
		t.Errorf("ancestors should open upward: f=%v m=%v", f, m)
	}
	if f.X >= 0 {
		t.Errorf("father at x=%v, want paternal (left) half", f.X)
	}
	if m.X <= 0 {
		t.Errorf("mother at x=%v, want maternal (right) half", m.X)
	}
}

func TestFanDistinctSectors(t *testing.T) {
	res := compute(t, fanGraph(t, 3), Options{Chart: ChartFan})

	seen := make(map[string]string)
	for id, p := range res.Positions {
		key := fmt.Sprintf("%.6f,%.6f", p.X, p.Y)
		if other, dup := seen[key]; dup {
			t.Errorf("%s and %s share position %s", id, other, key)
		}
		seen[key] = id
	}
}

func TestFanSoleMotherKeepsMaternalSlot(t *testing.T) {
	s := gen.NewMemStore()
	for _, p := range []gen.Person{
		{ID: "root", Parents: []string{"ma"}},
		{ID: "ma", Sex: gen.SexFemale, Children: []string{"root"}},
	} {
		if _, err := s.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	g, err := tree.NewBuilder(s).Build(context.Background(), "root", tree.BuildOptions{AncestorDepth: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res := compute(t, g, Options{Chart: ChartFan})

	// The paternal slot stays vacant; the mother lands on the right.
	if p := res.Positions["ma"]; p.X <= 0 {
		t.Errorf("sole mother at x=%v, want maternal (right) half", p.X)
	}
}

func TestFanCollapsedAncestorOneSlotPerPath(t *testing.T) {
	// pa and ma share both parents, so g1 and g2 appear in two sectors each.
	s := gen.NewMemStore()
	for _, p := range []gen.Person{
		{ID: "kid", Parents: []string{"pa", "ma"}},
		{ID: "pa", Sex: gen.SexMale, Parents: []string{"g1", "g2"}, Children: []string{"kid"}},
		{ID: "ma", Sex: gen.SexFemale, Parents: []string{"g1", "g2"}, Children: []string{"kid"}},
		{ID: "g1", Sex: gen.SexMale, Children: []string{"pa", "ma"}},
		{ID: "g2", Sex: gen.SexFemale, Children: []string{"pa", "ma"}},
	} {
		if _, err := s.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	g, err := tree.NewBuilder(s).Build(context.Background(), "kid", tree.BuildOptions{AncestorDepth: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res := compute(t, g, Options{Chart: ChartFan})

	// One position each, one curved edge per referencing sector.
	if got := len(res.Positions); got != 5 {
		t.Errorf("positions = %d, want 5", got)
	}
	for _, id := range []string{"g1", "g2"} {
		edges := 0
		for _, e := range res.Edges {
			if e.From == id {
				edges++
			}
		}
		if edges != 2 {
			t.Errorf("edges from collapsed %s = %d, want 2", id, edges)
		}
	}
}

func TestFanEdgesCurveThroughSector(t *testing.T) {
	res := compute(t, fanGraph(t, 2), Options{Chart: ChartFan})
	for _, e := range res.Edges {
		if len(e.Points) != 3 {
			t.Errorf("edge %s→%s has %d points, want 3", e.From, e.To, len(e.Points))
		}
	}
}

func TestFanCustomSweep(t *testing.T) {
	narrow := compute(t, fanGraph(t, 1), Options{Chart: ChartFan, SweepDegrees: 90})
	wide := compute(t, fanGraph(t, 1), Options{Chart: ChartFan, SweepDegrees: 180})

	angleOf := func(p Point) float64 { return math.Atan2(-p.Y, p.X) }
	spreadNarrow := angleOf(narrow.Positions["f"]) - angleOf(narrow.Positions["m"])
	spreadWide := angleOf(wide.Positions["f"]) - angleOf(wide.Positions["m"])
	if spreadNarrow >= spreadWide {
		t.Errorf("narrow sweep spread %v should be below wide spread %v", spreadNarrow, spreadWide)
	}
}

func TestFanRejectsDescendants(t *testing.T) {
	g := buildGraph(t, tree.BuildOptions{AncestorDepth: 1, DescendantDepth: 1})
	_, err := Compute(g, Options{Chart: ChartFan})
	if !errors.Is(err, errors.ErrCodeUnsupportedConfiguration) {
		t.Errorf("err = %v, want UNSUPPORTED_CONFIGURATION", err)
	}
}

func TestFanRejectsDescendantDepthEvenWhenChildless(t *testing.T) {
	// The pedigree root has no children, so a descendant traversal places
	// nobody below generation 0. The requested depth still disqualifies the
	// graph: the chart is defined over ancestor-only builds.
	g, err := tree.NewBuilder(ancestorStore(t)).Build(context.Background(), "root",
		tree.BuildOptions{AncestorDepth: 2, DescendantDepth: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = Compute(g, Options{Chart: ChartFan})
	if !errors.Is(err, errors.ErrCodeUnsupportedConfiguration) {
		t.Errorf("err = %v, want UNSUPPORTED_CONFIGURATION", err)
	}
}
