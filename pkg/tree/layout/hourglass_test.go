package layout

import (
	"testing"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree"
)

func TestHourglassRootAtOrigin(t *testing.T) {
	res := compute(t, fullGraph(t), Options{Chart: ChartHourglass})

	if p := res.Positions["root"]; p.X != 0 || p.Y != 0 {
		t.Errorf("root at %v, want origin", p)
	}
}

func TestHourglassHalvesSeparated(t *testing.T) {
	g := fullGraph(t)
	res := compute(t, g, Options{Chart: ChartHourglass})

	if len(res.Positions) != g.NodeCount() {
		t.Fatalf("positions for %d of %d nodes", len(res.Positions), g.NodeCount())
	}
	for _, n := range g.Nodes() {
		y := res.Positions[n.ID].Y
		switch {
		case n.Generation < 0 && y >= 0:
			t.Errorf("ancestor %s at y=%v, want above the root", n.ID, y)
		case n.Generation > 0 && y <= 0:
			t.Errorf("descendant %s at y=%v, want below the root", n.ID, y)
		case n.Generation == 0 && y != 0:
			t.Errorf("%s at y=%v, want the root band", n.ID, y)
		}
	}
}

func TestHourglassSpouseStaysOnRootBand(t *testing.T) {
	res := compute(t, fullGraph(t), Options{Chart: ChartHourglass})

	root, partner := res.Positions["root"], res.Positions["partner"]
	if partner.Y != root.Y {
		t.Errorf("partner at y=%v, want root band y=%v", partner.Y, root.Y)
	}
}

func TestHourglassRoutesAllEdges(t *testing.T) {
	g := fullGraph(t)
	res := compute(t, g, Options{Chart: ChartHourglass})

	if got, want := len(res.Edges), len(g.Edges()); got != want {
		t.Errorf("routed %d edges, want %d", got, want)
	}
}

func TestHourglassRequiresBothSides(t *testing.T) {
	tests := []struct {
		name string
		opts tree.BuildOptions
	}{
		{"ancestors only", tree.BuildOptions{AncestorDepth: 2}},
		{"descendants only", tree.BuildOptions{DescendantDepth: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.opts)
			_, err := Compute(g, Options{Chart: ChartHourglass})
			if !errors.Is(err, errors.ErrCodeUnsupportedConfiguration) {
				t.Errorf("err = %v, want UNSUPPORTED_CONFIGURATION", err)
			}
		})
	}
}
