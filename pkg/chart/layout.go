package chart

import (
	"encoding/json"
	"os"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree"
	"github.com/kindredlab/kintree/pkg/tree/layout"
	"github.com/kindredlab/kintree/pkg/tree/page"
)

// =============================================================================
// Layout - Renderer Input Format
// =============================================================================

// Layout is the serialization format renderers consume (layout.json).
//
// Geometry and classification travel together: every placed node carries its
// label, sex, and generation offset alongside its coordinates, so a renderer
// maps colors and shapes without a second lookup. Page is present only when
// the layout went through the page fitter.
type Layout struct {
	// Chart records which algorithm produced the geometry.
	Chart string `json:"chart" bson:"chart"`

	// Bounds is the enclosure of the geometry, node margin included.
	Bounds layout.Bounds `json:"bounds" bson:"bounds"`

	Nodes []PlacedNode `json:"nodes" bson:"nodes"`
	Edges []PlacedEdge `json:"edges,omitempty" bson:"edges,omitempty"`

	// Page describes the fitted page, when a fitting policy was applied.
	Page *PageInfo `json:"page,omitempty" bson:"page,omitempty"`

	Warnings []errors.Warning `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// PlacedNode is one positioned person.
type PlacedNode struct {
	Node `bson:",inline"`

	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`

	// Estimated marks a fallback position (timeline chart, unknown year).
	Estimated bool `json:"estimated,omitempty" bson:"estimated,omitempty"`
}

// PlacedEdge is a typed edge with its routed path.
type PlacedEdge struct {
	Kind   string         `json:"kind" bson:"kind"`
	From   string         `json:"from" bson:"from"`
	To     string         `json:"to" bson:"to"`
	Points []layout.Point `json:"points" bson:"points"`
}

// PageInfo records the page fitting outcome.
type PageInfo struct {
	Size        string  `json:"size" bson:"size"`
	Width       float64 `json:"width" bson:"width"`
	Height      float64 `json:"height" bson:"height"`
	Orientation string  `json:"orientation" bson:"orientation"`
	Scale       float64 `json:"scale" bson:"scale"`
}

// =============================================================================
// Result → Layout Conversion
// =============================================================================

// FromResult combines a layout result with the graph it was computed from.
// Node order follows the graph's traversal order.
func FromResult(g *tree.RootedGraph, res *layout.Result) Layout {
	out := Layout{
		Chart:    string(res.Chart),
		Bounds:   res.Bounds,
		Nodes:    make([]PlacedNode, 0, len(res.Positions)),
		Edges:    make([]PlacedEdge, len(res.Edges)),
		Warnings: g.Warnings,
	}

	for _, n := range g.Nodes() {
		pos, placed := res.Positions[n.ID]
		if !placed {
			// Fan charts leave non-ancestors out of the geometry.
			continue
		}
		out.Nodes = append(out.Nodes, PlacedNode{
			Node:      nodeFromGraph(n),
			X:         pos.X,
			Y:         pos.Y,
			Estimated: res.Estimated[n.ID],
		})
	}

	for i, e := range res.Edges {
		out.Edges[i] = PlacedEdge{
			Kind:   e.Kind.String(),
			From:   e.From,
			To:     e.To,
			Points: e.Points,
		}
	}

	return out
}

// WithPage attaches a page fitting outcome to the layout.
func (l Layout) WithPage(out page.Outcome) Layout {
	l.Page = &PageInfo{
		Size:        out.Page.Size.Name,
		Width:       out.Page.PageWidth(),
		Height:      out.Page.PageHeight(),
		Orientation: string(out.Page.Orientation),
		Scale:       out.Scale,
	}
	return l
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that the geometry is present.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal layout")
	}
	if len(l.Nodes) == 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "layout must contain placed nodes")
	}
	if _, err := layout.ParseKind(l.Chart); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return UnmarshalLayout(data)
}
