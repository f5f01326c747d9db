// Package page fits computed layouts onto fixed-size pages.
//
// A [Spec] names a page size, orientation, and one of three fitting
// policies. [Fit] applies the policy to a layout result: scaling it down,
// selecting a larger page from the catalog, or asking the caller to rebuild
// the graph with fewer generations. The limit-generations retry loop is
// owned by the pipeline, not this package, which keeps the dependency order
// acyclic (builder → layout → fitter).
package page

import (
	"strings"

	"github.com/kindredlab/kintree/pkg/errors"
	"github.com/kindredlab/kintree/pkg/tree/layout"
)

// Orientation of a page.
type Orientation string

// Orientations.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ParseOrientation validates an orientation string. Empty means portrait.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(s) {
	case "", Portrait:
		return Portrait, nil
	case Landscape:
		return Landscape, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPage, "invalid orientation %q", s)
}

// Policy is the three-way fitting policy.
type Policy string

// Fitting policies.
const (
	// PolicyScale shrinks the geometry to the page (never upscales).
	PolicyScale Policy = "scale"
	// PolicyAutoSize picks the smallest catalog page containing the
	// bounding box, falling back to the largest page plus scaling.
	PolicyAutoSize Policy = "auto-size"
	// PolicyLimitGenerations asks the caller to rebuild with reduced
	// depths until the layout fits, then falls back to scaling.
	PolicyLimitGenerations Policy = "limit-generations"
)

// ParsePolicy validates a policy string. Empty means scale.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyScale:
		return PolicyScale, nil
	case PolicyAutoSize, PolicyLimitGenerations:
		return Policy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidPage,
		"invalid fit policy %q (must be one of: scale, auto-size, limit-generations)", s)
}

// Size is a named page size in points, portrait-oriented.
type Size struct {
	Name   string  `json:"name" bson:"name"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Catalog returns the fixed page catalog ordered smallest to largest.
// Dimensions are PostScript points (1/72 inch).
func Catalog() []Size {
	return []Size{
		{Name: "a5", Width: 420, Height: 595},
		{Name: "letter", Width: 612, Height: 792},
		{Name: "a4", Width: 595, Height: 842},
		{Name: "legal", Width: 612, Height: 1008},
		{Name: "tabloid", Width: 792, Height: 1224},
		{Name: "a3", Width: 842, Height: 1191},
		{Name: "a2", Width: 1191, Height: 1684},
		{Name: "a1", Width: 1684, Height: 2384},
		{Name: "a0", Width: 2384, Height: 3370},
	}
}

// SizeByName looks up a catalog entry case-insensitively.
func SizeByName(name string) (Size, error) {
	for _, s := range Catalog() {
		if s.Name == strings.ToLower(name) {
			return s, nil
		}
	}
	return Size{}, errors.New(errors.ErrCodeInvalidPage, "unknown page size %q", name)
}

// Spec is an immutable page specification. The engine never mutates it.
type Spec struct {
	Size        Size        `json:"size" bson:"size"`
	Orientation Orientation `json:"orientation" bson:"orientation"`
	Policy      Policy      `json:"policy" bson:"policy"`
}

// PageWidth returns the oriented page width.
func (s Spec) PageWidth() float64 {
	if s.Orientation == Landscape {
		return s.Size.Height
	}
	return s.Size.Width
}

// PageHeight returns the oriented page height.
func (s Spec) PageHeight() float64 {
	if s.Orientation == Landscape {
		return s.Size.Width
	}
	return s.Size.Height
}

// contains reports whether the oriented page holds the bounding box.
func (s Spec) contains(b layout.Bounds) bool {
	return b.Width() <= s.PageWidth() && b.Height() <= s.PageHeight()
}

// Rebuild asks the pipeline to re-invoke the graph builder with reduced
// depths and run layout again.
type Rebuild struct {
	AncestorDepth   int
	DescendantDepth int
}

// Outcome is the fitter's verdict for one layout.
type Outcome struct {
	// Result is the (possibly scaled) layout. Nil when Rebuild is set.
	Result *layout.Result

	// Page is the page the layout was fitted to. Under PolicyAutoSize
	// this may differ from the requested spec's size.
	Page Spec

	// Scale is the factor applied to the geometry; 1 when unchanged.
	Scale float64

	// Rebuild, when non-nil, tells the caller to rebuild the graph with
	// the reduced depths and fit again (PolicyLimitGenerations only).
	Rebuild *Rebuild
}

// Fit applies the spec's policy to the result.
//
// Depths are needed only for PolicyLimitGenerations, where they are the
// effective depths of the graph behind the result. Fit mutates the result's
// geometry in place when scaling; the spec itself is never modified.
func Fit(result *layout.Result, spec Spec, ancestorDepth, descendantDepth int) (Outcome, error) {
	if result == nil {
		return Outcome{}, errors.New(errors.ErrCodeInvalidInput, "fit requires a layout result")
	}
	if _, err := ParsePolicy(string(spec.Policy)); err != nil {
		return Outcome{}, err
	}

	switch spec.Policy {
	case PolicyAutoSize:
		return fitAutoSize(result, spec), nil
	case PolicyLimitGenerations:
		return fitLimitGenerations(result, spec, ancestorDepth, descendantDepth), nil
	default:
		return fitScale(result, spec), nil
	}
}

// fitScale computes min(pageWidth/boundingWidth, pageHeight/boundingHeight)
// and multiplies every coordinate by it when below 1. Layouts that already
// fit are returned untouched: the fitter never upscales.
func fitScale(result *layout.Result, spec Spec) Outcome {
	factor := scaleFactor(result.Bounds, spec)
	if factor < 1 {
		result.Scale(factor)
	} else {
		factor = 1
	}
	return Outcome{Result: result, Page: spec, Scale: factor}
}

func scaleFactor(b layout.Bounds, spec Spec) float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 1
	}
	fw := spec.PageWidth() / w
	fh := spec.PageHeight() / h
	if fw < fh {
		return fw
	}
	return fh
}

// fitAutoSize selects the smallest catalog page that contains the bounding
// box in the requested orientation. When even the largest page is too
// small, the largest page is kept and the scale policy applies on top.
func fitAutoSize(result *layout.Result, spec Spec) Outcome {
	catalog := Catalog()
	for _, size := range catalog {
		candidate := Spec{Size: size, Orientation: spec.Orientation, Policy: spec.Policy}
		if candidate.contains(result.Bounds) {
			return Outcome{Result: result, Page: candidate, Scale: 1}
		}
	}

	largest := Spec{Size: catalog[len(catalog)-1], Orientation: spec.Orientation, Policy: spec.Policy}
	out := fitScale(result, largest)
	out.Page = largest
	return out
}

// fitLimitGenerations reports a rebuild request with decremented depths
// while reduction is still possible; at depth zero it falls back to scaling.
func fitLimitGenerations(result *layout.Result, spec Spec, ancestorDepth, descendantDepth int) Outcome {
	if spec.contains(result.Bounds) {
		return Outcome{Result: result, Page: spec, Scale: 1}
	}
	if ancestorDepth == 0 && descendantDepth == 0 {
		return fitScale(result, spec)
	}

	next := Rebuild{AncestorDepth: ancestorDepth, DescendantDepth: descendantDepth}
	if next.AncestorDepth > 0 {
		next.AncestorDepth--
	}
	if next.DescendantDepth > 0 {
		next.DescendantDepth--
	}
	return Outcome{Page: spec, Scale: 1, Rebuild: &next}
}
