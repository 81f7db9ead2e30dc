package shelf

import (
	"math"

	"github.com/matzehuels/comicstrip/pkg/geom"
)

// Region is the unclaimed part of the current shelf. Each successful claim
// carves a band off its top (vertical fit) or left side (horizontal fit),
// so the region shrinks toward the shelf's bottom-right corner and never
// below zero size.
type Region struct {
	unfilled geom.Rect
	top      float64 // Y of the shelf when it was opened
	height   float64 // shelf height when it was opened
}

// NewRegion opens a region covering r.
func NewRegion(r geom.Rect) Region {
	return Region{unfilled: r, top: r.Y, height: r.Height}
}

// Remaining returns the unclaimed rectangle.
func (g *Region) Remaining() geom.Rect { return g.unfilled }

// Top returns the Y coordinate the shelf was opened at.
func (g *Region) Top() float64 { return g.top }

// Bottom returns the lower edge of the shelf, which is unaffected by claims.
func (g *Region) Bottom() float64 { return g.top + g.height }

// Fit identifies which candidate a claim used.
type Fit int

const (
	// FitNone means neither candidate was acceptable.
	FitNone Fit = iota
	// FitVertical spans the full remaining width and is cut off the top.
	FitVertical
	// FitHorizontal spans the full remaining height and is cut off the left.
	FitHorizontal
)

// String returns the fit name.
func (f Fit) String() string {
	switch f {
	case FitVertical:
		return "vertical"
	case FitHorizontal:
		return "horizontal"
	default:
		return "none"
	}
}

// candidates returns the vertical and horizontal claims for aspect.
func (g *Region) candidates(aspect float64) (v, h geom.Rect) {
	u := g.unfilled
	v = geom.New(u.X, u.Y, u.Width, math.Min(u.Height, u.Width/aspect))
	h = geom.New(u.X, u.Y, math.Min(u.Width, u.Height*aspect), u.Height)
	return v, h
}

// Claim carves a rectangle approximating aspect out of the region.
//
// The vertical candidate wins ties on aspect error. A candidate is accepted
// only when its aspect error is below tolerance and its area exceeds
// minArea; when the preferred candidate fails either test the other one is
// tried. On success the region shrinks by the claimed band. On failure the
// region is left unchanged and FitNone is returned.
func (g *Region) Claim(aspect, minArea, tolerance float64) (geom.Rect, Fit) {
	v, h := g.candidates(aspect)
	vErr := math.Abs(v.Aspect() - aspect)
	hErr := math.Abs(h.Aspect() - aspect)

	acceptable := func(r geom.Rect, err float64) bool {
		return err < tolerance && r.Area() > minArea
	}

	order := [2]Fit{FitVertical, FitHorizontal}
	if vErr > hErr {
		order = [2]Fit{FitHorizontal, FitVertical}
	}

	for _, fit := range order {
		switch fit {
		case FitVertical:
			if acceptable(v, vErr) {
				g.unfilled.Y += v.Height
				g.unfilled.Height -= v.Height
				return v, FitVertical
			}
		case FitHorizontal:
			if acceptable(h, hErr) {
				g.unfilled.X += h.Width
				g.unfilled.Width -= h.Width
				return h, FitHorizontal
			}
		}
	}
	return geom.Rect{}, FitNone
}
