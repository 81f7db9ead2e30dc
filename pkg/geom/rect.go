// Package geom provides the axis-aligned rectangle used throughout the
// comic layout: packed panel slots, subject boxes and caption boxes are all
// [Rect] values in either image or page coordinates.
//
// Coordinates grow right and down (SVG convention): X is the left edge and
// Y the top edge.
package geom

import "math"

// AspectSentinel is the aspect ratio reported for a zero-height rectangle.
// It stands in for infinity so aspect comparisons stay finite.
const AspectSentinel = 1000.0

const eps = 1e-9

// Point is a 2D position.
type Point struct {
	X, Y float64
}

// Rect is an immutable axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// New creates a rectangle from its top-left corner and size.
func New(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// FullImage returns the rectangle covering a whole w×h image. It is the
// subject used when detection finds nothing.
func FullImage(w, h int) Rect {
	return Rect{Width: float64(w), Height: float64(h)}
}

// Aspect returns Width/Height, or AspectSentinel when Height is zero.
func (r Rect) Aspect() float64 {
	if r.Height == 0 {
		return AspectSentinel
	}
	return r.Width / r.Height
}

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Right returns the right edge X coordinate.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge Y coordinate.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether o lies fully inside r, allowing for
// floating-point error at the edges.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Overlaps reports whether r and o share a region of positive area.
// Rectangles that merely touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right()-eps && o.X < r.Right()-eps &&
		r.Y < o.Bottom()-eps && o.Y < r.Bottom()-eps
}

// Intersect returns the overlapping region of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	if !r.Overlaps(o) {
		return Rect{}
	}
	x := math.Max(r.X, o.X)
	y := math.Max(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Min(r.Right(), o.Right()) - x,
		Height: math.Min(r.Bottom(), o.Bottom()) - y,
	}
}

// Inset shrinks the rectangle by d on every side. The result never has a
// negative size.
func (r Rect) Inset(d float64) Rect {
	w := math.Max(0, r.Width-2*d)
	h := math.Max(0, r.Height-2*d)
	return Rect{X: r.X + d, Y: r.Y + d, Width: w, Height: h}
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Scale returns the rectangle with every coordinate multiplied by (sx, sy).
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{X: r.X * sx, Y: r.Y * sy, Width: r.Width * sx, Height: r.Height * sy}
}

// WithinBounds reports whether r lies inside [0,w]×[0,h] and has no
// negative size.
func (r Rect) WithinBounds(w, h float64) bool {
	if r.Width < 0 || r.Height < 0 {
		return false
	}
	return Rect{Width: w, Height: h}.Contains(r)
}
