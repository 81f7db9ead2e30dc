// Package caption positions speech-bubble text boxes inside comic panels.
//
// A caption is anchored to whichever side of the panel has more free space
// beside the detected subject, so the bubble avoids covering the speaker's
// face when it can. Text metrics are fixed per-character estimates; no font
// shaping is performed.
package caption

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/segment"
)

// Default text metrics.
const (
	DefaultCharWidth  = 7.0
	DefaultLineHeight = 14.0
	DefaultPadding    = 6.0
	DefaultLineWidth  = 30
)

// Metrics describes how caption text is measured.
type Metrics struct {
	CharWidth  float64 // advance per character
	LineHeight float64 // advance per line
	Padding    float64 // gap between the box and the panel edge
}

// DefaultMetrics returns the metrics used by the standard renderer.
func DefaultMetrics() Metrics {
	return Metrics{
		CharWidth:  DefaultCharWidth,
		LineHeight: DefaultLineHeight,
		Padding:    DefaultPadding,
	}
}

// Side is the panel edge a caption is anchored to.
type Side int

const (
	SideRight Side = iota
	SideLeft
)

// String returns the side name.
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Lines wraps caption text into lines of at most width characters.
func Lines(text string, width int) []string {
	if width <= 0 {
		width = DefaultLineWidth
	}
	return segment.Wrap(text, width)
}

// Size returns the unclamped box size for lines. The width follows the
// first line, which greedy wrapping makes the widest in practice.
func Size(lines []string, m Metrics) (w, h float64) {
	if len(lines) == 0 {
		return 0, 0
	}
	return float64(utf8.RuneCountInString(lines[0])) * m.CharWidth,
		float64(len(lines)) * m.LineHeight
}

// ChooseSide picks the side of the image with more room beside the subject.
// Free space is measured in image coordinates; both sides scale by the same
// factor into panel space so the comparison is unaffected. Ties go right.
func ChooseSide(imgW float64, subject geom.Rect) Side {
	left := subject.X
	right := imgW - subject.X - subject.Width
	if right >= left {
		return SideRight
	}
	return SideLeft
}

// Place returns the caption box for lines inside panel, in the same
// coordinates as panel. imgW and imgH are the source image size and subject
// is in image coordinates.
//
// The box sits Padding below the panel top, against the panel edge on the
// side with more free space. A box larger than the panel's inner area is
// clamped to it; the result never escapes the panel. No lines yields an
// empty rectangle.
func Place(panel geom.Rect, imgW, imgH float64, subject geom.Rect, lines []string, m Metrics) geom.Rect {
	if len(lines) == 0 {
		return geom.Rect{}
	}
	w, h := Size(lines, m)
	inner := panel.Inset(m.Padding)
	w = math.Min(w, inner.Width)
	h = math.Min(h, inner.Height)

	x := inner.X
	if ChooseSide(imgW, subject) == SideRight {
		x = inner.Right() - w
	}
	return geom.New(x, inner.Y, w, h)
}

// SubjectInPanel maps subject from image coordinates into panel space.
func SubjectInPanel(panel geom.Rect, imgW, imgH float64, subject geom.Rect) geom.Rect {
	if imgW <= 0 || imgH <= 0 {
		return geom.Rect{}
	}
	return subject.Scale(panel.Width/imgW, panel.Height/imgH).Translate(panel.X, panel.Y)
}

// Overflows reports whether the caption for lines had to be clamped to the
// panel or covers part of the subject.
func Overflows(panel geom.Rect, imgW, imgH float64, subject geom.Rect, lines []string, m Metrics) bool {
	if len(lines) == 0 {
		return false
	}
	w, h := Size(lines, m)
	inner := panel.Inset(m.Padding)
	if w > inner.Width || h > inner.Height {
		return true
	}
	box := Place(panel, imgW, imgH, subject, lines, m)
	return box.Overlaps(SubjectInPanel(panel, imgW, imgH, subject))
}
