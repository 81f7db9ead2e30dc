// Package shelf packs comic panels onto a fixed-width page.
//
// Panels arrive one at a time, each described only by its aspect ratio.
// The page is cut into horizontal shelves of a fixed height; within the
// current shelf every panel claims either a full-width band off the top or
// a full-height band off the left of whatever is still unclaimed, choosing
// the band whose shape best matches the panel. When neither band is close
// enough to the panel's aspect, or the band would be too small, the shelf
// is closed and a fresh one is opened directly below it.
//
// Packing is greedy and online: a placed panel is never revisited. This
// keeps the work per panel constant and the result predictable, at the
// cost of global optimality.
//
// # Usage
//
//	p, err := shelf.NewPacker(shelf.DefaultOptions())
//	for _, a := range aspects {
//	    pl, err := p.Place(a)
//	    ...
//	}
//	height := p.Height()
package shelf

import (
	"math"

	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/geom"
)

// Default packing parameters.
const (
	DefaultPageWidth   = 450.0
	DefaultShelfHeight = 180.0
	DefaultMinArea     = 100.0 * 100.0
	DefaultTolerance   = 0.2
)

// Options controls packing.
type Options struct {
	PageWidth   float64 // width of every shelf
	ShelfHeight float64 // height of every shelf
	MinArea     float64 // a claim must be strictly larger than this
	Tolerance   float64 // a claim's aspect error must be strictly below this
}

// DefaultOptions returns the standard page geometry.
func DefaultOptions() Options {
	return Options{
		PageWidth:   DefaultPageWidth,
		ShelfHeight: DefaultShelfHeight,
		MinArea:     DefaultMinArea,
		Tolerance:   DefaultTolerance,
	}
}

// Validate checks that the options describe a usable page.
func (o Options) Validate() error {
	if !positive(o.PageWidth) {
		return errors.New(errors.ErrCodeInvalidInput, "page width must be positive, got %v", o.PageWidth)
	}
	if !positive(o.ShelfHeight) {
		return errors.New(errors.ErrCodeInvalidInput, "shelf height must be positive, got %v", o.ShelfHeight)
	}
	if o.MinArea < 0 || math.IsNaN(o.MinArea) {
		return errors.New(errors.ErrCodeInvalidInput, "minimum area must not be negative, got %v", o.MinArea)
	}
	if !positive(o.Tolerance) {
		return errors.New(errors.ErrCodeInvalidInput, "tolerance must be positive, got %v", o.Tolerance)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Placement is the outcome of placing one panel.
type Placement struct {
	Rect  geom.Rect // page-relative slot
	Fit   Fit       // which candidate was used
	Shelf int       // zero-based shelf index
}

// Packer holds the packing state for one page. It is not safe for
// concurrent use; independent pages use independent Packers.
type Packer struct {
	opts   Options
	region Region
	shelf  int
	placed int
	height float64
}

// NewPacker returns a Packer with an empty first shelf at the top of the page.
func NewPacker(opts Options) (*Packer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Packer{
		opts:   opts,
		region: NewRegion(geom.New(0, 0, opts.PageWidth, opts.ShelfHeight)),
	}, nil
}

// Place assigns the next panel, of the given aspect ratio, a slot on the
// page.
//
// A non-positive or non-finite aspect is rejected as invalid input. If the
// panel cannot be placed even on a freshly opened shelf, an invariant
// violation is returned and the Packer must not be used further.
func (p *Packer) Place(aspect float64) (Placement, error) {
	if !positive(aspect) {
		return Placement{}, errors.AtRecord(errors.ErrCodeInvalidInput, p.placed,
			"aspect ratio must be positive and finite, got %v", aspect)
	}

	r, fit := p.region.Claim(aspect, p.opts.MinArea, p.opts.Tolerance)
	if fit == FitNone {
		p.openShelf()
		r, fit = p.region.Claim(aspect, p.opts.MinArea, p.opts.Tolerance)
		if fit == FitNone {
			return Placement{}, errors.Invariant(
				"panel %d with aspect %.4g does not fit an empty %gx%g shelf (tolerance %g, min area %g)",
				p.placed, aspect, p.opts.PageWidth, p.opts.ShelfHeight, p.opts.Tolerance, p.opts.MinArea)
		}
	}

	p.placed++
	p.height = math.Max(p.height, r.Bottom())
	return Placement{Rect: r, Fit: fit, Shelf: p.shelf}, nil
}

// openShelf discards the current region and starts a new shelf directly
// below it.
func (p *Packer) openShelf() {
	y := p.region.Top() + p.opts.ShelfHeight
	p.region = NewRegion(geom.New(0, y, p.opts.PageWidth, p.opts.ShelfHeight))
	p.shelf++
}

// Height returns the lowest edge of any placed panel, which is the page
// height actually used.
func (p *Packer) Height() float64 { return p.height }

// Shelves returns the number of shelves opened so far.
func (p *Packer) Shelves() int { return p.shelf + 1 }

// Remaining returns the unclaimed part of the current shelf.
func (p *Packer) Remaining() geom.Rect { return p.region.Remaining() }

// Pack places every aspect in order and returns one rectangle per input.
// Any error aborts the whole page; no panel is ever skipped.
func Pack(aspects []float64, opts Options) ([]geom.Rect, error) {
	p, err := NewPacker(opts)
	if err != nil {
		return nil, err
	}
	out := make([]geom.Rect, len(aspects))
	for i, a := range aspects {
		pl, err := p.Place(a)
		if err != nil {
			return nil, err
		}
		out[i] = pl.Rect
	}
	return out, nil
}
