// Package page lays panels out on a comic page.
//
// [Compose] packs panels onto shelves by image aspect ratio, insets each
// slot by the panel padding, and places a caption bubble inside every
// panel that has text. The result is a [Page] value that renderers consume
// without doing any layout of their own.
package page

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/comicstrip/pkg/caption"
	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/panel"
	"github.com/matzehuels/comicstrip/pkg/shelf"
)

// Default page decoration.
const (
	DefaultPadding = 8.0
	DefaultBorder  = 2.0
)

// Options controls page composition.
type Options struct {
	Shelf     shelf.Options
	Caption   caption.Metrics
	Padding   float64 // gap between a slot and the panel drawn in it
	Border    float64 // page frame width
	LineWidth int     // caption wrap width in characters
	Workers   int     // caption placement concurrency, 0 for unbounded
}

// DefaultOptions returns the standard page settings.
func DefaultOptions() Options {
	return Options{
		Shelf:     shelf.DefaultOptions(),
		Caption:   caption.DefaultMetrics(),
		Padding:   DefaultPadding,
		Border:    DefaultBorder,
		LineWidth: caption.DefaultLineWidth,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := o.Shelf.Validate(); err != nil {
		return err
	}
	if o.Padding < 0 || o.Border < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "padding and border must not be negative")
	}
	if 2*o.Padding >= math.Min(o.Shelf.PageWidth, o.Shelf.ShelfHeight) {
		return errors.New(errors.ErrCodeInvalidInput, "padding %v leaves no room for panels", o.Padding)
	}
	if o.Caption.CharWidth <= 0 || o.Caption.LineHeight <= 0 || o.Caption.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid caption metrics %+v", o.Caption)
	}
	return nil
}

// Entry is one laid-out panel.
type Entry struct {
	Slot        geom.Rect   `json:"slot"`    // packed rectangle, packer coordinates
	PanelRect   geom.Rect   `json:"panel"`   // drawn panel, page coordinates
	CaptionRect geom.Rect   `json:"caption"` // zero when the panel has no text
	Image       panel.Image `json:"image"`
	Subject     geom.Rect   `json:"subject"` // image coordinates
	Lines       []string    `json:"lines,omitempty"`
	Speaker     *int        `json:"speaker"`
	Start       float64     `json:"start"`
	End         float64     `json:"end"`
	Shelf       int         `json:"shelf"`
	Overflow    bool        `json:"overflow,omitempty"` // caption clamped or covering the subject
}

// HasCaption reports whether a bubble is drawn for the entry.
func (e Entry) HasCaption() bool { return len(e.Lines) > 0 }

// Page is a fully laid-out comic page.
type Page struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Border  float64 `json:"border"`
	Entries []Entry `json:"entries"`
}

// Shelves returns the number of shelves used.
func (p Page) Shelves() int {
	if len(p.Entries) == 0 {
		return 0
	}
	return p.Entries[len(p.Entries)-1].Shelf + 1
}

// Overflows returns the number of entries whose caption overflowed.
func (p Page) Overflows() int {
	n := 0
	for _, e := range p.Entries {
		if e.Overflow {
			n++
		}
	}
	return n
}

// Compose lays panels out in order. Packing is sequential; caption
// placement runs concurrently and does not change the entry order. Any
// packing failure aborts the whole page.
func Compose(ctx context.Context, panels []panel.Panel, opts Options) (Page, error) {
	if err := opts.Validate(); err != nil {
		return Page{}, err
	}

	packed, height, err := Pack(ctx, panels, opts.Shelf)
	if err != nil {
		return Page{}, err
	}
	entries := make([]Entry, len(packed))
	for i, pk := range packed {
		entries[i] = Entry{
			Slot:      pk.Rect,
			PanelRect: pk.Rect.Translate(opts.Border, opts.Border).Inset(opts.Padding),
			Image:     pk.Image,
			Subject:   pk.Subject,
			Speaker:   pk.Segment.Speaker,
			Start:     pk.Segment.Start,
			End:       pk.Segment.End,
			Shelf:     pk.Shelf,
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			placeCaption(&entries[i], panels[i].Segment.Text, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	return Page{
		Width:   opts.Shelf.PageWidth + 2*opts.Border,
		Height:  height + 2*opts.Border,
		Border:  opts.Border,
		Entries: entries,
	}, nil
}

// Pack assigns each panel a slot by its image aspect, in order, and
// returns the packed panels with the height the shelves use. Any packing
// failure aborts the whole page.
func Pack(ctx context.Context, panels []panel.Panel, opts shelf.Options) ([]panel.Packed, float64, error) {
	packer, err := shelf.NewPacker(opts)
	if err != nil {
		return nil, 0, err
	}
	packed := make([]panel.Packed, len(panels))
	for i, p := range panels {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if p.Image.Width <= 0 || p.Image.Height <= 0 {
			return nil, 0, errors.AtRecord(errors.ErrCodeInvalidPanel, i,
				"image %s has invalid size %dx%d", p.Image.Ref, p.Image.Width, p.Image.Height)
		}
		pl, err := packer.Place(p.Image.Aspect())
		if err != nil {
			if errors.Is(err, errors.ErrCodeInvalidInput) {
				return nil, 0, errors.AtRecord(errors.ErrCodeInvalidPanel, i, "%s", errors.UserMessage(err))
			}
			return nil, 0, err
		}
		packed[i] = panel.Packed{Panel: p, Rect: pl.Rect, Shelf: pl.Shelf}
	}
	return packed, packer.Height(), nil
}

func placeCaption(e *Entry, text string, opts Options) {
	if text == "" {
		return
	}
	e.Lines = caption.Lines(text, opts.LineWidth)
	w, h := float64(e.Image.Width), float64(e.Image.Height)
	e.CaptionRect = caption.Place(e.PanelRect, w, h, e.Subject, e.Lines, opts.Caption)
	e.Overflow = caption.Overflows(e.PanelRect, w, h, e.Subject, e.Lines, opts.Caption)
}
