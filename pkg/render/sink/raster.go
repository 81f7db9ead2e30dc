package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/comicstrip/pkg/caption"
	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/page"
	"github.com/matzehuels/comicstrip/pkg/panel"
)

var (
	paperColor   = color.White
	inkColor     = color.Black
	missingColor = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
)

// RasterOption configures [RenderRaster].
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	scale      float64
	bubblePad  float64
	lineHeight float64
}

// WithRasterScale sets the pixels per page unit (default 1). Caption text
// is drawn with a fixed 7x13 bitmap font and does not scale.
func WithRasterScale(s float64) RasterOption {
	return func(r *rasterRenderer) { r.scale = s }
}

// WithRasterBubblePadding sets the gap between caption text and bubble outline.
func WithRasterBubblePadding(p float64) RasterOption {
	return func(r *rasterRenderer) { r.bubblePad = p }
}

// WithRasterLineHeight sets the caption line advance in page units. It
// should match the line height the page was composed with.
func WithRasterLineHeight(h float64) RasterOption {
	return func(r *rasterRenderer) { r.lineHeight = h }
}

// RenderRaster draws the page to PNG without external tools. It is a
// preview renderer: images are scaled bilinearly to cover their panel and
// captions use a bitmap font. Images that cannot be loaded are drawn as
// grey panels.
func RenderRaster(pg page.Page, opts ...RasterOption) ([]byte, error) {
	r := rasterRenderer{scale: 1, bubblePad: caption.DefaultPadding, lineHeight: caption.DefaultLineHeight}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}
	if r.lineHeight <= 0 {
		r.lineHeight = caption.DefaultLineHeight
	}

	w := int(math.Ceil(pg.Width * r.scale))
	h := int(math.Ceil(pg.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page has no area: %vx%v", pg.Width, pg.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(paperColor), image.Point{}, xdraw.Src)
	if pg.Border > 0 {
		strokeRect(dst, dst.Bounds(), int(math.Round(pg.Border*r.scale)), inkColor)
	}

	images := make(map[string]image.Image)
	for _, e := range pg.Entries {
		pr := r.rect(e.PanelRect)
		src, ok := images[e.Image.Ref]
		if !ok {
			src, _ = loadImage(e.Image.Ref)
			images[e.Image.Ref] = src
		}
		if src == nil {
			xdraw.Draw(dst, pr, image.NewUniform(missingColor), image.Point{}, xdraw.Src)
		} else {
			srcRect := src.Bounds()
			if e.Image.Cropped() {
				c := e.Image.Crop
				srcRect = image.Rect(int(c.X), int(c.Y), int(c.Right()), int(c.Bottom())).
					Add(srcRect.Min).Intersect(srcRect)
			}
			xdraw.ApproxBiLinear.Scale(dst, pr, src, coverRect(srcRect, pr), xdraw.Src, nil)
		}
		strokeRect(dst, pr, 2, inkColor)
	}

	for _, e := range pg.Entries {
		if !e.HasCaption() {
			continue
		}
		r.drawBubble(dst, e)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r rasterRenderer) rect(g geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(g.X*r.scale)), int(math.Round(g.Y*r.scale)),
		int(math.Round(g.Right()*r.scale)), int(math.Round(g.Bottom()*r.scale)),
	)
}

func (r rasterRenderer) drawBubble(dst *image.RGBA, e page.Entry) {
	box := r.rect(e.CaptionRect)
	pad := int(math.Round(r.bubblePad * r.scale))
	bubble := box.Inset(-pad).Intersect(dst.Bounds())
	xdraw.Draw(dst, bubble, image.NewUniform(paperColor), image.Point{}, xdraw.Src)
	strokeRect(dst, bubble, 2, inkColor)

	face := basicfont.Face7x13
	lineHeight := int(math.Round(r.lineHeight * r.scale))
	d := font.Drawer{Dst: dst, Src: image.NewUniform(inkColor), Face: face}
	for i, line := range e.Lines {
		d.Dot = fixed.P(box.Min.X, box.Min.Y+face.Ascent+i*lineHeight)
		d.DrawString(line)
	}
}

// coverRect returns the centered part of src with the aspect ratio of dst,
// so scaling it fills dst without distortion.
func coverRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	dw, dh := float64(dst.Dx()), float64(dst.Dy())
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return src
	}
	if sw/sh > dw/dh {
		w := int(math.Round(sh * dw / dh))
		x := src.Min.X + (src.Dx()-w)/2
		return image.Rect(x, src.Min.Y, x+w, src.Max.Y)
	}
	h := int(math.Round(sw * dh / dw))
	y := src.Min.Y + (src.Dy()-h)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+h)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, width int, c color.Color) {
	if width <= 0 || r.Empty() {
		return
	}
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		xdraw.Draw(dst, e.Intersect(r), u, image.Point{}, xdraw.Src)
	}
}

// loadImage decodes a local file or data URI. Remote images are not fetched.
func loadImage(ref string) (image.Image, error) {
	var data []byte
	var err error
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err = panel.DecodeDataURI(ref)
	case isLocalRef(ref):
		data, err = os.ReadFile(ref)
	default:
		return nil, fmt.Errorf("remote image %s not loaded", ref)
	}
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
