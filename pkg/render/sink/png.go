package sink

import (
	"context"

	"github.com/matzehuels/comicstrip/pkg/page"
	"github.com/matzehuels/comicstrip/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the page as PNG via SVG conversion. Images are always
// embedded because rsvg-convert reads the SVG from stdin and cannot resolve
// relative paths.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, pg page.Page, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	svg := RenderSVG(pg, append(r.svgOpts, WithEmbeddedImages())...)
	return render.ToPNG(ctx, svg, r.scale)
}
