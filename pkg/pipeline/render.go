package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/page"
	"github.com/matzehuels/comicstrip/pkg/render"
	"github.com/matzehuels/comicstrip/pkg/render/sink"
	"github.com/matzehuels/comicstrip/pkg/render/styles"
)

// Render generates output artifacts for pg in the requested formats. id is
// recorded in JSON output. PNG falls back to the built-in rasterizer when
// rsvg-convert is not installed; PDF has no fallback.
func Render(ctx context.Context, pg page.Page, id string, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	style, err := styles.ByName(opts.Style)
	if err != nil {
		return nil, err
	}
	svgOpts := buildSVGOptions(opts, style)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(pg, svgOpts...)
		case FormatPNG:
			data, err = renderPNG(ctx, pg, svgOpts, opts)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, pg, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(pg, sink.WithJSONID(id), sink.WithJSONStyle(opts.Style))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderPNG(ctx context.Context, pg page.Page, svgOpts []sink.SVGOption, opts Options) ([]byte, error) {
	if render.Available() {
		return sink.RenderPNG(ctx, pg, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	}
	opts.Logger.Warn("rsvg-convert not found, drawing a preview raster instead")
	return sink.RenderRaster(pg,
		sink.WithRasterScale(opts.Scale),
		sink.WithRasterLineHeight(opts.PageOptions().Caption.LineHeight))
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options, style styles.Style) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithStyle(style),
		sink.WithLineHeight(opts.PageOptions().Caption.LineHeight),
	}
	if opts.Embed {
		svgOpts = append(svgOpts, sink.WithEmbeddedImages())
	}
	return svgOpts
}
