// Package render converts rendered comic pages between output formats.
//
// Pages are drawn as SVG by the [sink] subpackage. [ToPDF] and [ToPNG]
// convert that SVG using the external rsvg-convert tool from librsvg:
//
//	svg := sink.RenderSVG(pg, opts...)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Install librsvg with `brew install librsvg` (macOS) or
// `apt install librsvg2-bin` (Linux). When it is missing, [Available]
// reports false and callers can fall back to [sink.RenderRaster].
//
// [sink]: github.com/matzehuels/comicstrip/pkg/render/sink
// [sink.RenderRaster]: github.com/matzehuels/comicstrip/pkg/render/sink.RenderRaster
package render
