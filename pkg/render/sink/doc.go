// Package sink provides output format renderers for comic pages.
//
// # Overview
//
// A "sink" transforms a composed [page.Page] into a final output format.
// Sinks never change the layout: every rectangle comes from the page as
// computed by [page.Compose]. This package provides renderers for:
//
//   - SVG: vector output, the primary format
//   - JSON: layout data export for external tools and caching
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster output (requires rsvg-convert)
//   - Raster PNG: dependency-free preview drawn in Go
//
// # SVG Output
//
// [RenderSVG] draws the page frame, each panel's keyframe inset inside its
// slot, and a speech bubble with one text line per caption line:
//
//	svg := sink.RenderSVG(pg,
//	    sink.WithStyle(styles.Comic{}),
//	    sink.WithEmbeddedImages(),
//	)
//
// Panels for pauses carry no caption lines and get no bubble.
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] generate SVG with embedded images and convert
// it via [render.ToPDF] and [render.ToPNG]. When librsvg is not installed,
// [RenderRaster] draws a preview PNG using golang.org/x/image.
//
// [page.Page]: github.com/matzehuels/comicstrip/pkg/page.Page
// [page.Compose]: github.com/matzehuels/comicstrip/pkg/page.Compose
// [render.ToPDF]: github.com/matzehuels/comicstrip/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/comicstrip/pkg/render.ToPNG
package sink
