package sink

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/matzehuels/comicstrip/pkg/caption"
	"github.com/matzehuels/comicstrip/pkg/page"
	"github.com/matzehuels/comicstrip/pkg/render/styles"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style      styles.Style
	bubblePad  float64
	lineHeight float64
	embed      bool
	border     *float64
}

// WithStyle sets the visual style (default [styles.Simple]).
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithBubblePadding sets the gap between caption text and bubble outline.
func WithBubblePadding(p float64) SVGOption { return func(r *svgRenderer) { r.bubblePad = p } }

// WithLineHeight sets the caption line advance. It should match the
// metrics the page was composed with.
func WithLineHeight(h float64) SVGOption { return func(r *svgRenderer) { r.lineHeight = h } }

// WithBorder overrides the page border width recorded in the page.
func WithBorder(w float64) SVGOption { return func(r *svgRenderer) { r.border = &w } }

// WithEmbeddedImages inlines local image files as base64 data URIs so the
// SVG is self-contained. Images that cannot be read keep their reference.
func WithEmbeddedImages() SVGOption { return func(r *svgRenderer) { r.embed = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		style:      styles.Simple{},
		bubblePad:  caption.DefaultPadding,
		lineHeight: caption.DefaultLineHeight,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws the page: frame, then every panel in order, then every
// caption bubble on top. Entries without caption lines get no bubble.
func RenderSVG(pg page.Page, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	if r.embed {
		pg, _ = embedImages(pg, true)
	}
	border := pg.Border
	if r.border != nil {
		border = *r.border
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		pg.Width, pg.Height, pg.Width, pg.Height)

	r.style.RenderDefs(&buf)
	r.style.RenderPage(&buf, styles.Page{W: pg.Width, H: pg.Height, Border: border})

	for i, e := range pg.Entries {
		r.style.RenderPanel(&buf, buildPanel(i, e))
	}
	for i, e := range pg.Entries {
		if !e.HasCaption() {
			continue
		}
		b := buildBubble(i, e, r.bubblePad, r.lineHeight)
		r.style.RenderBubble(&buf, b)
		r.style.RenderText(&buf, b)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func buildPanel(i int, e page.Entry) styles.Panel {
	p := styles.Panel{
		Index: i,
		X:     e.PanelRect.X, Y: e.PanelRect.Y,
		W: e.PanelRect.Width, H: e.PanelRect.Height,
		Href: e.Image.Ref,
	}
	if e.Image.Cropped() && e.Image.SourceWidth > 0 && e.Image.SourceHeight > 0 {
		c := e.Image.Crop
		p.ViewBox = &[4]float64{c.X, c.Y, c.Width, c.Height}
		p.SrcW, p.SrcH = float64(e.Image.SourceWidth), float64(e.Image.SourceHeight)
	}
	return p
}

func buildBubble(i int, e page.Entry, pad, lineHeight float64) styles.Bubble {
	return styles.Bubble{
		Index: i,
		X:     e.CaptionRect.X, Y: e.CaptionRect.Y,
		W: e.CaptionRect.Width, H: e.CaptionRect.Height,
		Lines:      e.Lines,
		Speaker:    e.Speaker,
		Padding:    pad,
		LineHeight: lineHeight,
	}
}

// EmbedImages returns a copy of pg with every local image file replaced by
// a base64 data URI. URLs and data URIs are left alone.
func EmbedImages(pg page.Page) (page.Page, error) {
	return embedImages(pg, false)
}

func embedImages(pg page.Page, lenient bool) (page.Page, error) {
	entries := make([]page.Entry, len(pg.Entries))
	copy(entries, pg.Entries)
	cache := make(map[string]string)

	for i := range entries {
		ref := entries[i].Image.Ref
		if !isLocalRef(ref) {
			continue
		}
		uri, ok := cache[ref]
		if !ok {
			data, err := os.ReadFile(ref)
			if err != nil {
				if lenient {
					continue
				}
				return page.Page{}, fmt.Errorf("embed image %s: %w", ref, err)
			}
			uri = "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
			cache[ref] = uri
		}
		entries[i].Image.Ref = uri
	}

	pg.Entries = entries
	return pg, nil
}

func isLocalRef(ref string) bool {
	return ref != "" && !strings.HasPrefix(ref, "data:") &&
		!strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")
}
