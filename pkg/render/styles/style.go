// Package styles defines the visual styles used to draw comic pages as SVG.
//
// A [Style] only decides how things look. Positions and sizes come fully
// resolved from the page layout; a style must not move anything.
package styles

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/comicstrip/pkg/errors"
)

// Style defines the visual appearance of a comic page.
type Style interface {
	// Name is the identifier used on the command line and in JSON output.
	Name() string
	// RenderDefs writes SVG <defs> content (fonts, filters).
	RenderDefs(buf *bytes.Buffer)
	// RenderPage writes the page background and frame.
	RenderPage(buf *bytes.Buffer, p Page)
	// RenderPanel writes one panel's image and outline.
	RenderPanel(buf *bytes.Buffer, p Panel)
	// RenderBubble writes the speech bubble behind a caption.
	RenderBubble(buf *bytes.Buffer, b Bubble)
	// RenderText writes the caption lines.
	RenderText(buf *bytes.Buffer, b Bubble)
}

// Page holds the page-level drawing data.
type Page struct {
	W, H   float64
	Border float64
}

// Panel holds the drawing data for one panel.
type Panel struct {
	Index      int
	X, Y, W, H float64
	Href       string
	// ViewBox, when set, is the region of a SrcW×SrcH source image shown.
	ViewBox    *[4]float64
	SrcW, SrcH float64
}

// Bubble holds the drawing data for one caption. X, Y, W, H are the text
// box; the bubble is drawn Padding outside it.
type Bubble struct {
	Index      int
	X, Y, W, H float64
	Lines      []string
	Speaker    *int
	Padding    float64
	LineHeight float64
}

// Names lists the registered style names.
func Names() []string { return []string{"simple", "comic"} }

// ByName returns the style registered under name.
func ByName(name string) (Style, error) {
	switch strings.ToLower(name) {
	case "", "simple":
		return Simple{}, nil
	case "comic":
		return Comic{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidStyle,
			"unknown style %q (must be one of: %s)", name, strings.Join(Names(), ", "))
	}
}

// renderImage writes an <image>, nesting it in a viewport when only part
// of the source is shown.
func renderImage(buf *bytes.Buffer, p Panel) {
	if p.Href == "" {
		return
	}
	href := EscapeXML(p.Href)
	if p.ViewBox == nil {
		fmt.Fprintf(buf, `  <image id="panel-%d" href="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			p.Index, href, p.X, p.Y, p.W, p.H)
		return
	}
	vb := p.ViewBox
	fmt.Fprintf(buf, `  <svg x="%.2f" y="%.2f" width="%.2f" height="%.2f" viewBox="%.2f %.2f %.2f %.2f" preserveAspectRatio="xMidYMid slice">`,
		p.X, p.Y, p.W, p.H, vb[0], vb[1], vb[2], vb[3])
	fmt.Fprintf(buf, `<image id="panel-%d" href="%s" width="%.0f" height="%.0f"/></svg>`+"\n",
		p.Index, href, p.SrcW, p.SrcH)
}

// renderLines writes caption lines as one <text> with a <tspan> per line.
func renderLines(buf *bytes.Buffer, b Bubble, font string, size float64) {
	fmt.Fprintf(buf, `  <text class="caption" data-panel="%d" x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="#000">`,
		b.Index, b.X, b.Y, EscapeXML(font), size)
	for i, line := range b.Lines {
		dy := b.LineHeight
		if i == 0 {
			dy = Baseline(b.LineHeight)
		}
		fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.2f">%s</tspan>`, b.X, dy, EscapeXML(line))
	}
	buf.WriteString("</text>\n")
}
