package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/comicstrip/pkg/fonts"
)

// Simple draws square panels and square caption boxes in a plain font.
type Simple struct{}

func (Simple) Name() string { return "simple" }

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderPage(buf *bytes.Buffer, p Page) {
	renderPageFrame(buf, p)
}

func (Simple) RenderPanel(buf *bytes.Buffer, p Panel) {
	renderImage(buf, p)
	fmt.Fprintf(buf, `  <rect class="panel" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#000" stroke-width="2"/>`+"\n",
		p.X, p.Y, p.W, p.H)
}

func (Simple) RenderBubble(buf *bytes.Buffer, b Bubble) {
	fmt.Fprintf(buf, `  <rect class="bubble" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#fff" stroke="#000" stroke-width="1"/>`+"\n",
		b.X-b.Padding, b.Y-b.Padding, b.W+2*b.Padding, b.H+2*b.Padding)
}

func (Simple) RenderText(buf *bytes.Buffer, b Bubble) {
	renderLines(buf, b, fonts.SansFontFamily, FontSize(b.LineHeight))
}

// renderPageFrame draws the white page and its border, inset so the stroke
// stays inside the page.
func renderPageFrame(buf *bytes.Buffer, p Page) {
	fmt.Fprintf(buf, `  <rect x="0" y="0" width="%.2f" height="%.2f" fill="#fff"/>`+"\n", p.W, p.H)
	if p.Border <= 0 {
		return
	}
	half := p.Border / 2
	fmt.Fprintf(buf, `  <rect class="page" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#000" stroke-width="%.2f"/>`+"\n",
		half, half, p.W-p.Border, p.H-p.Border, p.Border)
}
