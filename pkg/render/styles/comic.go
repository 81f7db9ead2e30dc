package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/comicstrip/pkg/fonts"
)

const (
	bubbleRadius = 5.0
	bubbleStroke = 2.0
)

// speakerColors tint bubble outlines so speakers can be told apart.
var speakerColors = []string{"#000000", "#1f4e79", "#7a1f1f", "#2e6b30", "#6b4a1f", "#4b2e6b"}

// SpeakerColor returns the outline color for a speaker. Unknown speakers
// are drawn in black.
func SpeakerColor(speaker *int) string {
	if speaker == nil || *speaker < 0 {
		return speakerColors[0]
	}
	return speakerColors[*speaker%len(speakerColors)]
}

// Comic draws rounded speech bubbles in a hand-lettered font.
type Comic struct{}

func (Comic) Name() string { return "comic" }

func (Comic) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <filter id="panel-shadow" x="-5%" y="-5%" width="110%" height="110%">
      <feDropShadow dx="1.5" dy="1.5" stdDeviation="0" flood-color="#000" flood-opacity="0.35"/>
    </filter>
  </defs>
`)
}

func (Comic) RenderPage(buf *bytes.Buffer, p Page) {
	renderPageFrame(buf, p)
}

func (Comic) RenderPanel(buf *bytes.Buffer, p Panel) {
	renderImage(buf, p)
	fmt.Fprintf(buf, `  <rect class="panel" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#000" stroke-width="3" filter="url(#panel-shadow)"/>`+"\n",
		p.X, p.Y, p.W, p.H)
}

func (Comic) RenderBubble(buf *bytes.Buffer, b Bubble) {
	fmt.Fprintf(buf, `  <rect class="bubble" x="%.2f" y="%.2f" rx="%.0f" ry="%.0f" width="%.2f" height="%.2f" fill="#fff" stroke="%s" stroke-width="%.0f"/>`+"\n",
		b.X-b.Padding, b.Y-b.Padding, bubbleRadius, bubbleRadius,
		b.W+2*b.Padding, b.H+2*b.Padding, SpeakerColor(b.Speaker), bubbleStroke)
}

func (Comic) RenderText(buf *bytes.Buffer, b Bubble) {
	renderLines(buf, b, fonts.ComicFontFamily, FontSize(b.LineHeight))
}
