package styles

import (
	"bytes"
	"encoding/xml"
)

const (
	baselineRatio = 0.8
	fontSizeRatio = 0.85
)

// Baseline returns the offset from the top of a line box to its baseline.
func Baseline(lineHeight float64) float64 { return lineHeight * baselineRatio }

// FontSize returns the font size that fills a line of the given height.
func FontSize(lineHeight float64) float64 { return lineHeight * fontSizeRatio }

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
