// Package fonts names the font stacks used for caption text.
//
// Fonts are referenced by family name only; the SVG viewer or rsvg-convert
// resolves them against the fonts installed on the system, falling back
// along the stack.
package fonts

// ComicFontFamily is the hand-lettered stack used by the comic style.
const ComicFontFamily = `'Comic Neue', 'xkcd Script', 'Comic Sans MS', 'Bradley Hand', 'Segoe Script', sans-serif`

// SansFontFamily is the plain stack used by the simple style.
const SansFontFamily = `'Helvetica Neue', Helvetica, Arial, sans-serif`
