package segment

import (
	"strings"
	"unicode/utf8"
)

// Wrap greedily fills lines of at most width characters, breaking only at
// whitespace. A word longer than width is never split; it gets a line of
// its own. Separating whitespace at line breaks is dropped, so joining the
// lines with single spaces reproduces the whitespace-collapsed text.
func Wrap(text string, width int) []string {
	var lines []string
	var cur strings.Builder
	curLen := 0

	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		switch {
		case curLen == 0:
			cur.WriteString(word)
			curLen = n
		case curLen+1+n <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curLen += 1 + n
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(word)
			curLen = n
		}
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
