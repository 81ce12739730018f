// Package strings holds text helpers shared by the command output.
package strings

import (
	"strings"
)

// PreviewWidth is the width of preview columns such as news teasers.
const PreviewWidth = 60

// minWidth leaves room for one character plus "...".
const minWidth = 4

// Truncate flattens s to a single line and shortens it to width runes,
// ending with "..." when something was cut. Widths below 4 count as 4.
func Truncate(s string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-3]) + "..."
	}
	return s
}
