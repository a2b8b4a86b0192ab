package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// layoutWords renders found words as a column grid that fits within
// width cells. Words are sorted alphabetically and pangrams get their
// own style. Styling is applied after the layout is computed so styled
// escape sequences do not skew the column widths.
func layoutWords(words []string, pangrams map[string]struct{}, width int, plain, pangram lipgloss.Style) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Strings(sorted)

	colWidth := 0
	for _, word := range sorted {
		if w := runewidth.StringWidth(word); w > colWidth {
			colWidth = w
		}
	}
	colWidth += 2
	cols := width / colWidth
	if cols < 1 {
		cols = 1
	}

	var b strings.Builder
	for i, word := range sorted {
		cell := word + strings.Repeat(" ", colWidth-runewidth.StringWidth(word))
		if _, ok := pangrams[word]; ok {
			b.WriteString(pangram.Render(cell))
		} else {
			b.WriteString(plain.Render(cell))
		}
		if (i+1)%cols == 0 && i != len(sorted)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
