package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// countHeaders name columns that hold counts; they are right-aligned.
var countHeaders = map[string]bool{"NOTES": true, "ELEMENTS": true, "ITEMS": true}

// RenderTable renders rows under a styled header and a rule. Column widths
// are measured on visible width so styled cells line up.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := columnWidths(headers, rows)
	last := len(headers) - 1

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		var line strings.Builder
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style(cell)
			}
			line.WriteString(pad(cell, widths[i], countHeaders[headers[i]], i == last))
			if i < last {
				line.WriteString(strings.Repeat(" ", colGap))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return StyleHeader.Render(s) })
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	writeRow(rule, func(s string) string { return StyleDim.Render(s) })
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}
	return widths
}

// pad fills cell to width. The last left-aligned column is not padded.
func pad(cell string, width int, right, last bool) string {
	gap := max(width-lipgloss.Width(cell), 0)
	if right {
		return strings.Repeat(" ", gap) + cell
	}
	if last {
		return cell
	}
	return cell + strings.Repeat(" ", gap)
}
