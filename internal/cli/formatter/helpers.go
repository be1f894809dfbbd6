package formatter

import (
	"strings"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorDim).
	Padding(1, 2)

// RenderBox draws content in a rounded box, headed by title when it is set.
func RenderBox(title, content string) string {
	if title != "" {
		content = StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content
	}
	return boxStyle.Render(content)
}

// StatusPill renders a project status.
func StatusPill(status domain.ProjectStatus) string {
	switch status {
	case domain.ProjectActive:
		return StyleGreen.Render("● Active")
	case domain.ProjectArchived:
		return StyleDim.Render("✖ Archived")
	default:
		return StyleDim.Render(string(status))
	}
}

// TruncID dims the first 8 characters of id.
func TruncID(id string) string {
	return StyleDim.Render(id[:min(8, len(id))])
}

// TagList renders tags as "#a #b", or a dim dash when there are none.
func TagList(tags []string) string {
	if len(tags) == 0 {
		return Dim("--")
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = StyleBlue.Render("#" + t)
	}
	return strings.Join(parts, " ")
}

// Truncate shortens s to at most n visible runes, ending in an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if n <= 0 || len(r) <= n {
		return string(r)
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
