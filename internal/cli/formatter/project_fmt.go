package formatter

import (
	"strings"

	"github.com/alexanderramin/draftboard/internal/domain"
)

// FormatProjectList renders a styled project list inside a bordered box.
// noteCounts maps project id to the number of linked notes.
func FormatProjectList(projects []*domain.Project, noteCounts map[string]int) string {
	headers := []string{"ID", "NAME", "NOTES", "STATUS", "UPDATED"}
	rows := make([][]string, 0, len(projects))

	for _, p := range projects {
		id := p.ShortID
		if strings.TrimSpace(id) == "" {
			id = TruncID(p.ID)
		}
		name := Bold(p.Name)
		if p.Description != "" {
			name += " " + Dim(Truncate(p.Description, 40))
		}
		rows = append(rows, []string{
			id,
			name,
			StyleFg.Render(itoa(noteCounts[p.ID])),
			StatusPill(p.Status),
			Dim(Ago(p.UpdatedAt)),
		})
	}

	return RenderBox("Projects", RenderTable(headers, rows))
}
