package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// NoteDetail holds what `note show` renders.
type NoteDetail struct {
	Note        *domain.Note
	ProjectName string
	PlainText   string
	Canvases    canvas.Collection
}

// FormatNoteList renders notes as a table inside a bordered box.
func FormatNoteList(notes []*domain.Note) string {
	headers := []string{"ID", "TITLE", "STATUS", "PRIORITY", "TAGS", "UPDATED"}
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			TruncID(n.ID),
			Bold(Truncate(n.DisplayTitle(), 48)),
			NoteStatusPill(n.Metadata.Status),
			PriorityBadge(n.Metadata.Priority),
			TagList(n.Tags),
			Dim(Ago(n.UpdatedAt)),
		})
	}
	return RenderBox("Notes", RenderTable(headers, rows))
}

// FormatNoteDetail renders a metadata panel, the note body and its
// attachments.
func FormatNoteDetail(d NoteDetail) string {
	n := d.Note
	var meta []string
	add := func(label, value string) {
		meta = append(meta, fmt.Sprintf("%s %s", Dim(fmt.Sprintf("%-10s", label)), value))
	}
	add("id", n.ID)
	add("status", NoteStatusPill(n.Metadata.Status))
	add("priority", PriorityBadge(n.Metadata.Priority))
	add("tags", TagList(n.Tags))
	if d.ProjectName != "" {
		add("project", StylePurple.Render(d.ProjectName))
	}
	if n.Metadata.TargetRelease != "" {
		add("release", n.Metadata.TargetRelease)
	}
	if n.Metadata.DueDate != nil {
		add("due", Due(*n.Metadata.DueDate))
	}
	if len(n.Metadata.Stakeholders) > 0 {
		add("people", strings.Join(n.Metadata.Stakeholders, ", "))
	}
	add("updated", Ago(n.UpdatedAt))

	sections := []string{lipgloss.JoinVertical(lipgloss.Left, meta...)}

	body := strings.TrimSpace(d.PlainText)
	if body == "" {
		body = Dim("(empty)")
	}
	sections = append(sections, Header("Content")+"\n"+body)

	if len(d.Canvases) > 0 {
		sections = append(sections, Header("Canvases")+"\n"+canvasLines(d.Canvases))
	}
	if len(n.GeneratedFeatures) > 0 {
		sections = append(sections, FormatItemList(domain.ItemFeature, n.GeneratedFeatures))
	}
	if len(n.GeneratedTasks) > 0 {
		sections = append(sections, FormatItemList(domain.ItemTask, n.GeneratedTasks))
	}

	return RenderBox(n.DisplayTitle(), strings.Join(sections, "\n\n"))
}

// FormatCanvasList renders the canvas collection of a note.
func FormatCanvasList(c canvas.Collection) string {
	headers := []string{"ID", "NAME", "ELEMENTS", "UPDATED"}
	rows := make([][]string, 0, len(c))
	for _, cv := range c {
		rows = append(rows, []string{
			TruncID(cv.ID),
			Bold(cv.Name),
			itoa(len(cv.Data.Elements)),
			Dim(Ago(cv.UpdatedAt)),
		})
	}
	return RenderTable(headers, rows)
}

func canvasLines(c canvas.Collection) string {
	lines := make([]string, len(c))
	for i, cv := range c {
		lines[i] = fmt.Sprintf("%s %s %s", TruncID(cv.ID), Bold(cv.Name), Dim(fmt.Sprintf("(%d elements)", len(cv.Data.Elements))))
	}
	return strings.Join(lines, "\n")
}

// FormatItemList renders a generated feature or task list with 1-based
// positions, which item commands accept as references.
func FormatItemList(kind domain.ItemKind, items []domain.GeneratedItem) string {
	title := "Features"
	if kind == domain.ItemTask {
		title = "Tasks"
	}

	added := 0
	var b strings.Builder
	for i, it := range items {
		mark := Dim("[ ]")
		if it.Selected {
			mark = StyleGreen.Render("[x]")
		}
		line := fmt.Sprintf("%s %2d. %s", mark, i+1, Bold(it.Title))
		if it.Priority != "" {
			line += " " + PriorityBadge(it.Priority)
		}
		if it.Added {
			added++
			line += " " + StylePurple.Render("→ "+it.AddedTo)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if it.Description != "" {
			b.WriteString("       " + Dim(Truncate(it.Description, 72)) + "\n")
		}
	}
	fmt.Fprintf(&b, "%s added", RenderProgress(added, len(items), 10))
	return Header(title) + "\n" + b.String()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
