package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/richtext"
	"github.com/alexanderramin/draftboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDraft = `---
id: 6b0f7d1e-2c3a-4d5e-8f90-1a2b3c4d5e6f
title: Checkout revamp
tags: [payments, ux, payments]
status: in_review
priority: high
target_release: "2026.4"
due_date: 2026-11-30
stakeholders: [" Dana ", Lee]
---
# Goals

Cut checkout to **two** steps.

` + "```excalidraw\n" +
	`{"name":"Flow","elements":[{"type":"arrow","id":"a1","points":[[0,0],[40,0]]}],"appState":{},"files":{}}` + "\n" +
	"```\n"

func TestParseMarkdown_FrontMatterAndBody(t *testing.T) {
	note, err := ParseMarkdown([]byte(sampleDraft))
	require.NoError(t, err)

	assert.Equal(t, "6b0f7d1e-2c3a-4d5e-8f90-1a2b3c4d5e6f", note.ID)
	assert.Equal(t, "Checkout revamp", note.Title)
	assert.Equal(t, []string{"payments", "ux"}, note.Tags)
	assert.Equal(t, domain.NoteInReview, note.Metadata.Status)
	assert.Equal(t, domain.PriorityHigh, note.Metadata.Priority)
	assert.Equal(t, "2026.4", note.Metadata.TargetRelease)
	require.NotNil(t, note.Metadata.DueDate)
	assert.Equal(t, "2026-11-30", note.Metadata.DueDate.Format(dateLayout))
	assert.Equal(t, []string{"Dana", "Lee"}, note.Metadata.Stakeholders)
	assert.Nil(t, note.ProjectID)

	doc, err := richtext.Parse(note.Content)
	require.NoError(t, err)
	assert.Equal(t, "Goals\nCut checkout to two steps.", richtext.PlainText(doc))

	diagrams := richtext.DiagramNodes(doc)
	require.Len(t, diagrams, 1)
	assert.NotEmpty(t, diagrams[0].ID, "id-less fences get an id")

	canvases := canvas.Decode(note.CanvasData, nil)
	require.Len(t, canvases, 1)
	assert.Equal(t, diagrams[0].ID, canvases[0].ID)
	assert.Equal(t, "Flow", canvases[0].Name)
	assert.Len(t, canvases[0].Data.Elements, 1)
}

func TestParseMarkdown_StableDiagramIDs(t *testing.T) {
	first, err := ParseMarkdown([]byte(sampleDraft))
	require.NoError(t, err)
	second, err := ParseMarkdown([]byte(sampleDraft))
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content, "re-parsing an unchanged draft must not change content")
}

func TestParseMarkdown_NoFrontMatter(t *testing.T) {
	note, err := ParseMarkdown([]byte("# Search v2\n\nRanking tweaks.\n"))
	require.NoError(t, err)

	assert.Empty(t, note.ID)
	assert.Equal(t, "Search v2", note.Title, "title falls back to the first heading")
	assert.Empty(t, note.Tags)
	assert.Empty(t, note.CanvasData)
}

func TestParseMarkdown_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed front matter", "---\ntitle: x\n# body\n"},
		{"bad yaml", "---\ntitle: [unclosed\n---\nbody\n"},
		{"bad status", "---\nstatus: shipped\n---\n"},
		{"bad priority", "---\npriority: urgent\n---\n"},
		{"bad due date", "---\ndue_date: next week\n---\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMarkdown([]byte(tc.input))
			assert.Error(t, err)
		})
	}

	_, err := ParseMarkdown([]byte("---\nstatus: shipped\npriority: urgent\n---\n"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errs, 2)
}

func TestParseMarkdown_DelimiterInsideBodyIsKept(t *testing.T) {
	note, err := ParseMarkdown([]byte("---\ntitle: Rules\n---\nAbove\n\n---\n\nBelow\n"))
	require.NoError(t, err)

	doc, err := richtext.Parse(note.Content)
	require.NoError(t, err)
	require.Len(t, doc.Content, 3)
	assert.Equal(t, richtext.TypeHorizontalRule, doc.Content[1].Type)
}

func TestExportMarkdown_RoundTrip(t *testing.T) {
	doc := richtext.NewDoc()
	doc.Content = []*richtext.Node{
		{Type: richtext.TypeParagraph, Content: []*richtext.Node{{Type: richtext.TypeText, Text: "Intro"}}},
		richtext.NewDiagramNode("inline-1", "", map[string]any{"elements": []any{}}),
	}
	content, err := doc.Marshal()
	require.NoError(t, err)

	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	canvases := canvas.Collection{
		{ID: "inline-1", Name: "Architecture", CreatedAt: now, UpdatedAt: now, Data: canvas.DataFrom(map[string]any{
			"elements": []any{map[string]any{"id": "r1", "type": "rectangle", "width": 20.0, "height": 10.0}},
		})},
		{ID: "sidebar-1", Name: "Scratch", CreatedAt: now, UpdatedAt: now, Data: canvas.DataFrom(nil)},
	}
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	project := "proj-1"
	note := &domain.Note{
		ID:         "n-1",
		Title:      "Platform",
		Content:    content,
		Tags:       []string{"infra"},
		ProjectID:  &project,
		Metadata:   domain.NoteMetadata{Status: domain.NoteApproved, DueDate: &due},
		CanvasData: testutil.CanvasJSON(t, canvases),
	}

	out, err := ExportMarkdown(note, ExportOptions{SidebarCanvases: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), "title: Platform\n")
	assert.Contains(t, string(out), "```excalidraw\n")

	back, err := ParseMarkdown(out)
	require.NoError(t, err)
	assert.Equal(t, "n-1", back.ID)
	assert.Equal(t, "Platform", back.Title)
	assert.Equal(t, []string{"infra"}, back.Tags)
	assert.Equal(t, "proj-1", domain.StrFromPtr(back.ProjectID))
	assert.Equal(t, domain.NoteApproved, back.Metadata.Status)
	assert.Equal(t, "2026-12-01", back.Metadata.DueDate.Format(dateLayout))

	imported := canvas.Decode(back.CanvasData, nil)
	require.Len(t, imported, 2)
	assert.Equal(t, "inline-1", imported[0].ID)
	assert.Equal(t, "Architecture", imported[0].Name, "inline node takes the canvas name")
	require.Len(t, imported[0].Data.Elements, 1, "inline node carries the canvas data")
	assert.Equal(t, "sidebar-1", imported[1].ID)
}

func TestExportMarkdown_SidebarCanvasesOptional(t *testing.T) {
	note := &domain.Note{
		ID:         "n-2",
		Title:      "Empty",
		CanvasData: testutil.CanvasJSON(t, canvas.Collection{{ID: "s1", Name: "Only sidebar", Data: canvas.DataFrom(nil)}}),
	}

	out, err := ExportMarkdown(note, ExportOptions{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "excalidraw")

	back, err := ParseMarkdown(out)
	require.NoError(t, err)
	assert.Equal(t, "Empty", back.Title)
	assert.Empty(t, back.CanvasData)
}
