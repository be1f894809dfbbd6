package intelligence

import (
	"context"
	"testing"

	"github.com/alexanderramin/draftboard/internal/llm"
	"github.com/alexanderramin/draftboard/internal/richtext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Generate(t *testing.T) {
	client := &taskMockClient{responses: map[llm.TaskType][]string{
		llm.TaskSectionDraft: {
			"Checkout loses users at the card form.",
			"```markdown\n## Goals\n\n- Fewer steps\n- Saved cards\n```",
		},
	}}
	svc := NewDocumentService(client)

	var emitted []SectionResult
	doc, err := svc.Generate(context.Background(), "Redesign checkout", []string{"Problem", "Goals"}, func(r SectionResult) {
		emitted = append(emitted, r)
	})
	require.NoError(t, err)

	require.Len(t, emitted, 2)
	assert.Equal(t, 0, emitted[0].Index)
	assert.Equal(t, "Goals", emitted[1].Title)

	require.Len(t, doc.Content, 4, "two headings, one paragraph, one list")
	assert.Equal(t, richtext.TypeHeading, doc.Content[0].Type)
	assert.Equal(t, "Problem", richtext.PlainText(doc.Content[0]))
	assert.Equal(t, richtext.TypeParagraph, doc.Content[1].Type)
	assert.Equal(t, "Goals", richtext.PlainText(doc.Content[2]))
	assert.Equal(t, richtext.TypeBulletList, doc.Content[3].Type)

	reqs := client.requestsFor(llm.TaskSectionDraft)
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].UserPrompt, "Redesign checkout")
	assert.NotContains(t, reqs[0].UserPrompt, "## Problem")
	assert.Contains(t, reqs[1].UserPrompt, "## Problem\nCheckout loses users at the card form.")
	assert.Contains(t, reqs[1].UserPrompt, "Write the section: Goals")
}

func TestDocumentService_ErrorKeepsCompletedSections(t *testing.T) {
	client := &taskMockClient{responses: map[llm.TaskType][]string{
		llm.TaskSectionDraft: {"first"},
	}}
	svc := NewDocumentService(client)

	calls := 0
	doc, err := svc.Generate(context.Background(), "brief", []string{"One", "Two"}, func(SectionResult) {
		calls++
		client.errs = map[llm.TaskType]error{llm.TaskSectionDraft: llm.ErrRetryExhausted}
	})
	assert.ErrorIs(t, err, llm.ErrRetryExhausted)
	assert.ErrorContains(t, err, `section "Two"`)
	assert.Equal(t, 1, calls)
	require.NotNil(t, doc)
	assert.Len(t, doc.Content, 2)
}

func TestDocumentService_Cancelled(t *testing.T) {
	svc := NewDocumentService(&taskMockClient{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := svc.Generate(ctx, "brief", []string{"One"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, doc.Content)
}

func TestDocumentService_Validation(t *testing.T) {
	svc := NewDocumentService(&taskMockClient{})

	_, err := svc.Generate(context.Background(), " ", []string{"One"}, nil)
	assert.ErrorContains(t, err, "brief is required")

	_, err = svc.Generate(context.Background(), "brief", nil, nil)
	assert.ErrorContains(t, err, "at least one section")
}
