package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/draftboard/internal/llm"
	"github.com/alexanderramin/draftboard/internal/richtext"
)

// SectionResult is one generated section, reported as soon as it is done.
type SectionResult struct {
	Index    int
	Title    string
	Markdown string
	// Blocks holds the heading and body blocks added to the document.
	Blocks []*richtext.Node
}

// DocumentService writes a document one section at a time.
type DocumentService interface {
	// Generate drafts each section in order. Every prompt carries the brief
	// and the sections written before it. emit, when non-nil, is called
	// after each section. On error the document holds the sections that
	// completed.
	Generate(ctx context.Context, brief string, sections []string, emit func(SectionResult)) (*richtext.Node, error)
}

type documentService struct {
	client llm.LLMClient
}

// NewDocumentService creates a DocumentService backed by an LLM client.
func NewDocumentService(client llm.LLMClient) DocumentService {
	return &documentService{client: client}
}

func (s *documentService) Generate(ctx context.Context, brief string, sections []string, emit func(SectionResult)) (*richtext.Node, error) {
	if strings.TrimSpace(brief) == "" {
		return nil, fmt.Errorf("document brief is required")
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("at least one section is required")
	}

	doc := richtext.NewDoc()
	var written []SectionResult
	for i, title := range sections {
		if err := ctx.Err(); err != nil {
			return doc, err
		}
		title = strings.TrimSpace(title)

		resp, err := s.client.Generate(ctx, llm.GenerateRequest{
			Task:         llm.TaskSectionDraft,
			SystemPrompt: sectionDraftSystemPrompt,
			UserPrompt:   buildSectionPrompt(brief, written, title),
		})
		if err != nil {
			return doc, fmt.Errorf("drafting section %q: %w", title, err)
		}

		body := cleanSection(resp.Text)
		res := SectionResult{
			Index:    i,
			Title:    title,
			Markdown: body,
			Blocks:   sectionBlocks(title, body),
		}
		doc.Content = append(doc.Content, res.Blocks...)
		written = append(written, res)
		if emit != nil {
			emit(res)
		}
	}
	return doc, nil
}

func buildSectionPrompt(brief string, written []SectionResult, title string) string {
	var b strings.Builder
	b.WriteString("Brief:\n")
	b.WriteString(strings.TrimSpace(brief))
	b.WriteString("\n")
	for _, w := range written {
		fmt.Fprintf(&b, "\n## %s\n%s\n", w.Title, w.Markdown)
	}
	fmt.Fprintf(&b, "\nWrite the section: %s\n", title)
	return b.String()
}

// cleanSection strips a wrapping code fence and a repeated title line.
func cleanSection(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = strings.TrimSuffix(strings.TrimSpace(text[nl+1:]), "```")
		}
	}
	return strings.TrimSpace(text)
}

func sectionBlocks(title, body string) []*richtext.Node {
	heading := &richtext.Node{
		Type:    richtext.TypeHeading,
		Attrs:   map[string]any{"level": 2},
		Content: []*richtext.Node{{Type: richtext.TypeText, Text: title}},
	}
	blocks := []*richtext.Node{heading}
	parsed := richtext.FromMarkdown([]byte(body))
	for _, n := range parsed.Content {
		// A body that restates its own title as a heading would duplicate it.
		if len(blocks) == 1 && n.Type == richtext.TypeHeading && strings.EqualFold(richtext.PlainText(n), title) {
			continue
		}
		blocks = append(blocks, n)
	}
	return blocks
}
