package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/richtext"
	"github.com/google/uuid"
)

// diagramNamespace seeds the name-based ids of diagram fences that carry
// no id, so parsing the same draft twice yields the same canvases.
var diagramNamespace = uuid.MustParse("8a3e5c52-0f4b-4d8e-9b61-2f7d3c9a41e0")

// ParseMarkdown converts a Markdown draft with optional YAML front matter
// into a note. The body becomes the content tree; "excalidraw" fences
// become inline diagrams and are also listed in CanvasData. Timestamps are
// left for the caller.
func ParseMarkdown(data []byte) (*domain.Note, error) {
	fm, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}
	if errs := ValidateFrontMatter(fm); len(errs) > 0 {
		return nil, &ValidationError{Errs: errs}
	}

	doc := richtext.FromMarkdown(body)
	assignDiagramIDs(doc)

	content, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encoding content: %w", err)
	}

	note := &domain.Note{
		ID:        strings.TrimSpace(fm.ID),
		Title:     strings.TrimSpace(fm.Title),
		Content:   content,
		Tags:      domain.NormalizeTags(fm.Tags),
		ProjectID: domain.StrPtr(strings.TrimSpace(fm.ProjectID)),
		Metadata: domain.NoteMetadata{
			Status:        domain.NoteStatus(fm.Status),
			Priority:      domain.Priority(fm.Priority),
			TargetRelease: strings.TrimSpace(fm.TargetRelease),
			Stakeholders:  trimAll(fm.Stakeholders),
		},
		GeneratedFeatures: []domain.GeneratedItem{},
		GeneratedTasks:    []domain.GeneratedItem{},
	}
	if note.Title == "" {
		note.Title = firstHeading(doc)
	}
	if fm.DueDate != "" {
		due, _ := time.Parse(dateLayout, fm.DueDate)
		note.Metadata.DueDate = &due
	}

	if diagrams := canvas.FromDiagrams(richtext.DiagramNodes(doc), time.Now().UTC()); len(diagrams) > 0 {
		note.CanvasData, err = canvas.Encode(diagrams)
		if err != nil {
			return nil, err
		}
	}
	return note, nil
}

// ExportOptions tunes ExportMarkdown.
type ExportOptions struct {
	// SidebarCanvases appends canvases that are not embedded in the body
	// as trailing fences. Re-importing such a draft embeds them.
	SidebarCanvases bool
	Logger          *slog.Logger
}

// ExportMarkdown renders note as a Markdown draft that ParseMarkdown reads
// back. Inline diagrams carry the current data of their canvas.
func ExportMarkdown(note *domain.Note, opts ExportOptions) ([]byte, error) {
	header, err := formatFrontMatter(frontMatterOf(note))
	if err != nil {
		return nil, err
	}

	doc := richtext.ParseOrEmpty(note.Content, opts.Logger)
	canvases := canvas.Decode(note.CanvasData, opts.Logger)

	embedded := make(map[string]bool)
	richtext.Walk(doc, func(n *richtext.Node) bool {
		if n.Type != richtext.TypeDiagram {
			return true
		}
		id, _ := n.Attrs["id"].(string)
		if i := canvases.Find(id); i >= 0 {
			embedded[id] = true
			n.Attrs["data"] = canvas.DataMap(canvases[i].Data)
			if name, _ := n.Attrs["name"].(string); name == "" {
				n.Attrs["name"] = canvases[i].Name
			}
		}
		return false
	})
	if opts.SidebarCanvases {
		for _, cv := range canvases {
			if !embedded[cv.ID] {
				doc.Content = append(doc.Content, richtext.NewDiagramNode(cv.ID, cv.Name, canvas.DataMap(cv.Data)))
			}
		}
	}

	var buf bytes.Buffer
	buf.Write(header)
	if body := richtext.ToMarkdown(doc); body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

func frontMatterOf(n *domain.Note) FrontMatter {
	fm := FrontMatter{
		ID:            n.ID,
		Title:         n.Title,
		Tags:          n.Tags,
		Status:        string(n.Metadata.Status),
		Priority:      string(n.Metadata.Priority),
		TargetRelease: n.Metadata.TargetRelease,
		Stakeholders:  n.Metadata.Stakeholders,
		ProjectID:     domain.StrFromPtr(n.ProjectID),
	}
	if n.Metadata.DueDate != nil {
		fm.DueDate = n.Metadata.DueDate.Format(dateLayout)
	}
	return fm
}

func assignDiagramIDs(doc *richtext.Node) {
	pos := 0
	richtext.Walk(doc, func(n *richtext.Node) bool {
		if n.Type != richtext.TypeDiagram {
			return true
		}
		pos++
		if id, _ := n.Attrs["id"].(string); id == "" {
			seed, _ := json.Marshal(n.Attrs["data"])
			n.Attrs["id"] = uuid.NewSHA1(diagramNamespace, []byte(fmt.Sprintf("%d:%s", pos, seed))).String()
		}
		return false
	})
}

func firstHeading(doc *richtext.Node) string {
	for _, n := range doc.Content {
		if n.Type == richtext.TypeHeading {
			return richtext.PlainText(n)
		}
	}
	return ""
}
