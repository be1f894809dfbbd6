package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Project options
type ProjectOption func(*domain.Project)

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithShortID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ShortID = id
	}
}

func WithDescription(d string) ProjectOption {
	return func(p *domain.Project) {
		p.Description = d
	}
}

func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testShortIDCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:        uuid.New().String(),
		ShortID:   defaultShortID(name),
		Name:      name,
		Status:    domain.ProjectActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Note options
type NoteOption func(*domain.Note)

func WithContent(content string) NoteOption {
	return func(n *domain.Note) {
		n.Content = content
	}
}

func WithTags(tags ...string) NoteOption {
	return func(n *domain.Note) {
		n.Tags = tags
	}
}

func WithProject(projectID string) NoteOption {
	return func(n *domain.Note) {
		n.ProjectID = &projectID
	}
}

func WithNoteStatus(s domain.NoteStatus) NoteOption {
	return func(n *domain.Note) {
		n.Metadata.Status = s
	}
}

func WithPriority(p domain.Priority) NoteOption {
	return func(n *domain.Note) {
		n.Metadata.Priority = p
	}
}

func WithCanvasData(raw string) NoteOption {
	return func(n *domain.Note) {
		n.CanvasData = raw
	}
}

func WithGeneratedFeatures(items ...domain.GeneratedItem) NoteOption {
	return func(n *domain.Note) {
		n.GeneratedFeatures = items
	}
}

func WithGeneratedTasks(items ...domain.GeneratedItem) NoteOption {
	return func(n *domain.Note) {
		n.GeneratedTasks = items
	}
}

func WithUpdatedAt(t time.Time) NoteOption {
	return func(n *domain.Note) {
		n.UpdatedAt = t
	}
}

func NewTestNote(title string, opts ...NoteOption) *domain.Note {
	now := time.Now().UTC().Truncate(time.Second)
	n := &domain.Note{
		ID:       uuid.New().String(),
		Title:    title,
		Tags:     []string{},
		Metadata: domain.NoteMetadata{Status: domain.NoteDraft, Stakeholders: []string{}},
		// Empty JSON arrays mirror what the repository returns.
		GeneratedFeatures: []domain.GeneratedItem{},
		GeneratedTasks:    []domain.GeneratedItem{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewTestItem returns an unselected generated item with a fresh id.
func NewTestItem(title string) domain.GeneratedItem {
	return domain.GeneratedItem{
		ID:          uuid.New().String(),
		Title:       title,
		Description: title + " description",
	}
}
