package domain

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Note is a PRD or free-form product note. Content holds the serialized
// rich-document tree; CanvasData holds the serialized canvas collection.
// Both are opaque to the domain layer.
type Note struct {
	ID        string
	Title     string
	Content   string
	Tags      []string
	ProjectID *string

	Metadata NoteMetadata

	GeneratedFeatures []GeneratedItem
	GeneratedTasks    []GeneratedItem

	CanvasData string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteMetadata holds the planning fields shown in the note header.
type NoteMetadata struct {
	Status        NoteStatus `json:"status"`
	Priority      Priority   `json:"priority"`
	TargetRelease string     `json:"targetRelease"`
	DueDate       *time.Time `json:"dueDate"`
	Stakeholders  []string   `json:"stakeholders"`
}

// Validate checks the enumerated metadata fields.
func (m NoteMetadata) Validate() error {
	if m.Status != "" && !m.Status.Valid() {
		return fmt.Errorf("invalid note status %q", m.Status)
	}
	if !m.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", m.Priority)
	}
	return nil
}

// GeneratedItem is an AI-suggested feature or task attached to a note.
type GeneratedItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority,omitempty"`
	Selected    bool     `json:"selected"`
	Added       bool     `json:"added"`
	AddedTo     string   `json:"addedTo,omitempty"`
}

// NormalizeTags trims, de-duplicates and sorts tags. Tags are a set, so
// the result is the canonical order used for comparison and storage.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DisplayTitle returns the title or a placeholder for untitled notes.
func (n *Note) DisplayTitle() string {
	return cmp.Or(strings.TrimSpace(n.Title), "Untitled")
}

// ShortID truncates the note ID for display.
func (n *Note) ShortID() string {
	if len(n.ID) >= 8 {
		return n.ID[:8]
	}
	return n.ID
}

// Items returns the generated list for kind.
func (n *Note) Items(kind ItemKind) []GeneratedItem {
	if kind == ItemTask {
		return n.GeneratedTasks
	}
	return n.GeneratedFeatures
}

// SetItems replaces the generated list for kind.
func (n *Note) SetItems(kind ItemKind, items []GeneratedItem) {
	if kind == ItemTask {
		n.GeneratedTasks = items
		return
	}
	n.GeneratedFeatures = items
}
