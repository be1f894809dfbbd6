package service

import (
	"context"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/repository"
)

type NoteService interface {
	Create(ctx context.Context, n *domain.Note) error
	// Get resolves a full note id or an unambiguous id prefix.
	Get(ctx context.Context, ref string) (*domain.Note, error)
	List(ctx context.Context, filter repository.NoteFilter) ([]*domain.Note, error)
	// Update writes every field of n.
	Update(ctx context.Context, n *domain.Note) error
	// Patch writes only the fields set on patch.
	Patch(ctx context.Context, id string, patch domain.NotePatch) error
	Delete(ctx context.Context, id string) error
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	// Get resolves a project by id or short id.
	Get(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, force bool) error
}

type GeneratedItemService interface {
	// SetSelected flips the selection flag of the referenced items. refs are
	// item ids or 1-based positions in the list.
	SetSelected(ctx context.Context, noteID string, kind domain.ItemKind, refs []string, selected bool) ([]domain.GeneratedItem, error)
	// AddSelectedToDestination marks every selected, not yet added item as
	// added to destination and returns the items it marked.
	AddSelectedToDestination(ctx context.Context, noteID string, kind domain.ItemKind, destination string) ([]domain.GeneratedItem, error)
}

// ImportResult holds the outcome of a Markdown import.
type ImportResult struct {
	Notes    []*domain.Note
	Canvases int
}

type ImportService interface {
	// Import expands patterns and inserts every matched draft in one
	// transaction. Nothing is written when any file fails.
	Import(ctx context.Context, patterns []string) (*ImportResult, error)
}
