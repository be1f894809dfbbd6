package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/draftboard/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// NoteFilter narrows a note listing. Zero values match everything.
type NoteFilter struct {
	ProjectID string
	IDPrefix  string
	Tag       string
	Status    domain.NoteStatus
	Limit     int
}

type NoteRepo interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	List(ctx context.Context, filter NoteFilter) ([]*domain.Note, error)
	// ApplyPatch writes only the fields set on patch and bumps updated_at.
	ApplyPatch(ctx context.Context, id string, patch domain.NotePatch) error
	Delete(ctx context.Context, id string) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
