package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/repository"
	"github.com/google/uuid"
)

// ErrProjectNotFound is returned when a note links to a missing project.
// It is kept apart from repository.ErrNotFound, which means the note itself
// is gone.
var ErrProjectNotFound = errors.New("project not found")

type noteService struct {
	notes    repository.NoteRepo
	projects repository.ProjectRepo
	observer UseCaseObserver
}

func NewNoteService(
	notes repository.NoteRepo,
	projects repository.ProjectRepo,
	observers ...UseCaseObserver,
) NoteService {
	return &noteService{
		notes:    notes,
		projects: projects,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *noteService) Create(ctx context.Context, n *domain.Note) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "create-note", startedAt, map[string]any{"note_id": n.ID}, err)
	}()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if err = n.Metadata.Validate(); err != nil {
		return err
	}
	if err = s.checkProject(ctx, domain.StrFromPtr(n.ProjectID)); err != nil {
		return err
	}
	n.Tags = domain.NormalizeTags(n.Tags)
	if n.Metadata.Status == "" {
		n.Metadata.Status = domain.NoteDraft
	}
	now := startedAt.Truncate(time.Second)
	n.CreatedAt = now
	n.UpdatedAt = now
	return s.notes.Create(ctx, n)
}

func (s *noteService) Get(ctx context.Context, ref string) (*domain.Note, error) {
	n, err := s.notes.GetByID(ctx, ref)
	if err == nil || !errors.Is(err, repository.ErrNotFound) || len(ref) >= len(uuid.Nil.String()) {
		return n, err
	}

	matches, err := s.notes.List(ctx, repository.NoteFilter{IDPrefix: ref, Limit: 2})
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("note %s: %w", ref, repository.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("note id prefix %q is ambiguous", ref)
	}
}

func (s *noteService) List(ctx context.Context, filter repository.NoteFilter) ([]*domain.Note, error) {
	return s.notes.List(ctx, filter)
}

func (s *noteService) Update(ctx context.Context, n *domain.Note) error {
	projectID := domain.StrFromPtr(n.ProjectID)
	tags := n.Tags
	features := n.GeneratedFeatures
	tasks := n.GeneratedTasks
	metadata := n.Metadata
	return s.Patch(ctx, n.ID, domain.NotePatch{
		Title:             &n.Title,
		Content:           &n.Content,
		Tags:              &tags,
		ProjectID:         &projectID,
		Metadata:          &metadata,
		GeneratedFeatures: &features,
		GeneratedTasks:    &tasks,
		CanvasData:        &n.CanvasData,
	})
}

func (s *noteService) Patch(ctx context.Context, id string, patch domain.NotePatch) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "patch-note", startedAt, map[string]any{
			"note_id": id,
			"fields":  patch.FieldNames(),
		}, err)
	}()

	if patch.IsEmpty() {
		return nil
	}
	if patch.Metadata != nil {
		if err = patch.Metadata.Validate(); err != nil {
			return err
		}
	}
	if patch.ProjectID != nil {
		if err = s.checkProject(ctx, *patch.ProjectID); err != nil {
			return err
		}
	}
	return s.notes.ApplyPatch(ctx, id, patch)
}

func (s *noteService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "delete-note", startedAt, map[string]any{"note_id": id}, err)
	}()
	return s.notes.Delete(ctx, id)
}

// checkProject verifies that a non-empty project link points at a project.
func (s *noteService) checkProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return nil
	}
	_, err := s.projects.GetByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("linking project %s: %w", projectID, ErrProjectNotFound)
	}
	return err
}
