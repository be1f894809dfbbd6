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

type projectService struct {
	projects repository.ProjectRepo
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, observers ...UseCaseObserver) ProjectService {
	return &projectService{projects: projects, observer: useCaseObserverOrNoop(observers)}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "create-project", startedAt, map[string]any{"short_id": p.ShortID}, err)
	}()

	if err = p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := startedAt.Truncate(time.Second)
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	return s.projects.Create(ctx, p)
}

func (s *projectService) Get(ctx context.Context, ref string) (*domain.Project, error) {
	p, err := s.projects.GetByShortID(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return s.projects.GetByID(ctx, ref)
	}
	return p, err
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeArchived)
}

func (s *projectService) Archive(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "archive-project", startedAt, map[string]any{"project_id": id}, err)
	}()
	return s.projects.Archive(ctx, id)
}

// Delete removes a project. Linked notes are kept and unlinked. Without
// force only archived projects may be deleted.
func (s *projectService) Delete(ctx context.Context, id string, force bool) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "delete-project", startedAt, map[string]any{"project_id": id, "force": force}, err)
	}()

	if !force {
		var p *domain.Project
		p, err = s.projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsArchived() {
			return fmt.Errorf("project must be archived before deletion (use --force to override)")
		}
	}
	return s.projects.Delete(ctx, id)
}
