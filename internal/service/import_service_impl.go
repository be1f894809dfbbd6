package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/db"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/importer"
	"github.com/alexanderramin/draftboard/internal/repository"
	"github.com/google/uuid"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) Import(ctx context.Context, patterns []string) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"patterns": len(patterns)}
	defer func() {
		if result != nil {
			fields["notes"] = len(result.Notes)
		}
		observeUseCase(ctx, s.observer, "import-notes", startedAt, fields, err)
	}()

	paths, err := importer.ExpandGlobs(patterns)
	if err != nil {
		return nil, err
	}

	now := startedAt.Truncate(time.Second)
	result = &ImportResult{}
	for _, path := range paths {
		var note *domain.Note
		note, err = loadDraft(path)
		if err != nil {
			return nil, err
		}
		if note.ID == "" {
			note.ID = uuid.New().String()
		}
		if note.Metadata.Status == "" {
			note.Metadata.Status = domain.NoteDraft
		}
		note.CreatedAt = now
		note.UpdatedAt = now
		result.Notes = append(result.Notes, note)
		result.Canvases += len(canvas.Decode(note.CanvasData, nil))
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNotes := repository.NewSQLiteNoteRepo(tx)
		txProjects := repository.NewSQLiteProjectRepo(tx)

		for i, note := range result.Notes {
			if note.ProjectID != nil {
				if _, err := txProjects.GetByID(ctx, *note.ProjectID); err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						err = ErrProjectNotFound
					}
					return fmt.Errorf("importing %s: linking project %s: %w", paths[i], *note.ProjectID, err)
				}
			}
			if err := txNotes.Create(ctx, note); err != nil {
				return fmt.Errorf("importing %s: %w", paths[i], err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadDraft(path string) (*domain.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	note, err := importer.ParseMarkdown(data)
	if err != nil {
		var verr *importer.ValidationError
		if errors.As(err, &verr) {
			verr.Source = path
			return nil, verr
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return note, nil
}
