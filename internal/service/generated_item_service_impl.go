package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/db"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/repository"
)

type generatedItemService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewGeneratedItemService(uow db.UnitOfWork, observers ...UseCaseObserver) GeneratedItemService {
	return &generatedItemService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *generatedItemService) SetSelected(ctx context.Context, noteID string, kind domain.ItemKind, refs []string, selected bool) (items []domain.GeneratedItem, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observeUseCase(ctx, s.observer, "select-items", startedAt, map[string]any{
			"note_id":  noteID,
			"kind":     string(kind),
			"refs":     len(refs),
			"selected": selected,
		}, err)
	}()

	err = s.updateItems(ctx, noteID, kind, func(list []domain.GeneratedItem) ([]domain.GeneratedItem, error) {
		for _, ref := range refs {
			i, err := findItem(list, ref)
			if err != nil {
				return nil, err
			}
			list[i].Selected = selected
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return s.items(ctx, noteID, kind)
}

func (s *generatedItemService) AddSelectedToDestination(ctx context.Context, noteID string, kind domain.ItemKind, destination string) (added []domain.GeneratedItem, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"note_id": noteID, "kind": string(kind), "destination": destination}
	defer func() {
		fields["added"] = len(added)
		observeUseCase(ctx, s.observer, "add-items-to-destination", startedAt, fields, err)
	}()

	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, fmt.Errorf("destination is required")
	}

	err = s.updateItems(ctx, noteID, kind, func(list []domain.GeneratedItem) ([]domain.GeneratedItem, error) {
		added = added[:0]
		for i := range list {
			if !list[i].Selected || list[i].Added {
				continue
			}
			list[i].Added = true
			list[i].AddedTo = destination
			added = append(added, list[i])
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// updateItems reads the item list of kind, applies fn and writes the list
// back in the same transaction.
func (s *generatedItemService) updateItems(ctx context.Context, noteID string, kind domain.ItemKind, fn func([]domain.GeneratedItem) ([]domain.GeneratedItem, error)) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid item kind %q (want feature or task)", kind)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNotes := repository.NewSQLiteNoteRepo(tx)

		note, err := txNotes.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		list := append([]domain.GeneratedItem(nil), note.Items(kind)...)
		list, err = fn(list)
		if err != nil {
			return err
		}

		var patch domain.NotePatch
		if kind == domain.ItemTask {
			patch.GeneratedTasks = &list
		} else {
			patch.GeneratedFeatures = &list
		}
		if err := txNotes.ApplyPatch(ctx, noteID, patch); err != nil {
			return fmt.Errorf("saving %s items: %w", kind, err)
		}
		return nil
	})
}

func (s *generatedItemService) items(ctx context.Context, noteID string, kind domain.ItemKind) ([]domain.GeneratedItem, error) {
	var items []domain.GeneratedItem
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		note, err := repository.NewSQLiteNoteRepo(tx).GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		items = note.Items(kind)
		return nil
	})
	return items, err
}

// findItem resolves ref as an item id or a 1-based position.
func findItem(list []domain.GeneratedItem, ref string) (int, error) {
	for i, item := range list {
		if item.ID == ref {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(list) {
		return n - 1, nil
	}
	return -1, fmt.Errorf("no generated item %q (have %d)", ref, len(list))
}
