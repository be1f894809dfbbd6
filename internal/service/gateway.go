package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/repository"
)

// noteGateway adapts NoteService to the autosave persistence port.
type noteGateway struct {
	notes NoteService
}

// NewGateway returns an autosave.Gateway that persists through notes.
// A missing note is reported as autosave.ErrNoteNotFound so the session
// stops retrying.
func NewGateway(notes NoteService) autosave.Gateway {
	return &noteGateway{notes: notes}
}

func (g *noteGateway) Save(ctx context.Context, noteID string, patch autosave.Patch) error {
	return translateNotFound(g.notes.Patch(ctx, noteID, patch.NotePatch))
}

func (g *noteGateway) Delete(ctx context.Context, noteID string) error {
	return translateNotFound(g.notes.Delete(ctx, noteID))
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", autosave.ErrNoteNotFound, err)
	}
	return err
}
