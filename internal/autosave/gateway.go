package autosave

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alexanderramin/draftboard/internal/domain"
)

var (
	// ErrSessionClosed is returned by mutations after Close or Delete.
	ErrSessionClosed = errors.New("autosave session closed")
	// ErrNotLoaded is returned by mutations before Load.
	ErrNotLoaded = errors.New("autosave session has no note loaded")
	// ErrNoteNotFound marks gateway failures that retrying cannot fix.
	ErrNoteNotFound = errors.New("note not found")
	// ErrCanvasNotFound is returned when a canvas id is not in the collection.
	ErrCanvasNotFound = errors.New("canvas not found")
)

// Patch is the minimal set of changed fields of one save.
type Patch struct {
	Fields []Field
	domain.NotePatch
}

// Gateway persists notes. Fields absent from a patch must be left
// unchanged by the store.
type Gateway interface {
	Save(ctx context.Context, noteID string, patch Patch) error
	Delete(ctx context.Context, noteID string) error
}

// Notifier receives the outcome of background saves.
type Notifier interface {
	Saved(noteID string, fields []Field)
	SaveFailed(noteID string, err error)
}

// LogNotifier reports save outcomes through slog.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Saved(noteID string, fields []Field) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	n.logger().Debug("note saved", "note_id", noteID, "fields", names)
}

func (n LogNotifier) SaveFailed(noteID string, err error) {
	n.logger().Error("saving note failed", "note_id", noteID, "error", err)
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}
