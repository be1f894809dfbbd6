package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/cli/formatter"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/repository"
)

// notFoundError renders a missing entity with a hint to the listing command.
type notFoundError struct {
	kind, ref, hint string
	err             error
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q\n%s", e.kind, e.ref, formatter.Hint(e.hint))
}

func (e *notFoundError) Unwrap() error { return e.err }

// resolveNote loads a note by full id or unambiguous prefix.
func resolveNote(ctx context.Context, app *App, ref string) (*domain.Note, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("note ID is required")
	}
	n, err := app.Notes.Get(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &notFoundError{kind: "note", ref: ref, hint: "run 'draftboard note list' to see available notes", err: err}
	}
	return n, err
}

// resolveProject loads a project by short id (case-insensitive) or id.
func resolveProject(ctx context.Context, app *App, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("project ID is required")
	}
	p, err := app.Projects.Get(ctx, domain.NormalizeShortID(ref))
	if errors.Is(err, repository.ErrNotFound) {
		p, err = app.Projects.Get(ctx, ref)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &notFoundError{kind: "project", ref: ref, hint: "run 'draftboard project list' to see available projects", err: err}
	}
	return p, err
}

// resolveProjectFlag maps a --project value to a project id; "" stays "".
func resolveProjectFlag(ctx context.Context, app *App, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", nil
	}
	p, err := resolveProject(ctx, app, ref)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}
