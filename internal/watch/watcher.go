// Package watch mirrors edits of an exported Markdown draft into an open
// autosave session while an external editor has the file open.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/alexanderramin/draftboard/internal/autosave"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/importer"
)

// DefaultSettle is how long the file must stay quiet before it is read.
// Editors often write a file in several steps.
const DefaultSettle = 100 * time.Millisecond

// DraftWatcher pushes the fields that changed between two versions of the
// draft file into the session. Unchanged fields are never pushed, so a
// draft whose body cannot round-trip exactly does not rewrite the note.
type DraftWatcher struct {
	path    string
	session *autosave.Session
	logger  *slog.Logger
	settle  time.Duration

	mu   sync.Mutex
	raw  []byte
	last *domain.Note
}

// NewDraftWatcher reads path as the baseline version. The session must
// already be loaded with the note the draft was exported from.
func NewDraftWatcher(path string, session *autosave.Session, logger *slog.Logger) (*DraftWatcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	base, err := importer.ParseMarkdown(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing draft baseline: %w", err)
	}
	return &DraftWatcher{
		path:    abs,
		session: session,
		logger:  logger.With("draft", abs),
		settle:  DefaultSettle,
		raw:     raw,
		last:    base,
	}, nil
}

// SetSettle overrides DefaultSettle.
func (w *DraftWatcher) SetSettle(d time.Duration) {
	if d > 0 {
		w.settle = d
	}
}

// Start runs the watcher in the background until ctx is cancelled.
func (w *DraftWatcher) Start(ctx context.Context) {
	lifecycle.Go(ctx, w.Run, lifecycle.WithErrorHandler(func(err error) {
		w.logger.Error("draft watcher stopped", "error", err)
	}))
}

// Run watches the draft's directory, since editors commonly replace the
// file by renaming a temporary one over it. It returns nil when ctx ends.
func (w *DraftWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("draft event", "op", event.Op.String())
			timer.Reset(w.settle)

		case <-timer.C:
			if err := w.Sync(); err != nil {
				w.logger.Warn("draft not applied", "error", err)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", "error", werr)
		}
	}
}

// Sync reads the draft and pushes every field that differs from the
// previous version. A draft that fails to parse is skipped and the
// previous version stays the baseline.
func (w *DraftWatcher) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading draft: %w", err)
	}
	if slices.Equal(raw, w.raw) {
		return nil
	}

	next, err := importer.ParseMarkdown(raw)
	if err != nil {
		return err
	}
	if err := w.apply(w.last, next); err != nil {
		return err
	}
	w.raw = raw
	w.last = next
	return nil
}

func (w *DraftWatcher) apply(prev, next *domain.Note) error {
	var changed []string
	if next.Title != prev.Title {
		if err := w.session.SetTitle(next.Title); err != nil {
			return err
		}
		changed = append(changed, "title")
	}
	if next.Content != prev.Content {
		if err := w.session.SetContent(next.Content); err != nil {
			return err
		}
		changed = append(changed, "content")
	}
	if !slices.Equal(next.Tags, prev.Tags) {
		if err := w.session.SetTags(next.Tags); err != nil {
			return err
		}
		changed = append(changed, "tags")
	}
	if domain.StrFromPtr(next.ProjectID) != domain.StrFromPtr(prev.ProjectID) {
		if err := w.session.SetProject(domain.StrFromPtr(next.ProjectID)); err != nil {
			return err
		}
		changed = append(changed, "project")
	}
	if !reflect.DeepEqual(next.Metadata, prev.Metadata) {
		if err := w.session.SetMetadata(next.Metadata); err != nil {
			return err
		}
		changed = append(changed, "metadata")
	}
	if len(changed) > 0 {
		w.logger.Info("draft applied", "fields", changed)
	}
	return nil
}
