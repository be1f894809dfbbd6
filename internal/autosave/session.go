package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/alexanderramin/draftboard/internal/richtext"
)

// Options configure a Session. Zero values select the defaults.
type Options struct {
	Delays    Delays
	Scheduler Scheduler
	Notifier  Notifier
	Logger    *slog.Logger
	Retry     RetryPolicy
	Now       func() time.Time
}

// Session is the in-memory document of one open note.
//
// Setters update the current values immediately and push the field to the
// debouncer. When a field settles the detector compares all settled values
// to the snapshot and saves whatever differs. A single mutex serializes
// setters, timer callbacks and readers; gateway calls run outside it, so
// edits keep accumulating while a save is in flight.
type Session struct {
	gateway  Gateway
	sched    Scheduler
	delays   Delays
	notifier Notifier
	logger   *slog.Logger
	retry    RetryPolicy
	now      func() time.Time

	mu       sync.Mutex
	ctx      context.Context
	noteID   string
	loaded   bool
	closed   bool
	current  Values
	settled  Values
	tree     *richtext.Node
	detector *Detector
	recon    *canvas.Reconciler
	registry *canvas.Registry
	debounce *Debouncer[Values]

	retryTimer Timer
	failures   int
	inflight   sync.WaitGroup
	order      *sequencer
}

// NewSession returns an empty session that saves through gateway. Call
// Load before editing.
func NewSession(gateway Gateway, opts Options) *Session {
	s := &Session{
		gateway:  gateway,
		sched:    opts.Scheduler,
		delays:   opts.Delays.withDefaults(),
		notifier: opts.Notifier,
		logger:   opts.Logger,
		retry:    opts.Retry,
		now:      opts.Now,
		registry: canvas.NewRegistry(),
		ctx:      context.Background(),
		order:    newSequencer(),
	}
	if s.sched == nil {
		s.sched = RealScheduler{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	if s.retry.Base <= 0 {
		s.retry = DefaultRetryPolicy()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	s.debounce = NewDebouncer(s.sched, s.delays.For, s.settle)
	return s
}

// Load populates the session from a stored note. Loading the same note
// again is a no-op. Loading a different note first saves the pending edits
// of the previous one and waits for its saves to finish; a failed save is
// reported through the notifier and does not block the switch. ctx bounds
// background saves.
//
// Two repairs are scheduled as ordinary debounced saves: canvases stored in
// the legacy single-canvas shape are rewritten once in the canonical shape,
// and inline diagrams without an id get one.
func (s *Session) Load(ctx context.Context, n *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.loaded && s.noteID == n.ID {
		return nil
	}
	if s.loaded {
		s.leaveLocked()
		if s.closed {
			return ErrSessionClosed
		}
	}

	s.debounce.CancelAll()
	s.stopRetryLocked()
	s.registry.Reset()
	s.failures = 0

	stored, migrated := canvas.DecodeWithInfo(n.CanvasData, s.logger)
	s.current = valuesFromNote(n, stored)
	s.tree = richtext.ParseOrEmpty(n.Content, s.logger)

	snap := NewSnapshot(s.current)
	if migrated {
		snap.Set(FieldCanvases, n.CanvasData)
		s.logger.Info("migrated legacy canvas data", "note_id", n.ID)
	}
	s.detector = NewDetector(snap, s.logger)
	s.recon = canvas.NewReconciler(stored, s.now)

	if richtext.EnsureDiagramIDs(s.tree) {
		s.current.Content = s.tree.String()
	}
	s.syncCanvasesLocked()
	s.settled = s.current.Clone()

	s.ctx = ctx
	s.noteID = n.ID
	s.loaded = true

	for _, f := range []Field{FieldContent, FieldCanvases} {
		if s.current.Canonical(f) != snap.Get(f) {
			s.debounce.Push(f, s.current.only(f))
		}
	}
	return nil
}

// leaveLocked saves what is pending for the loaded note before another one
// replaces it. The lock is released while saves run; edits made meanwhile
// are flushed in the next round. A failed save ends the loop so a broken
// gateway cannot hold the switch forever.
func (s *Session) leaveLocked() {
	for !s.closed {
		p := s.flushLocked()
		if p == nil {
			break
		}
		ctx := s.ctx
		s.mu.Unlock()
		err := s.dispatch(ctx, p)
		s.mu.Lock()
		if err != nil {
			s.logger.Warn("leaving note with unsaved edits", "note_id", p.noteID, "error", err)
			break
		}
	}
	s.stopRetryLocked()
	s.mu.Unlock()
	s.inflight.Wait()
	s.mu.Lock()
}

// NoteID returns the id of the loaded note.
func (s *Session) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

// Current returns the latest values, including edits not yet saved.
func (s *Session) Current() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// PlainText returns the text of the current content for AI prompts.
func (s *Session) PlainText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return richtext.PlainText(s.tree)
}

// SetTitle sets the note title.
func (s *Session) SetTitle(title string) error {
	return s.mutate(func() []Field {
		s.current.Title = title
		return []Field{FieldTitle}
	})
}

// SetContent replaces the content tree. Diagram nodes are reconciled into
// the canvas collection; diagram nodes that disappeared from the tree are
// treated as deleted inline and dropped from the collection.
func (s *Session) SetContent(raw string) error {
	return s.mutate(func() []Field {
		s.tree = richtext.ParseOrEmpty(raw, s.logger)
		if richtext.EnsureDiagramIDs(s.tree) {
			raw = s.tree.String()
		}
		s.current.Content = raw
		if s.syncCanvasesLocked() {
			return []Field{FieldContent, FieldCanvases}
		}
		return []Field{FieldContent}
	})
}

// SetTags replaces the tag set. Tags are trimmed, deduplicated and sorted.
func (s *Session) SetTags(tags []string) error {
	return s.mutate(func() []Field {
		s.current.Tags = domain.NormalizeTags(tags)
		return []Field{FieldTags}
	})
}

// SetProject links the note to projectID; "" unlinks it.
func (s *Session) SetProject(projectID string) error {
	return s.mutate(func() []Field {
		s.current.ProjectID = projectID
		return []Field{FieldProject}
	})
}

// SetMetadata replaces the metadata after validating its enumerated fields.
func (s *Session) SetMetadata(m domain.NoteMetadata) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.mutate(func() []Field {
		s.current.Metadata = cloneMetadata(m)
		return []Field{FieldMetadata}
	})
}

// SetGeneratedFeatures replaces the AI-suggested feature list.
func (s *Session) SetGeneratedFeatures(items []domain.GeneratedItem) error {
	return s.mutate(func() []Field {
		s.current.Features = append([]domain.GeneratedItem{}, items...)
		return []Field{FieldFeatures}
	})
}

// SetGeneratedTasks replaces the AI-suggested task list.
func (s *Session) SetGeneratedTasks(items []domain.GeneratedItem) error {
	return s.mutate(func() []Field {
		s.current.Tasks = append([]domain.GeneratedItem{}, items...)
		return []Field{FieldTasks}
	})
}

// AddCanvas adds a sidebar canvas and returns it with its assigned id.
// Data that cannot be stored is rejected and nothing changes.
func (s *Session) AddCanvas(name string, data domain.CanvasData) (domain.Canvas, error) {
	var (
		added  domain.Canvas
		addErr error
	)
	err := s.mutate(func() []Field {
		if added, addErr = s.recon.Add(domain.Canvas{Name: name, Data: data}); addErr != nil {
			return nil
		}
		s.current.Canvases = s.recon.Current()
		return []Field{FieldCanvases}
	})
	if err != nil {
		return domain.Canvas{}, err
	}
	return added, addErr
}

// RenameCanvas renames canvas id in the collection and in its inline node.
func (s *Session) RenameCanvas(id, name string) error {
	var found bool
	err := s.mutate(func() []Field {
		if found = s.recon.Rename(id, name); !found {
			return nil
		}
		s.current.Canvases = s.recon.Current()
		if richtext.SetDiagramName(s.tree, id, name) {
			s.current.Content = s.tree.String()
			return []Field{FieldContent, FieldCanvases}
		}
		return []Field{FieldCanvases}
	})
	if err == nil && !found {
		return fmt.Errorf("canvas %s: %w", id, ErrCanvasNotFound)
	}
	return err
}

// RemoveCanvas deletes a canvas from the sidebar. If it is also embedded
// in the content, the registered callback removes the inline node.
func (s *Session) RemoveCanvas(id string) error {
	var found bool
	err := s.mutate(func() []Field {
		found = s.recon.RemoveFromSidebar(id)
		inline := s.registry.Notify(id)
		if !found && !inline {
			return nil
		}
		found = true
		s.current.Canvases = s.recon.Current()
		if inline {
			return []Field{FieldContent, FieldCanvases}
		}
		return []Field{FieldCanvases}
	})
	if err == nil && !found {
		return fmt.Errorf("canvas %s: %w", id, ErrCanvasNotFound)
	}
	return err
}

// InlineCanvasDeleted reports that the inline node of canvas id was
// removed by the editor; the sidebar entry is dropped with it.
func (s *Session) InlineCanvasDeleted(id string) error {
	return s.mutate(func() []Field {
		var changed []Field
		if richtext.RemoveDiagram(s.tree, id) {
			s.current.Content = s.tree.String()
			changed = append(changed, FieldContent)
		}
		s.registry.Unregister(id)
		if s.recon.RemoveFromSidebar(id) {
			s.current.Canvases = s.recon.Current()
			changed = append(changed, FieldCanvases)
		}
		return changed
	})
}

// Canvases returns the current canvas collection.
func (s *Session) Canvases() canvas.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Canvases.Clone()
}

// mutate runs fn under the lock and pushes the fields it reports changed.
func (s *Session) mutate(fn func() []Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.loaded {
		return ErrNotLoaded
	}
	for _, f := range fn() {
		s.debounce.Push(f, s.current.only(f))
	}
	return nil
}

// syncCanvasesLocked reconciles the inline diagrams of the current tree
// with the canvas collection and keeps the deletion registry in step with
// the inline ids. It reports whether the collection changed.
func (s *Session) syncCanvasesLocked() bool {
	diagrams := richtext.DiagramNodes(s.tree)
	inline := canvas.FromDiagrams(diagrams, s.now())

	changed := false
	for _, id := range s.registry.Sync(inline.IDs()) {
		if s.recon.RemoveFromSidebar(id) {
			changed = true
		}
	}
	for _, d := range diagrams {
		if !s.registry.Has(d.ID) {
			s.registry.Register(d.ID, s.inlineRemover(d.ID))
		}
	}

	if _, merged := s.recon.Reconcile(inline); merged {
		changed = true
	}
	if changed {
		s.current.Canvases = s.recon.Current()
	}
	return changed
}

// inlineRemover returns the deletion callback for the inline node of id.
// It runs with s.mu held.
func (s *Session) inlineRemover(id string) func() {
	return func() {
		if richtext.RemoveDiagram(s.tree, id) {
			s.current.Content = s.tree.String()
		}
	}
}

// settle is the debouncer callback.
func (s *Session) settle(f Field, v Values) {
	s.mu.Lock()
	if s.closed || !s.loaded {
		s.mu.Unlock()
		return
	}
	s.settled.copyField(f, v)
	p := s.passLocked(s.settled)
	ctx := s.ctx
	s.mu.Unlock()

	if p != nil {
		_ = s.dispatch(ctx, p)
	}
}

// passLocked runs the detector and registers the resulting save as in
// flight so Close waits for it. Every returned save must be dispatched.
func (s *Session) passLocked(v Values) *pendingSave {
	p := s.detector.Pass(s.noteID, v)
	if p != nil {
		s.inflight.Add(1)
		p.ticket = s.order.ticket()
	}
	return p
}

func (s *Session) dispatch(ctx context.Context, p *pendingSave) error {
	defer s.inflight.Done()

	s.order.wait(p.ticket)
	err := s.gateway.Save(ctx, p.noteID, p.patch)
	s.order.done()

	s.mu.Lock()
	if err != nil && p.noteID == s.noteID {
		restored := s.detector.Rollback(p)
		s.failures++
		if len(restored) > 0 && !s.closed && !errors.Is(err, ErrNoteNotFound) && s.failures <= s.retry.MaxAttempts {
			s.scheduleRetryLocked()
		}
	}
	if err == nil && p.noteID == s.noteID {
		s.failures = 0
	}
	s.mu.Unlock()

	if err != nil {
		s.notifier.SaveFailed(p.noteID, err)
		return err
	}
	s.notifier.Saved(p.noteID, p.fields)
	return nil
}

func (s *Session) scheduleRetryLocked() {
	s.stopRetryLocked()
	delay := s.retry.Backoff(s.failures)
	s.logger.Warn("retrying note save", "note_id", s.noteID, "attempt", s.failures, "delay", delay)
	s.retryTimer = s.sched.AfterFunc(delay, s.retrySave)
}

func (s *Session) stopRetryLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}

func (s *Session) retrySave() {
	s.mu.Lock()
	s.retryTimer = nil
	if s.closed || !s.loaded {
		s.mu.Unlock()
		return
	}
	p := s.passLocked(s.settled)
	ctx := s.ctx
	s.mu.Unlock()

	if p != nil {
		_ = s.dispatch(ctx, p)
	}
}

// Flush saves every difference between the current values and the
// snapshot right away, without waiting for timers.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	p := s.flushLocked()
	s.mu.Unlock()

	if p == nil {
		return nil
	}
	return s.dispatch(ctx, p)
}

func (s *Session) flushLocked() *pendingSave {
	if !s.loaded {
		return nil
	}
	s.debounce.CancelAll()
	s.stopRetryLocked()
	s.settled = s.current.Clone()
	return s.passLocked(s.current)
}

// Close flushes pending edits, waits for in-flight saves and rejects any
// further mutation. Calling Close again is a no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	p := s.flushLocked()
	s.closed = true
	s.debounce.Stop()
	s.mu.Unlock()

	var err error
	if p != nil {
		err = s.dispatch(ctx, p)
	}
	s.inflight.Wait()
	return err
}

// Delete discards pending edits and deletes the note through the gateway.
// The session is closed afterwards.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	s.closed = true
	s.debounce.Stop()
	s.stopRetryLocked()
	id := s.noteID
	s.mu.Unlock()

	s.inflight.Wait()
	if err := s.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}
	return nil
}
