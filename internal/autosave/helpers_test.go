package autosave

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/stretchr/testify/require"
)

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s    *manualScheduler
	at   time.Duration
	seq  int
	fn   func()
	done bool
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{s: m, at: m.now + d, seq: m.seq, fn: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.done
	t.done = true
	return active
}

// Advance moves the clock forward by d, running due timers in order.
func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var next *manualTimer
		for _, t := range m.timers {
			if t.done || t.at > target {
				continue
			}
			if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		next.done = true
		m.now = next.at
		m.mu.Unlock()
		next.fn()
	}
}

// Active counts timers that have neither fired nor been stopped.
func (m *manualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.done {
			n++
		}
	}
	return n
}

type saveCall struct {
	noteID string
	patch  Patch
}

// fakeGateway records calls and fails them while errs is non-empty.
type fakeGateway struct {
	mu      sync.Mutex
	saves   []saveCall
	deletes []string
	errs    []error
}

func (g *fakeGateway) Save(_ context.Context, noteID string, patch Patch) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves = append(g.saves, saveCall{noteID: noteID, patch: patch})
	if len(g.errs) > 0 {
		err := g.errs[0]
		g.errs = g.errs[1:]
		return err
	}
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, noteID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes = append(g.deletes, noteID)
	return nil
}

func (g *fakeGateway) failNext(errs ...error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs = append(g.errs, errs...)
}

func (g *fakeGateway) calls() []saveCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]saveCall(nil), g.saves...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	saved  [][]Field
	failed []error
}

func (n *recordingNotifier) Saved(_ string, fields []Field) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.saved = append(n.saved, fields)
}

func (n *recordingNotifier) SaveFailed(_ string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, err)
}

func (n *recordingNotifier) failures() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.failed)
}

type harness struct {
	session  *Session
	sched    *manualScheduler
	gateway  *fakeGateway
	notifier *recordingNotifier
}

var fixedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sched:    &manualScheduler{},
		gateway:  &fakeGateway{},
		notifier: &recordingNotifier{},
	}
	h.session = NewSession(h.gateway, Options{
		Scheduler: h.sched,
		Notifier:  h.notifier,
		Logger:    slog.New(slog.DiscardHandler),
		Now:       func() time.Time { return fixedNow },
	})
	return h
}

func (h *harness) load(t *testing.T, n *domain.Note) {
	t.Helper()
	require.NoError(t, h.session.Load(context.Background(), n))
}
