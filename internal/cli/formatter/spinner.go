package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// Spinner redraws one status line on out until stopped. The label can be
// changed while it runs, e.g. to name the section being drafted.
type Spinner struct {
	out     io.Writer
	mu      sync.Mutex
	label   string
	started time.Time
	stopped bool
	quit    chan struct{}
	exited  chan struct{}
}

func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{
		out:    out,
		label:  label,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// SetLabel replaces the text shown next to the frame.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	s.label = label
	s.mu.Unlock()
}

func (s *Spinner) Start() {
	s.started = time.Now()
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.exited)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			fmt.Fprint(s.out, "\r\033[K"+s.line(frame))
		}
	}
}

func (s *Spinner) line(frame int) string {
	s.mu.Lock()
	label := s.label
	s.mu.Unlock()
	elapsed := time.Since(s.started).Truncate(time.Second)
	out := fmt.Sprintf("  %s %s", StylePurple.Render(spinnerFrames[frame%len(spinnerFrames)]), Dim(label))
	if elapsed >= time.Second {
		out += " " + Dim(fmt.Sprintf("(%s)", elapsed))
	}
	return out
}

// Stop clears the line and waits for the redraw loop to exit. Safe to call
// more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.quit)
	s.mu.Unlock()
	<-s.exited
}
