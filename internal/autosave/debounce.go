package autosave

import (
	"sync"
	"time"
)

// Debouncer holds one single-shot timer per field. Pushing a value for a
// field replaces its pending value and restarts its timer; when a timer
// expires only the latest value is delivered. Fields never wait on each
// other.
type Debouncer[V any] struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   func(Field) time.Duration
	fire    func(Field, V)
	slots   map[Field]*slot[V]
	gen     uint64
	stopped bool
}

type slot[V any] struct {
	timer Timer
	value V
	gen   uint64
}

// NewDebouncer delivers settled values to fire. fire runs on the
// scheduler's goroutine without any debouncer lock held.
func NewDebouncer[V any](sched Scheduler, delay func(Field) time.Duration, fire func(Field, V)) *Debouncer[V] {
	return &Debouncer[V]{
		sched: sched,
		delay: delay,
		fire:  fire,
		slots: make(map[Field]*slot[V]),
	}
}

// Push records v as the pending value of f and restarts f's timer.
func (d *Debouncer[V]) Push(f Field, v V) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	s, ok := d.slots[f]
	if !ok {
		s = &slot[V]{}
		d.slots[f] = s
	} else if s.timer != nil {
		s.timer.Stop()
	}
	d.gen++
	gen := d.gen
	s.gen = gen
	s.value = v
	s.timer = d.sched.AfterFunc(d.delay(f), func() { d.expire(f, gen) })
}

func (d *Debouncer[V]) expire(f Field, gen uint64) {
	d.mu.Lock()
	s, ok := d.slots[f]
	if !ok || s.gen != gen || d.stopped {
		d.mu.Unlock()
		return
	}
	v := s.value
	delete(d.slots, f)
	d.mu.Unlock()

	d.fire(f, v)
}

// Pending returns the value waiting on f's timer, if any.
func (d *Debouncer[V]) Pending(f Field) (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.slots[f]
	if !ok {
		var zero V
		return zero, false
	}
	return s.value, true
}

// Cancel drops f's pending value.
func (d *Debouncer[V]) Cancel(f Field) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.slots[f]; ok {
		s.timer.Stop()
		delete(d.slots, f)
	}
}

// CancelAll drops every pending value. The debouncer stays usable.
func (d *Debouncer[V]) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelAllLocked()
}

// Stop drops every pending value and ignores further pushes.
func (d *Debouncer[V]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelAllLocked()
	d.stopped = true
}

func (d *Debouncer[V]) cancelAllLocked() {
	for f, s := range d.slots {
		s.timer.Stop()
		delete(d.slots, f)
	}
}
