package autosave

import "sync"

// sequencer hands gateway calls to the store one at a time, in the order
// the detector issued them, so an older save can never land after a newer
// one.
type sequencer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64
	serving uint64
}

func newSequencer() *sequencer {
	q := &sequencer{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *sequencer) ticket() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := q.next
	q.next++
	return t
}

func (q *sequencer) wait(t uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.serving != t {
		q.cond.Wait()
	}
}

func (q *sequencer) done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.serving++
	q.cond.Broadcast()
}
