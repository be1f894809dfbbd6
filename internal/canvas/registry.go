package canvas

import (
	"sort"
	"sync"
)

// Registry maps canvas ids to the callback that deletes the matching
// inline node. Entries must be unregistered when their canvas disappears;
// Sync does that in bulk.
type Registry struct {
	mu        sync.Mutex
	callbacks map[string]func()
}

func NewRegistry() *Registry {
	return &Registry{callbacks: make(map[string]func())}
}

// Register installs fn for id, replacing any previous callback.
func (r *Registry) Register(id string, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[id] = fn
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.callbacks, id)
}

// Has reports whether id has a callback.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.callbacks[id]
	return ok
}

// Notify runs and unregisters the callback for id. The callback runs
// without the registry lock held.
func (r *Registry) Notify(id string) bool {
	r.mu.Lock()
	fn, ok := r.callbacks[id]
	delete(r.callbacks, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	fn()
	return true
}

// Sync unregisters every id not in live and returns the removed ids,
// sorted.
func (r *Registry) Sync(live []string) []string {
	keep := make(map[string]bool, len(live))
	for _, id := range live {
		keep[id] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for id := range r.callbacks {
		if !keep[id] {
			delete(r.callbacks, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

// Reset drops every callback.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = make(map[string]func())
}

// Len is the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callbacks)
}
