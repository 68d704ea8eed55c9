package core

import (
	"sync"

	"github.com/valter-silva-au/todo/pkg/models"
)

// Listener receives the full todo sequence after every change. Each call gets
// its own copy, so a listener may keep or modify the slice freely.
type Listener func(todos []models.Task)

type listenerEntry struct {
	id int
	fn Listener
}

// listenerRegistry keeps listeners in registration order.
type listenerRegistry struct {
	mu      sync.Mutex
	nextID  int
	entries []listenerEntry
}

// add registers fn and returns a function that unregisters it. Calling the
// returned function more than once is harmless.
func (r *listenerRegistry) add(fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, listenerEntry{id: id, fn: fn})

	return func() { r.remove(id) }
}

func (r *listenerRegistry) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *listenerRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// notify calls every registered listener in order. The registry lock is not
// held during the calls, so a listener may unregister itself.
func (r *listenerRegistry) notify(todos []models.Task) {
	r.mu.Lock()
	fns := make([]Listener, len(r.entries))
	for i, e := range r.entries {
		fns[i] = e.fn
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(models.CloneTasks(todos))
	}
}
