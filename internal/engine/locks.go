package engine

import "sync"

// lockRegistry hands out one mutex per session id so turns for the same
// session serialize while unrelated sessions proceed in parallel.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*sessionLock)}
}

// acquire blocks until the per-session lock is held and returns the release
// function. Entries are dropped when the last holder releases, so the map
// does not grow with session history.
func (r *lockRegistry) acquire(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sessionLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}
