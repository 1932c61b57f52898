// Package lock provides per-key mutual exclusion.
package lock

import "sync"

// Keyed serializes work per key. Entries are reference counted and released
// when the last holder unlocks.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*ref
}

type ref struct {
	mu sync.Mutex
	n  int
}

// NewKeyed creates an empty keyed mutex.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*ref)}
}

// Lock acquires the lock for key and returns its release func.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	r, ok := k.locks[key]
	if !ok {
		r = &ref{}
		k.locks[key] = r
	}
	r.n++
	k.mu.Unlock()

	r.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Unlock()
			k.mu.Lock()
			r.n--
			if r.n == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
