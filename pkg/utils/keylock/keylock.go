// Package keylock provides mutual exclusion per string key. Holders of
// different keys never block each other; waiters on the same key can give
// up through their context.
package keylock

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out one exclusive lock per key. Entries are dropped when the
// last holder or waiter releases them, so the map only grows with the number
// of keys in use.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Locker
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

func (l *Locker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Lock blocks until the key is acquired or ctx is done. The returned
// function releases the key and must be called exactly once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.ref(key)
	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.unref(key, e)
		return nil, goerr.Wrap(err, "failed to acquire key lock", goerr.V("key", key))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.unref(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
