package services

import "sync"

// keyMutex provides one mutex per string key. The document pipeline uses it
// to keep at most one rebuild of a user's corpus in flight: two concurrent
// uploads or deletes for the same phone number would otherwise race the
// extract–aggregate–persist window and last-write-wins on the upsert.
//
// Entries are never removed; the key space is bounded by the number of
// active users and each entry is a single mutex.
type keyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
}

func (k *keyMutex) Unlock(key string) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()

	m.Unlock()
}
