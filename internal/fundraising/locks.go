package fundraising

import (
	"sync"

	"github.com/google/uuid"
)

// KeyedMutex hands out one mutex per key. Entries are dropped once no
// goroutine holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refMutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*refMutex)}
}

// Lock blocks until key is free and returns the matching unlock func
func (k *KeyedMutex) Lock(key uuid.UUID) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Unlock()

			k.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
