package coordinator

import (
	"sync"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
	"github.com/atomic-swap-net/swapcoordd/pkg/helpers"
)

// keyLocker hands out a per-key mutex so a read-modify-write sequence
// against one swap or token key is serialized against concurrent requests
// touching the same key, without blocking requests on unrelated keys.
type keyLocker struct {
	mu    sync.Mutex
	locks map[[domain.HashSize]byte]*sync.Mutex
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[[domain.HashSize]byte]*sync.Mutex)}
}

func (l *keyLocker) lockFor(key [domain.HashSize]byte) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// lockOne acquires the lock for a single key and returns an unlock func.
func (l *keyLocker) lockOne(key [domain.HashSize]byte) func() {
	m := l.lockFor(key)
	m.Lock()
	return m.Unlock
}

// lockTwo acquires the locks for two keys in lexicographic order, so a
// request touching both never deadlocks against another request touching
// the same pair in the opposite order (e.g. initiate_swap locking both the
// initiator's hashed token and the selected swap key).
func (l *keyLocker) lockTwo(a, b [domain.HashSize]byte) func() {
	if a == b {
		return l.lockOne(a)
	}
	first, second := a, b
	if helpers.CompareBytes(first[:], second[:]) > 0 {
		first, second = second, first
	}
	unlockFirst := l.lockOne(first)
	unlockSecond := l.lockOne(second)
	return func() {
		unlockSecond()
		unlockFirst()
	}
}
