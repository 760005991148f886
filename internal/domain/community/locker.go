package community

import (
	"context"
	"sync"
)

// Locker grants exclusive access to a single community across the
// read-modify-write steps of a mutation.
type Locker interface {
	Lock(ctx context.Context, communityID string) (unlock func(), err error)
}

type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

func (m *KeyedMutex) Lock(ctx context.Context, communityID string) (func(), error) {
	m.mu.Lock()
	lock, ok := m.locks[communityID]
	if !ok {
		lock = &keyedLock{ch: make(chan struct{}, 1)}
		m.locks[communityID] = lock
	}
	lock.refs++
	m.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(communityID, lock)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.ch
			m.release(communityID, lock)
		})
	}, nil
}

func (m *KeyedMutex) release(communityID string, lock *keyedLock) {
	m.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(m.locks, communityID)
	}
	m.mu.Unlock()
}
