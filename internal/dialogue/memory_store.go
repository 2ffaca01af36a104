package dialogue

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps session state in a bounded LRU whose entries expire
// after ttl of inactivity.
type MemoryStore struct {
	cache *expirable.LRU[string, *State]
	locks *keyedMutex
}

// NewMemoryStore holds at most maxSessions sessions. A non-positive ttl
// disables expiry.
func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, *State](maxSessions, nil, ttl),
		locks: newKeyedMutex(),
	}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if st, ok := s.cache.Get(sessionID); ok {
		return st.Clone(), nil
	}
	return newState(sessionID), nil
}

func (s *MemoryStore) Save(ctx context.Context, state *State) error {
	s.cache.Add(state.SessionID, state.Clone())
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, sessionID string) (func(), error) {
	return s.locks.Lock(ctx, sessionID)
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// keyedMutex hands out one lock per key. Entries are dropped once no
// goroutine holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

func (k *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			k.release(key, l)
		})
	}, nil
}

func (k *keyedMutex) release(key string, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
