package session

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps sessions in process memory with per-entry expiry.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     Clock
	onEvict func(id string)
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     SystemClock,
	}
}

// SetClock replaces the time source used for expiry.
func (s *InMemoryStore) SetClock(now Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.now = now
	}
}

// SetEvictHook is called with the id of every session removed by Sweep.
func (s *InMemoryStore) SetEvictHook(hook func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = hook
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	now := s.now()
	s.mu.RUnlock()
	if !ok || !now.Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return clone(e.session), nil
}

func (s *InMemoryStore) Set(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID] = memoryEntry{
		session:   clone(sess),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *InMemoryStore) Evict(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len counts live, unexpired sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Sweep drops expired sessions and returns how many were removed.
func (s *InMemoryStore) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []string
	for id, e := range s.entries {
		if now.Before(e.expiresAt) {
			continue
		}
		delete(s.entries, id)
		expired = append(expired, id)
	}
	hook := s.onEvict
	s.mu.Unlock()

	if hook != nil {
		for _, id := range expired {
			hook(id)
		}
	}
	return len(expired)
}

func (s *InMemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *InMemoryStore) Close() error { return nil }
