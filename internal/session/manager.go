package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Clock is the time source for session bookkeeping.
type Clock func() time.Time

// SystemClock reports wall-clock time in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

const DefaultHistoryLimit = 14

// Manager loads, mutates and saves sessions, one turn at a time per id.
type Manager struct {
	store        Store
	historyLimit int
	locks        *keyLocks

	mu       sync.RWMutex
	now      Clock
	onCreate func(*Session)
	onEnd    func(id string)
}

func NewManager(store Store, historyLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Manager{
		store:        store,
		historyLimit: historyLimit,
		locks:        newKeyLocks(),
		now:          SystemClock,
	}
}

func (m *Manager) SetClock(now Clock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now != nil {
		m.now = now
	}
}

// SetCreateHook is called with every lazily created session once it has been
// saved. Sessions whose first Do fails are never reported.
func (m *Manager) SetCreateHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCreate = hook
}

// SetEndHook is called after End removes a session.
func (m *Manager) SetEndHook(hook func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = hook
}

func (m *Manager) Now() time.Time {
	m.mu.RLock()
	now := m.now
	m.mu.RUnlock()
	return now()
}

func (m *Manager) HistoryLimit() int { return m.historyLimit }

// Do runs fn against the session for id, creating it on first use, and saves
// the result when fn succeeds. Calls for the same id never overlap. Any
// non-blank id is valid; a blank one returns ErrMissingID.
func (m *Manager) Do(ctx context.Context, id string, fn func(*Session) error) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingID
	}
	unlock, err := m.locks.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	sess, created, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}
	sess.LastActivityAt = m.Now()
	if err := m.store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if created {
		m.mu.RLock()
		hook := m.onCreate
		m.mu.RUnlock()
		if hook != nil {
			hook(clone(sess))
		}
	}
	return nil
}

// GetOrCreate returns a copy of the session for id, creating and saving an empty one if needed.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	var out *Session
	err := m.Do(ctx, id, func(s *Session) error {
		out = clone(s)
		return nil
	})
	return out, err
}

// Peek returns the stored session without creating one.
func (m *Manager) Peek(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, strings.TrimSpace(id))
}

// End drops the session for id. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingID
	}
	unlock, err := m.locks.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	if err := m.store.Evict(ctx, id); err != nil {
		return err
	}
	m.mu.RLock()
	hook := m.onEnd
	m.mu.RUnlock()
	if hook != nil {
		hook(id)
	}
	return nil
}

func (m *Manager) load(ctx context.Context, id string) (*Session, bool, error) {
	sess, err := m.store.Get(ctx, id)
	if err == nil {
		return sess, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	return newSession(id, m.Now()), true, nil
}
