package memory

import (
	"context"
	"sync"
)

// Per-session cap so a long-lived process does not grow without bound.
const inMemoryMaxPerSession = 200

// InMemoryStore holds transcripts in process memory for local runs and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]TurnRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]TurnRecord)}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, record TurnRecord) error {
	record = withDefaults(record)
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.sessions[record.SessionID], record)
	if len(turns) > inMemoryMaxPerSession {
		turns = append([]TurnRecord(nil), turns[len(turns)-inMemoryMaxPerSession:]...)
	}
	s.sessions[record.SessionID] = turns
	return nil
}

func (s *InMemoryStore) RecentContext(_ context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	if len(turns) == 0 {
		return nil, nil
	}
	if limit > 0 && limit < len(turns) {
		turns = turns[len(turns)-limit:]
	}
	return append([]TurnRecord(nil), turns...), nil
}

func (s *InMemoryStore) Mode() string { return "in-memory" }

func (s *InMemoryStore) Close() error { return nil }
