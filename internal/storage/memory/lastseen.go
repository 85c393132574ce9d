package memory

import (
	"context"
	"sync"
	"time"
)

type LastSeenStore struct {
	mu   sync.RWMutex
	seen map[string]time.Time
}

func NewLastSeenStore() *LastSeenStore {
	return &LastSeenStore{seen: make(map[string]time.Time)}
}

func (s *LastSeenStore) Touch(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.seen[userID]; ok && prev.After(at) {
		return nil
	}
	s.seen[userID] = at
	return nil
}

func (s *LastSeenStore) Get(_ context.Context, userID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.seen[userID]
	return at, ok, nil
}
