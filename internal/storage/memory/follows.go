package memory

import (
	"context"
	"sync"
)

type FollowStore struct {
	mu        sync.Mutex
	following map[string]map[string]struct{} // follower -> followees
}

func NewFollowStore() *FollowStore {
	return &FollowStore{following: make(map[string]map[string]struct{})}
}

func (s *FollowStore) Follow(_ context.Context, followerID, followeeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.following[followerID]
	if !ok {
		set = make(map[string]struct{})
		s.following[followerID] = set
	}
	if _, exists := set[followeeID]; exists {
		return false, nil
	}
	set[followeeID] = struct{}{}
	return true, nil
}
