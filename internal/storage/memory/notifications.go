package memory

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
)

type NotificationStore struct {
	mu            sync.RWMutex
	notifications map[string]*models.Notification
	userIndex     map[string][]string // userID -> []notificationID, insertion order
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		notifications: make(map[string]*models.Notification),
		userIndex:     make(map[string][]string),
	}
}

func (s *NotificationStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.ID]; ok {
		return nil
	}
	stored := *n
	s.notifications[n.ID] = &stored
	s.userIndex[n.UserID] = append(s.userIndex[n.UserID], n.ID)
	return nil
}

func (s *NotificationStore) ListForUser(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.userIndex[userID]
	result := make([]models.Notification, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		result = append(result, *s.notifications[ids[i]])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID, notificationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return false, apperrors.ErrNotFound
	}
	if n.Read {
		return false, nil
	}
	n.Read = true
	return true, nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range s.userIndex[userID] {
		if notif := s.notifications[id]; !notif.Read {
			notif.Read = true
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, id := range s.userIndex[userID] {
		if !s.notifications[id].Read {
			n++
		}
	}
	return n, nil
}
