package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Vasu1712/socialsync-backend/internal/models"
)

type MessageStore struct {
	mu            sync.RWMutex
	messages      map[string]*models.Message // messageID -> message
	conversations map[string][]string        // conversationKey -> []messageID, insertion order
	userIndex     map[string][]string        // userID -> []messageID sent or received
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages:      make(map[string]*models.Message),
		conversations: make(map[string][]string),
		userIndex:     make(map[string][]string),
	}
}

func (s *MessageStore) Insert(_ context.Context, msg *models.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[msg.ID]; ok {
		return false, nil
	}
	stored := msg.Clone()
	s.messages[msg.ID] = &stored
	s.conversations[msg.ConversationKey] = append(s.conversations[msg.ConversationKey], msg.ID)
	s.userIndex[msg.SenderID] = append(s.userIndex[msg.SenderID], msg.ID)
	for _, r := range msg.Recipients {
		if r != msg.SenderID {
			s.userIndex[r] = append(s.userIndex[r], msg.ID)
		}
	}
	return true, nil
}

func (s *MessageStore) MarkDelivered(_ context.Context, messageID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[messageID]
	if !ok || !msg.IsRecipient(userID) || msg.IsDeliveredTo(userID) {
		return nil
	}
	msg.DeliveredTo = append(msg.DeliveredTo, userID)
	return nil
}

func (s *MessageStore) ListByConversation(_ context.Context, conversationKey string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.conversations[conversationKey]), nil
}

func (s *MessageStore) ListForUser(_ context.Context, userID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.userIndex[userID]), nil
}

func (s *MessageStore) MarkRead(_ context.Context, conversationKey, readerID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var marked []models.Message
	for _, id := range s.conversations[conversationKey] {
		msg := s.messages[id]
		if !msg.IsUnreadFor(readerID) {
			continue
		}
		msg.ReadBy = append(msg.ReadBy, readerID)
		marked = append(marked, msg.Clone())
	}
	return marked, nil
}

func (s *MessageStore) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, id := range s.userIndex[userID] {
		if s.messages[id].IsUnreadFor(userID) {
			n++
		}
	}
	return n, nil
}

// collect copies the messages for ids, oldest first. Caller holds the lock.
func (s *MessageStore) collect(ids []string) []models.Message {
	result := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.messages[id].Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Before(&result[j])
	})
	return result
}
