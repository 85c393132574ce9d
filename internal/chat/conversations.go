package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Vasu1712/socialsync-backend/internal/conversation"
	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// History is a conversation fetched by the other participant's username.
type History struct {
	With            models.UserRef   `json:"with"`
	ConversationKey string           `json:"conversationKey"`
	Messages        []models.Message `json:"messages"`
}

// Presence is a user's reachability as seen by this process.
type Presence struct {
	UserID   string     `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen"`
}

// ListConversations projects the user's messages into one summary per
// conversation, most recently active first. Conversations whose other
// participant cannot be resolved are left out.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, persistence("list messages for user", err)
	}

	groups := lo.GroupBy(msgs, func(m models.Message) string { return m.ConversationKey })
	summaries := make([]models.ConversationSummary, 0, len(groups))
	latest := make(map[string]models.Message, len(groups))

	for key, group := range groups {
		otherID, err := conversation.Other(key, userID)
		if err != nil {
			s.logger.Debug("skipping conversation with unexpected key", zap.String("conversation_key", key))
			continue
		}
		other, err := s.users.FindByID(ctx, otherID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, persistence("find conversation participant", err)
		}

		last := lo.MaxBy(group, func(a, b models.Message) bool { return b.Before(&a) })
		latest[key] = last
		summaries = append(summaries, models.ConversationSummary{
			ConversationKey: key,
			With:            *other,
			LastMessage: models.MessagePreview{
				ID:        last.ID,
				SenderID:  last.SenderID,
				Text:      last.Text,
				CreatedAt: last.CreatedAt,
			},
			UnreadCount: lo.CountBy(group, func(m models.Message) bool { return m.IsUnreadFor(userID) }),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := latest[summaries[i].ConversationKey], latest[summaries[j].ConversationKey]
		return b.Before(&a)
	})
	return summaries, nil
}

// Messages returns a conversation oldest first. Only its participants may
// read it.
func (s *Service) Messages(ctx context.Context, userID, conversationKey string) ([]models.Message, error) {
	if err := requireParticipant(conversationKey, userID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByConversation(ctx, conversationKey)
	if err != nil {
		return nil, persistence("list conversation", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

func (s *Service) MessagesWith(ctx context.Context, userID, username string) (*History, error) {
	other, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupError("find user by username", err)
	}
	key, err := conversation.DeriveKey(userID, other.ID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.Messages(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return &History{With: *other, ConversationKey: key, Messages: msgs}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return 0, persistence("count unread messages", err)
	}
	return n, nil
}

// SearchUsers matches usernames and display names. A blank query matches
// nobody.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]models.UserRef, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserRef{}, nil
	}
	users, err := s.users.Search(ctx, query, MaxSearchResults)
	if err != nil {
		return nil, persistence("search users", err)
	}
	if users == nil {
		users = []models.UserRef{}
	}
	return users, nil
}

// Typing relays a typing indicator to the peer if they are online. Nothing
// is stored.
func (s *Service) Typing(fromID, toID string, isTyping bool) error {
	if toID == "" || toID == fromID {
		return apperrors.ErrInvalidParticipant
	}
	err := s.registry.Push(toID, ws.NewEvent(ws.EventUserTyping, ws.UserTyping{UserID: fromID, IsTyping: isTyping}))
	if err != nil && !errors.Is(err, ws.ErrOffline) {
		s.logger.Debug("typing push failed", zap.String("user_id", toID), zap.Error(err))
	}
	return nil
}

// OnlineUsers lists connected users other than exceptID.
func (s *Service) OnlineUsers(exceptID string) []string {
	return lo.Without(s.registry.ListOnline(), exceptID)
}

func (s *Service) Presence(ctx context.Context, userID string) (*Presence, error) {
	p := &Presence{UserID: userID, Online: s.registry.IsOnline(userID)}
	at, ok, err := s.lastSeen.Get(ctx, userID)
	if err != nil {
		return nil, persistence("get last seen", err)
	}
	if ok {
		p.LastSeen = &at
	}
	return p, nil
}

// Connect registers h as the user's live connection and tells it who else
// is online.
func (s *Service) Connect(userID, username string, h ws.Handle) {
	s.registry.Register(userID, username, h)
	online := s.OnlineUsers(userID)
	if err := h.Push(ws.NewEvent(ws.EventOnlineUsers, ws.OnlineUsers{Users: online})); err != nil {
		s.logger.Debug("online list push failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Disconnect releases h. The last-seen time is only written when h was
// still the user's current connection.
func (s *Service) Disconnect(ctx context.Context, userID string, h ws.Handle) {
	if !s.registry.Release(userID, h) {
		return
	}
	if err := s.lastSeen.Touch(ctx, userID, s.now()); err != nil {
		s.logger.Warn("failed to record last seen", zap.String("user_id", userID), zap.Error(err))
	}
}

func requireParticipant(conversationKey, userID string) error {
	a, b, err := conversation.Participants(conversationKey)
	if err != nil {
		return err
	}
	if userID != a && userID != b {
		return apperrors.ErrNotFound
	}
	return nil
}

func lookupError(op string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return persistence(op, err)
}
