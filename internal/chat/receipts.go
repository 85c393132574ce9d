package chat

import (
	"context"
	"errors"

	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// MarkRead records that readerID has read every message addressed to them in
// the conversation and returns how many messages changed. Senders of those
// messages who are online are told about it.
func (s *Service) MarkRead(ctx context.Context, conversationKey, readerID string) (int, error) {
	if err := requireParticipant(conversationKey, readerID); err != nil {
		return 0, err
	}

	marked, err := s.messages.MarkRead(ctx, conversationKey, readerID)
	if err != nil {
		s.logger.Error("failed to mark conversation read",
			zap.String("conversation_key", conversationKey),
			zap.String("user_id", readerID),
			zap.Error(err),
		)
		return 0, persistence("mark read", err)
	}
	if len(marked) == 0 {
		return 0, nil
	}

	senders := lo.Uniq(lo.FilterMap(marked, func(m models.Message, _ int) (string, bool) {
		return m.SenderID, m.SenderID != readerID
	}))
	ev := ws.NewEvent(ws.EventMessagesRead, ws.MessagesRead{
		ConversationKey: conversationKey,
		ReaderID:        readerID,
	})
	for _, sender := range senders {
		if err := s.registry.Push(sender, ev); err != nil && !errors.Is(err, ws.ErrOffline) {
			s.logger.Debug("read receipt push failed", zap.String("user_id", sender), zap.Error(err))
		}
	}
	return len(marked), nil
}
