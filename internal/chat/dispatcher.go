package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Vasu1712/socialsync-backend/internal/conversation"
	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"go.uber.org/zap"
)

type SendRequest struct {
	SenderID    string
	RecipientID string
	Text        string
	Attachments []models.Attachment
}

// DeliveryOutcome reports what happened after the message was stored.
// Delivered lists recipients that were pushed and recorded as delivered;
// Pending lists the rest, who will see the message on their next fetch.
type DeliveryOutcome struct {
	Message       models.Message
	Delivered     []string
	Pending       []string
	Notifications []NotifyResult
}

// Send builds a message from req and dispatches it.
func (s *Service) Send(ctx context.Context, req SendRequest) (*DeliveryOutcome, error) {
	key, err := conversation.DeriveKey(req.SenderID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Attachments) == 0 {
		return nil, apperrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.maxTextLength {
		return nil, apperrors.ErrMessageTooLong
	}

	msg := &models.Message{
		ID:              s.newID(),
		ConversationKey: key,
		SenderID:        req.SenderID,
		Recipients:      []string{req.RecipientID},
		Text:            text,
		Attachments:     req.Attachments,
		CreatedAt:       s.now(),
		DeliveredTo:     []string{},
		ReadBy:          []string{},
	}
	if msg.Attachments == nil {
		msg.Attachments = []models.Attachment{}
	}
	return s.Dispatch(ctx, msg)
}

// SendToUsername resolves the recipient by username first.
func (s *Service) SendToUsername(ctx context.Context, senderID, username, text string, attachments []models.Attachment) (*DeliveryOutcome, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupError("find user by username", err)
	}
	return s.Send(ctx, SendRequest{
		SenderID:    senderID,
		RecipientID: user.ID,
		Text:        text,
		Attachments: attachments,
	})
}

// Dispatch stores msg and then pushes it to every reachable recipient. Only
// the store write can fail the call; push and notification problems are
// logged and reflected in the outcome. A message that was already stored is
// neither pushed nor notified again.
func (s *Service) Dispatch(ctx context.Context, msg *models.Message) (*DeliveryOutcome, error) {
	if len(msg.Recipients) == 0 {
		return nil, fmt.Errorf("%w: message has no recipients", apperrors.ErrInvalidParticipant)
	}
	created, err := s.messages.Insert(ctx, msg)
	if err != nil {
		s.logger.Error("failed to store message",
			zap.String("message_id", msg.ID),
			zap.String("conversation_key", msg.ConversationKey),
			zap.Error(err),
		)
		return nil, persistence("insert message", err)
	}

	outcome := &DeliveryOutcome{}
	if !created {
		s.logger.Debug("message already dispatched", zap.String("message_id", msg.ID))
		outcome.Message = msg.Clone()
		return outcome, nil
	}

	pushed := msg.Clone()
	for _, recipient := range msg.Recipients {
		if recipient == msg.SenderID {
			continue
		}
		if s.deliver(ctx, &pushed, recipient) {
			if !msg.IsDeliveredTo(recipient) {
				msg.DeliveredTo = append(msg.DeliveredTo, recipient)
			}
			outcome.Delivered = append(outcome.Delivered, recipient)
		} else {
			outcome.Pending = append(outcome.Pending, recipient)
		}
	}

	preview := Preview(msg.Text)
	for _, recipient := range msg.Recipients {
		if recipient == msg.SenderID {
			continue
		}
		outcome.Notifications = append(outcome.Notifications, s.notifier.Notify(ctx, NotifyRequest{
			UserID:     recipient,
			ActorID:    msg.SenderID,
			Verb:       models.VerbSystem,
			TargetType: models.TargetMessage,
			TargetID:   msg.ID,
			Preview:    preview,
		}))
	}

	outcome.Message = msg.Clone()
	s.logger.Debug("message dispatched",
		zap.String("message_id", msg.ID),
		zap.Int("delivered", len(outcome.Delivered)),
		zap.Int("pending", len(outcome.Pending)),
	)
	return outcome, nil
}

// deliver makes the single push attempt for one recipient and records the
// delivery. A stale or slow connection counts as unreachable.
func (s *Service) deliver(ctx context.Context, msg *models.Message, recipient string) bool {
	h, ok := s.registry.Lookup(recipient)
	if !ok {
		return false
	}
	if err := h.Push(ws.NewEvent(ws.EventNewMessage, ws.MessagePayload{Message: *msg})); err != nil {
		s.logger.Warn("push failed, message left for pull",
			zap.String("message_id", msg.ID),
			zap.String("user_id", recipient),
			zap.Error(err),
		)
		return false
	}
	if err := s.messages.MarkDelivered(ctx, msg.ID, recipient); err != nil {
		s.logger.Warn("failed to record delivery",
			zap.String("message_id", msg.ID),
			zap.String("user_id", recipient),
			zap.Error(err),
		)
		return false
	}

	receipt := ws.NewEvent(ws.EventMessageDelivered, ws.MessageDelivered{
		MessageID:       msg.ID,
		ConversationKey: msg.ConversationKey,
		UserID:          recipient,
	})
	if err := s.registry.Push(msg.SenderID, receipt); err != nil && !errors.Is(err, ws.ErrOffline) {
		s.logger.Debug("delivery receipt push failed", zap.String("user_id", msg.SenderID), zap.Error(err))
	}
	return true
}

// Preview shortens text to the first 80 characters.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength])
}
