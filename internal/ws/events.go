package ws

import (
	"encoding/json"

	"github.com/Vasu1712/socialsync-backend/internal/models"
)

// Outbound event types.
const (
	EventUserOnline       = "user_online"
	EventUserOffline      = "user_offline"
	EventOnlineUsers      = "online_users"
	EventNewMessage       = "new_message"
	EventMessageSent      = "message_sent"
	EventMessageDelivered = "message_delivered"
	EventMessagesRead     = "messages_read"
	EventNewNotification  = "new_notification"
	EventUserTyping       = "user_typing"
	EventError            = "error"
)

// Inbound intent types.
const (
	IntentSendMessage    = "send_message"
	IntentTyping         = "typing"
	IntentMarkRead       = "mark_read"
	IntentGetOnlineUsers = "get_online_users"
)

// Event is the envelope written to a live connection.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Intent is the envelope read from a live connection. Data is decoded once
// the type is known.
type Intent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type UserPresence struct {
	UserID string `json:"userId"`
}

type OnlineUsers struct {
	Users []string `json:"users"`
}

type MessagePayload struct {
	Message models.Message `json:"message"`
}

type MessageDelivered struct {
	MessageID       string `json:"messageId"`
	ConversationKey string `json:"conversationKey"`
	UserID          string `json:"userId"`
}

type MessagesRead struct {
	ConversationKey string `json:"conversationKey"`
	ReaderID        string `json:"readerId"`
}

type Actor struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type NewNotification struct {
	ID         string      `json:"id"`
	Verb       models.Verb `json:"verb"`
	Actor      *Actor      `json:"actor,omitempty"`
	Preview    string      `json:"preview"`
	TargetType string      `json:"targetType,omitempty"`
	TargetID   string      `json:"targetId,omitempty"`
}

type UserTyping struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SendMessageIntent struct {
	To          string              `json:"to" validate:"required"`
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments" validate:"omitempty,max=10,dive"`
}

type TypingIntent struct {
	To       string `json:"to" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

type MarkReadIntent struct {
	ConversationKey string `json:"conversationKey" validate:"required"`
}

func NewEvent(eventType string, data any) Event {
	return Event{Type: eventType, Data: data}
}
