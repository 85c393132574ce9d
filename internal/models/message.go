package models

import (
	"slices"
	"time"
)

type Attachment struct {
	URL  string `json:"url" bson:"url" validate:"required,url"`
	Type string `json:"type" bson:"type" validate:"omitempty,max=32"`
}

// Message is a single chat message. DeliveredTo and ReadBy only ever grow and
// are always subsets of Recipients.
type Message struct {
	ID              string       `json:"id" bson:"_id"`
	ConversationKey string       `json:"conversationKey" bson:"conversation_key"`
	SenderID        string       `json:"senderId" bson:"sender_id"`
	Recipients      []string     `json:"recipients" bson:"recipients"`
	Text            string       `json:"text" bson:"text"`
	Attachments     []Attachment `json:"attachments" bson:"attachments"`
	CreatedAt       time.Time    `json:"createdAt" bson:"created_at"`
	DeliveredTo     []string     `json:"deliveredTo" bson:"delivered_to"`
	ReadBy          []string     `json:"readBy" bson:"read_by"`
}

func (m *Message) IsRecipient(userID string) bool {
	return slices.Contains(m.Recipients, userID)
}

func (m *Message) IsDeliveredTo(userID string) bool {
	return slices.Contains(m.DeliveredTo, userID)
}

func (m *Message) IsReadBy(userID string) bool {
	return slices.Contains(m.ReadBy, userID)
}

// IsUnreadFor reports whether userID received m and has not acknowledged it.
func (m *Message) IsUnreadFor(userID string) bool {
	return m.IsRecipient(userID) && !m.IsReadBy(userID)
}

// Before orders messages by creation time, breaking ties by id. Message ids
// are time-ordered so the tie-break follows insertion order.
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// Clone returns a deep copy so that callers never share slices with a store.
func (m Message) Clone() Message {
	m.Recipients = slices.Clone(m.Recipients)
	m.Attachments = slices.Clone(m.Attachments)
	m.DeliveredTo = slices.Clone(m.DeliveredTo)
	m.ReadBy = slices.Clone(m.ReadBy)
	return m
}
