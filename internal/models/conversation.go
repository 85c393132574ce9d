package models

import "time"

type MessagePreview struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationSummary is one row of a user's inbox.
type ConversationSummary struct {
	ConversationKey string         `json:"conversationId"`
	With            UserRef        `json:"with"`
	LastMessage     MessagePreview `json:"lastMessage"`
	UnreadCount     int            `json:"unreadCount"`
}
