package models

import "time"

type Verb string

const (
	VerbLike    Verb = "like"
	VerbComment Verb = "comment"
	VerbFollow  Verb = "follow"
	VerbMention Verb = "mention"
	VerbReply   Verb = "reply"
	VerbSystem  Verb = "system"
)

func (v Verb) Valid() bool {
	switch v {
	case VerbLike, VerbComment, VerbFollow, VerbMention, VerbReply, VerbSystem:
		return true
	}
	return false
}

// Target types referenced by notifications.
const (
	TargetMessage = "Message"
	TargetPost    = "Post"
	TargetUser    = "User"
)

type Notification struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user" bson:"user_id"`
	ActorID    string    `json:"actor,omitempty" bson:"actor_id,omitempty"`
	Verb       Verb      `json:"verb" bson:"verb"`
	TargetType string    `json:"targetType,omitempty" bson:"target_type,omitempty"`
	TargetID   string    `json:"targetId,omitempty" bson:"target_id,omitempty"`
	Read       bool      `json:"read" bson:"read"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}
