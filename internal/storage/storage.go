//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks
package storage

import (
	"context"
	"time"

	"github.com/Vasu1712/socialsync-backend/internal/models"
)

// MessageStore is the single source of truth for chat messages.
type MessageStore interface {
	// Insert stores msg and reports whether it was new. A message whose id is
	// already stored is left untouched.
	Insert(ctx context.Context, msg *models.Message) (bool, error)
	// MarkDelivered adds userID to the delivered set of a message. Adding an
	// already present user is a no-op.
	MarkDelivered(ctx context.Context, messageID, userID string) error
	// ListByConversation returns the messages of a conversation oldest first.
	ListByConversation(ctx context.Context, conversationKey string) ([]models.Message, error)
	// ListForUser returns every message userID sent or received.
	ListForUser(ctx context.Context, userID string) ([]models.Message, error)
	// MarkRead adds readerID to the read set of every message in the
	// conversation addressed to them and not yet read, and returns exactly the
	// messages this call changed.
	MarkRead(ctx context.Context, conversationKey, readerID string) ([]models.Message, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	// ListForUser returns the newest notifications first.
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	// MarkRead returns false when the notification was already read.
	MarkRead(ctx context.Context, userID, notificationID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// UserDirectory is the read side of the user service.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.UserRef, error)
	FindByUsername(ctx context.Context, username string) (*models.UserRef, error)
	Search(ctx context.Context, query string, limit int) ([]models.UserRef, error)
}

// LikeToggle is the outcome of flipping a like. Changed is false when a
// concurrent toggle by the same user had already moved the post to Liked.
type LikeToggle struct {
	AuthorID string
	Liked    bool
	Changed  bool
}

type PostStore interface {
	// ToggleLike flips userID's like on a post and reports the post author and
	// whether the post is liked after the call.
	ToggleLike(ctx context.Context, postID, userID string) (LikeToggle, error)
}

type FollowStore interface {
	// Follow records the edge and reports whether it did not exist before.
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
}

type LastSeenStore interface {
	Touch(ctx context.Context, userID string, at time.Time) error
	Get(ctx context.Context, userID string) (time.Time, bool, error)
}
