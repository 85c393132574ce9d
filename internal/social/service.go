// Package social holds the primary actions on posts and the follow graph
// that alert another user.
package social

import (
	"context"
	"errors"

	"github.com/Vasu1712/socialsync-backend/internal/chat"
	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/storage"
	"go.uber.org/zap"
)

type LikeResult struct {
	PostID       string            `json:"postId"`
	Liked        bool              `json:"liked"`
	Notification chat.NotifyResult `json:"-"`
}

type FollowResult struct {
	FolloweeID   string            `json:"userId"`
	Created      bool              `json:"created"`
	Notification chat.NotifyResult `json:"-"`
}

type Service struct {
	posts    storage.PostStore
	follows  storage.FollowStore
	users    storage.UserDirectory
	notifier *chat.Notifier
	logger   *zap.Logger
}

func NewService(posts storage.PostStore, follows storage.FollowStore, users storage.UserDirectory, notifier *chat.Notifier, logger *zap.Logger) *Service {
	return &Service{
		posts:    posts,
		follows:  follows,
		users:    users,
		notifier: notifier,
		logger:   logger.Named("social"),
	}
}

// ToggleLike flips userID's like on a post. The author is notified only when
// the like is switched on by someone else.
func (s *Service) ToggleLike(ctx context.Context, postID, userID string) (*LikeResult, error) {
	if postID == "" || userID == "" {
		return nil, apperrors.ErrInvalidParticipant
	}
	toggle, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, storeError("toggle like", err)
	}

	result := &LikeResult{PostID: postID, Liked: toggle.Liked}
	if toggle.Liked && toggle.Changed && toggle.AuthorID != "" && toggle.AuthorID != userID {
		result.Notification = s.notifier.Notify(ctx, chat.NotifyRequest{
			UserID:     toggle.AuthorID,
			ActorID:    userID,
			Verb:       models.VerbLike,
			TargetType: models.TargetPost,
			TargetID:   postID,
			Preview:    "liked your post",
		})
		s.logSecondary("like", result.Notification)
	}
	return result, nil
}

// Follow adds the edge followerID -> followeeID. Following again is a no-op
// and does not notify.
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) (*FollowResult, error) {
	if followerID == "" || followeeID == "" || followerID == followeeID {
		return nil, apperrors.ErrInvalidParticipant
	}
	if _, err := s.users.FindByID(ctx, followeeID); err != nil {
		return nil, storeError("find followee", err)
	}

	created, err := s.follows.Follow(ctx, followerID, followeeID)
	if err != nil {
		return nil, storeError("follow", err)
	}

	result := &FollowResult{FolloweeID: followeeID, Created: created}
	if created {
		result.Notification = s.notifier.Notify(ctx, chat.NotifyRequest{
			UserID:     followeeID,
			ActorID:    followerID,
			Verb:       models.VerbFollow,
			TargetType: models.TargetUser,
			TargetID:   followerID,
			Preview:    "started following you",
		})
		s.logSecondary("follow", result.Notification)
	}
	return result, nil
}

func (s *Service) logSecondary(action string, res chat.NotifyResult) {
	if res.Err != nil {
		s.logger.Warn("notification not recorded", zap.String("action", action), zap.Error(res.Err))
	}
}

func storeError(op string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrPersistenceFailure) {
		return err
	}
	return apperrors.Persistence(op, err)
}
