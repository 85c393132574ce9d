package chat

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/storage"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

type NotifyRequest struct {
	UserID     string
	ActorID    string
	Verb       models.Verb
	TargetType string
	TargetID   string
	Preview    string
}

// NotifyResult is the outcome of the secondary notification step. Err is set
// when the record could not be stored; the triggering action stands either way.
type NotifyResult struct {
	Notification *models.Notification
	Pushed       bool
	Skipped      bool
	Err          error
}

func (r NotifyResult) Stored() bool {
	return r.Notification != nil
}

// Notifier persists notifications and pushes them to reachable users.
type Notifier struct {
	store    storage.NotificationStore
	users    storage.UserDirectory
	registry *ws.Registry
	logger   *zap.Logger
	now      func() time.Time
}

func NewNotifier(store storage.NotificationStore, users storage.UserDirectory, registry *ws.Registry, logger *zap.Logger) *Notifier {
	return &Notifier{
		store:    store,
		users:    users,
		registry: registry,
		logger:   logger.Named("notifier"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Notify records one notification for req.UserID and pushes it if they are
// online. Calling it twice creates two records.
func (n *Notifier) Notify(ctx context.Context, req NotifyRequest) NotifyResult {
	if !req.Verb.Valid() {
		return NotifyResult{Err: apperrors.ErrInvalidVerb}
	}
	if req.UserID == "" {
		return NotifyResult{Err: apperrors.ErrInvalidParticipant}
	}
	// Nobody is notified about their own action.
	if req.ActorID != "" && req.ActorID == req.UserID {
		return NotifyResult{Skipped: true}
	}

	notification := &models.Notification{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		ActorID:    req.ActorID,
		Verb:       req.Verb,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		CreatedAt:  n.now(),
	}
	if err := n.store.Insert(ctx, notification); err != nil {
		n.logger.Warn("failed to store notification",
			zap.String("user_id", req.UserID),
			zap.String("verb", string(req.Verb)),
			zap.Error(err),
		)
		return NotifyResult{Err: persistence("insert notification", err)}
	}

	result := NotifyResult{Notification: notification}
	if !n.registry.IsOnline(req.UserID) {
		return result
	}

	ev := ws.NewEvent(ws.EventNewNotification, ws.NewNotification{
		ID:         notification.ID,
		Verb:       notification.Verb,
		Actor:      n.actor(ctx, req.ActorID),
		Preview:    req.Preview,
		TargetType: notification.TargetType,
		TargetID:   notification.TargetID,
	})
	if err := n.registry.Push(req.UserID, ev); err != nil {
		n.logger.Debug("notification push failed", zap.String("user_id", req.UserID), zap.Error(err))
		return result
	}
	result.Pushed = true
	return result
}

// actor resolves a display name for the push, preferring the name cached
// with the actor's live connection.
func (n *Notifier) actor(ctx context.Context, actorID string) *ws.Actor {
	if actorID == "" {
		return nil
	}
	if name, ok := n.registry.Username(actorID); ok {
		return &ws.Actor{UserID: actorID, Username: name}
	}
	user, err := n.users.FindByID(ctx, actorID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			n.logger.Debug("actor lookup failed", zap.String("user_id", actorID), zap.Error(err))
		}
		return &ws.Actor{UserID: actorID}
	}
	return &ws.Actor{UserID: actorID, Username: user.Username}
}

func (n *Notifier) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultNotificationLimit
	case limit > MaxNotificationLimit:
		limit = MaxNotificationLimit
	}
	list, err := n.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, persistence("list notifications", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// MarkRead flips a single notification; repeating it is harmless.
func (n *Notifier) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := n.store.MarkRead(ctx, userID, notificationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return persistence("mark notification read", err)
	}
	return nil
}

func (n *Notifier) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := n.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, persistence("mark all notifications read", err)
	}
	return count, nil
}

func (n *Notifier) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := n.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, persistence("count unread notifications", err)
	}
	return count, nil
}

// persistence tags a store error with the taxonomy unless the store already did.
func persistence(op string, err error) error {
	if errors.Is(err, apperrors.ErrPersistenceFailure) {
		return err
	}
	return apperrors.Persistence(op, err)
}
