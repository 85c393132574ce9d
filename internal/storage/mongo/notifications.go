package mongo

import (
	"context"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type NotificationStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewNotificationStore(db *mongo.Database, collection string, logger *zap.Logger) *NotificationStore {
	return &NotificationStore{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

func (s *NotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	err := withRetry(ctx, s.logger, "insert_notification", func(ctx context.Context) error {
		_, err := s.collection.InsertOne(ctx, n)
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	})
	if err != nil {
		s.logger.Error("failed to insert notification",
			zap.Error(err),
			zap.String("notification_id", n.ID),
			zap.String("user_id", n.UserID),
		)
		return apperrors.Persistence("insert notification", err)
	}
	return nil
}

func (s *NotificationStore) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	var list []models.Notification
	err := withRetry(ctx, s.logger, "list_notifications", func(ctx context.Context) error {
		cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		list = list[:0]
		return cursor.All(ctx, &list)
	})
	if err != nil {
		return nil, apperrors.Persistence("list notifications", err)
	}
	return list, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var res *mongo.UpdateResult
	err := withRetry(ctx, s.logger, "mark_notification_read", func(ctx context.Context) error {
		var err error
		res, err = s.collection.UpdateOne(ctx,
			bson.M{"_id": notificationID, "user_id": userID},
			bson.M{"$set": bson.M{"read": true}},
		)
		return err
	})
	if err != nil {
		return false, apperrors.Persistence("mark notification read", err)
	}
	if res.MatchedCount == 0 {
		return false, apperrors.ErrNotFound
	}
	return res.ModifiedCount == 1, nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var modified int64
	err := withRetry(ctx, s.logger, "mark_all_notifications_read", func(ctx context.Context) error {
		res, err := s.collection.UpdateMany(ctx,
			bson.M{"user_id": userID, "read": false},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			return err
		}
		modified = res.ModifiedCount
		return nil
	})
	if err != nil {
		return 0, apperrors.Persistence("mark all notifications read", err)
	}
	return modified, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var count int64
	err := withRetry(ctx, s.logger, "count_unread_notifications", func(ctx context.Context) error {
		n, err := s.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
		count = n
		return err
	})
	if err != nil {
		return 0, apperrors.Persistence("count unread notifications", err)
	}
	return count, nil
}
