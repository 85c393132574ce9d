package mongo

import (
	"context"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// FollowStore keeps follow edges in a collection with a unique
// (follower_id, followee_id) index.
type FollowStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewFollowStore(db *mongo.Database, collection string, logger *zap.Logger) *FollowStore {
	return &FollowStore{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

func (s *FollowStore) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	doc := bson.M{
		"follower_id": followerID,
		"followee_id": followeeID,
		"created_at":  time.Now().UTC(),
	}
	created := true
	err := withRetry(ctx, s.logger, "follow", func(ctx context.Context) error {
		_, err := s.collection.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			created = false
			return nil
		}
		return err
	})
	if err != nil {
		return false, apperrors.Persistence("follow", err)
	}
	return created, nil
}
