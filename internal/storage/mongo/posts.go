package mongo

import (
	"context"
	"errors"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type postDocument struct {
	AuthorID any   `bson:"userId"`
	Likes    []any `bson:"likes"`
}

// PostStore toggles likes on the feed service's posts collection.
type PostStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewPostStore(db *mongo.Database, collection string, logger *zap.Logger) *PostStore {
	return &PostStore{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

func (s *PostStore) ToggleLike(ctx context.Context, postID, userID string) (storage.LikeToggle, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var doc postDocument
	err := withRetry(ctx, s.logger, "find_post", func(ctx context.Context) error {
		return s.collection.FindOne(ctx, idFilter(postID),
			options.FindOne().SetProjection(bson.M{"userId": 1, "likes": 1}),
		).Decode(&doc)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.LikeToggle{}, apperrors.ErrNotFound
	}
	if err != nil {
		return storage.LikeToggle{}, apperrors.Persistence("find post", err)
	}
	authorID := idString(doc.AuthorID)

	liker := userValue(userID)
	liked := false
	for _, v := range doc.Likes {
		if idString(v) == userID {
			liked = true
			break
		}
	}

	filter := idFilter(postID)
	var update bson.M
	if liked {
		filter["likes"] = liker
		update = bson.M{"$pull": bson.M{"likes": liker}}
	} else {
		filter["likes"] = bson.M{"$ne": liker}
		update = bson.M{"$addToSet": bson.M{"likes": liker}}
	}

	var res *mongo.UpdateResult
	err = withRetry(ctx, s.logger, "toggle_like", func(ctx context.Context) error {
		res, err = s.collection.UpdateOne(ctx, filter, update)
		return err
	})
	if err != nil {
		s.logger.Error("failed to toggle like",
			zap.Error(err),
			zap.String("post_id", postID),
			zap.String("user_id", userID),
		)
		return storage.LikeToggle{}, apperrors.Persistence("toggle like", err)
	}

	// Either way the post ends up in the opposite state; only a modified
	// document means this call moved it there.
	changed := res.ModifiedCount == 1
	if !changed {
		s.logger.Debug("like toggle raced", zap.String("post_id", postID), zap.String("user_id", userID))
	}
	return storage.LikeToggle{AuthorID: authorID, Liked: !liked, Changed: changed}, nil
}

// userValue stores user references the way the owning services do.
func userValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
