package mongo

import (
	"context"
	"errors"
	"regexp"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// userDocument is the projection of a user service record. The user service
// owns the collection and keys it by ObjectID.
type userDocument struct {
	ID          any    `bson:"_id"`
	Username    string `bson:"username"`
	DisplayName string `bson:"displayName"`
	AvatarURL   string `bson:"avatarUrl"`
}

func (d userDocument) ref() models.UserRef {
	return models.UserRef{
		ID:          idString(d.ID),
		Username:    d.Username,
		DisplayName: d.DisplayName,
		AvatarURL:   d.AvatarURL,
	}
}

var userProjection = bson.M{"_id": 1, "username": 1, "displayName": 1, "avatarUrl": 1}

// UserDirectory reads users from the user service's collection.
type UserDirectory struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewUserDirectory(db *mongo.Database, collection string, logger *zap.Logger) *UserDirectory {
	return &UserDirectory{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

func (d *UserDirectory) FindByID(ctx context.Context, id string) (*models.UserRef, error) {
	return d.findOne(ctx, "find_user_by_id", idFilter(id))
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*models.UserRef, error) {
	return d.findOne(ctx, "find_user_by_username", bson.M{"username": username})
}

func (d *UserDirectory) Search(ctx context.Context, query string, limit int) ([]models.UserRef, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"displayName": pattern},
	}}
	opts := options.Find().
		SetProjection(userProjection).
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(int64(limit))

	var docs []userDocument
	err := withRetry(ctx, d.logger, "search_users", func(ctx context.Context) error {
		cursor, err := d.collection.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, apperrors.Persistence("search users", err)
	}

	users := make([]models.UserRef, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.ref())
	}
	return users, nil
}

func (d *UserDirectory) findOne(ctx context.Context, op string, filter bson.M) (*models.UserRef, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var doc userDocument
	err := withRetry(ctx, d.logger, op, func(ctx context.Context) error {
		return d.collection.FindOne(ctx, filter, options.FindOne().SetProjection(userProjection)).Decode(&doc)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	ref := doc.ref()
	return &ref, nil
}
