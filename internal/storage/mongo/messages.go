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

// MessageStore implements storage.MessageStore on a mongo collection.
type MessageStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewMessageStore(db *mongo.Database, collection string, logger *zap.Logger) *MessageStore {
	return &MessageStore{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

func (s *MessageStore) Insert(ctx context.Context, msg *models.Message) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	doc := msg.Clone()
	if doc.DeliveredTo == nil {
		doc.DeliveredTo = []string{}
	}
	if doc.ReadBy == nil {
		doc.ReadBy = []string{}
	}
	if doc.Attachments == nil {
		doc.Attachments = []models.Attachment{}
	}

	attempts := 0
	created := false
	err := withRetry(ctx, s.logger, "insert_message", func(ctx context.Context) error {
		attempts++
		_, err := s.collection.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			// On a retry the duplicate is our own earlier attempt landing.
			created = attempts > 1
			return nil
		}
		created = err == nil
		return err
	})
	if err != nil {
		s.logger.Error("failed to insert message",
			zap.Error(err),
			zap.String("message_id", msg.ID),
			zap.String("conversation_key", msg.ConversationKey),
		)
		return false, apperrors.Persistence("insert message", err)
	}

	s.logger.Debug("message inserted",
		zap.String("message_id", msg.ID),
		zap.String("conversation_key", msg.ConversationKey),
		zap.Bool("created", created),
	)
	return created, nil
}

func (s *MessageStore) MarkDelivered(ctx context.Context, messageID, userID string) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := bson.M{"_id": messageID, "recipients": userID}
	update := bson.M{"$addToSet": bson.M{"delivered_to": userID}}
	err := withRetry(ctx, s.logger, "mark_delivered", func(ctx context.Context) error {
		_, err := s.collection.UpdateOne(ctx, filter, update)
		return err
	})
	if err != nil {
		return apperrors.Persistence("mark delivered", err)
	}
	return nil
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationKey string) ([]models.Message, error) {
	return s.find(ctx, "list_conversation", bson.M{"conversation_key": conversationKey})
}

func (s *MessageStore) ListForUser(ctx context.Context, userID string) ([]models.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"recipients": userID},
	}}
	return s.find(ctx, "list_for_user", filter)
}

// MarkRead updates message by message so that the returned set is exactly
// what this call changed, even when another reader races it.
func (s *MessageStore) MarkRead(ctx context.Context, conversationKey, readerID string) ([]models.Message, error) {
	candidates, err := s.find(ctx, "find_unread", bson.M{
		"conversation_key": conversationKey,
		"recipients":       readerID,
		"read_by":          bson.M{"$ne": readerID},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var marked []models.Message
	for _, msg := range candidates {
		filter := bson.M{
			"_id":        msg.ID,
			"recipients": readerID,
			"read_by":    bson.M{"$ne": readerID},
		}
		update := bson.M{"$addToSet": bson.M{"read_by": readerID}}

		var modified int64
		err := withRetry(ctx, s.logger, "mark_read", func(ctx context.Context) error {
			res, err := s.collection.UpdateOne(ctx, filter, update)
			if err != nil {
				return err
			}
			modified = res.ModifiedCount
			return nil
		})
		if err != nil {
			s.logger.Error("failed to mark message read",
				zap.Error(err),
				zap.String("message_id", msg.ID),
				zap.String("reader_id", readerID),
			)
			return marked, apperrors.Persistence("mark read", err)
		}
		if modified == 1 {
			msg.ReadBy = append(msg.ReadBy, readerID)
			marked = append(marked, msg)
		}
	}
	return marked, nil
}

func (s *MessageStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := bson.M{"recipients": userID, "read_by": bson.M{"$ne": userID}}
	var count int64
	err := withRetry(ctx, s.logger, "count_unread", func(ctx context.Context) error {
		n, err := s.collection.CountDocuments(ctx, filter)
		count = n
		return err
	})
	if err != nil {
		return 0, apperrors.Persistence("count unread messages", err)
	}
	return count, nil
}

func (s *MessageStore) find(ctx context.Context, op string, filter bson.M) ([]models.Message, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	var messages []models.Message
	err := withRetry(ctx, s.logger, op, func(ctx context.Context) error {
		cursor, err := s.collection.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		messages = messages[:0]
		return cursor.All(ctx, &messages)
	})
	if err != nil {
		s.logger.Error("failed to query messages", zap.String("op", op), zap.Error(err))
		return nil, apperrors.Persistence(op, err)
	}

	s.logger.Debug("messages retrieved", zap.String("op", op), zap.Int("count", len(messages)))
	return messages, nil
}
