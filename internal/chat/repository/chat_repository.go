package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillnest/internal/chat/models"
)

const MessagesCollection = "messages"

// ChatRepository is the durable message log, keyed by job conversation.
type ChatRepository interface {
	Save(ctx context.Context, msg *models.Message) error
	// FetchRecent returns at most limit messages of a conversation, newest first.
	FetchRecent(ctx context.Context, jobID primitive.ObjectID, limit int64) ([]*models.Message, error)
	// MarkRead flips every unread message addressed to receiver in the
	// conversation and reports how many changed.
	MarkRead(ctx context.Context, jobID, receiver primitive.ObjectID) (int64, error)
	// FetchInvolving returns messages sent or received by userID, newest first.
	FetchInvolving(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Message, error)
	CountUnread(ctx context.Context, jobID, receiver primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type chatRepo struct {
	coll *mongo.Collection
}

func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepo{coll: db.Collection(MessagesCollection)}
}

func (r *chatRepo) Save(ctx context.Context, msg *models.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *chatRepo) FetchRecent(ctx context.Context, jobID primitive.ObjectID, limit int64) ([]*models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{"jobId": jobID}, opts)
}

func (r *chatRepo) MarkRead(ctx context.Context, jobID, receiver primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"jobId": jobID, "receiver": receiver, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *chatRepo) FetchInvolving(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	filter := bson.M{"$or": bson.A{bson.M{"sender": userID}, bson.M{"receiver": userID}}}
	return r.find(ctx, filter, opts)
}

func (r *chatRepo) CountUnread(ctx context.Context, jobID, receiver primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"jobId": jobID, "receiver": receiver, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

func (r *chatRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "jobId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "jobId", Value: 1}, {Key: "receiver", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

func (r *chatRepo) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*models.Message, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	messages := make([]*models.Message, 0)
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
