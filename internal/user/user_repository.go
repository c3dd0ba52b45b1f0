package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillnest/internal/common"
)

const UsersCollection = "users"

// User is the slice of the marketplace account this service reads.
type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Role     string             `bson:"role" json:"role"`
}

// UserRepository is read-only; accounts are owned by the marketplace.
type UserRepository interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	// Usernames resolves display names in one query. Unknown ids are absent
	// from the result.
	Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(UsersCollection)}
}

var userProjection = bson.M{"username": 1, "role": 1}

func (r *userRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(userProjection)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Usernames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return map[primitive.ObjectID]string{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(userProjection))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return lo.SliceToMap(users, func(u User) (primitive.ObjectID, string) {
		return u.ID, u.Username
	}), nil
}
